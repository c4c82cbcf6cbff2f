// Package eventbrite publishes approved plans as Eventbrite listings
package eventbrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/collab-approval/internal/application/port"
)

// DefaultBaseURL is the Eventbrite v3 API root
const DefaultBaseURL = "https://www.eventbriteapi.com/v3"

// maxErrorBody bounds how much of an error response is kept in the error message
const maxErrorBody = 2048

// Config holds Eventbrite credentials
type Config struct {
	Token          string
	OrganizationID string
	BaseURL        string
	Timeout        time.Duration
}

// HTTPDoer is satisfied by *http.Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements port.Publisher and port.AttendeeSource
type Client struct {
	http   HTTPDoer
	config Config
	logger *zap.Logger
}

// NewClient creates a new Eventbrite client. A nil doer uses an
// http.Client with cfg.Timeout.
func NewClient(cfg Config, doer HTTPDoer, logger *zap.Logger) (*Client, error) {
	if cfg.Token == "" || cfg.OrganizationID == "" {
		return nil, fmt.Errorf("eventbrite credentials not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{http: doer, config: cfg, logger: logger}, nil
}

type htmlText struct {
	HTML string `json:"html"`
}

type dateTime struct {
	Timezone string `json:"timezone"`
	UTC      string `json:"utc"`
}

type eventPayload struct {
	Name        htmlText `json:"name"`
	Summary     string   `json:"summary"`
	Description htmlText `json:"description"`
	Start       dateTime `json:"start"`
	End         dateTime `json:"end"`
	OnlineEvent bool     `json:"online_event"`
	Listed      bool     `json:"listed"`
	Currency    string   `json:"currency"`
	Capacity    int      `json:"capacity"`
	IsSeries    bool     `json:"is_series"`
	Shareable   bool     `json:"shareable"`
	InviteOnly  bool     `json:"invite_only"`
}

type createEventRequest struct {
	Event eventPayload `json:"event"`
}

type createEventResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateListing creates an event under the configured organization
func (c *Client) CreateListing(ctx context.Context, content port.ListingContent) (*port.Listing, error) {
	payload := createEventRequest{Event: eventPayload{
		Name:        htmlText{HTML: content.Title},
		Summary:     content.Summary,
		Description: htmlText{HTML: content.DescriptionHTML},
		Start:       dateTime{Timezone: content.Timezone, UTC: formatUTC(content.Start)},
		End:         dateTime{Timezone: content.Timezone, UTC: formatUTC(content.End)},
		OnlineEvent: content.Online,
		Listed:      content.Listed,
		Currency:    content.Currency,
		Capacity:    content.Capacity,
		Shareable:   true,
	}}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/organizations/%s/events/", c.config.BaseURL, url.PathEscape(c.config.OrganizationID))

	var created createEventResponse
	if err := c.do(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		c.logger.Error("Failed to create Eventbrite event", zap.String("title", content.Title), zap.Error(err))
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("eventbrite response missing event id")
	}

	c.logger.Info("Eventbrite event created", zap.String("event_id", created.ID), zap.String("url", created.URL))
	return &port.Listing{ExternalID: created.ID, URL: created.URL}, nil
}

type attendeesResponse struct {
	Attendees []struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		CheckedIn bool   `json:"checked_in"`
		Profile   struct {
			Name    string `json:"name"`
			Email   string `json:"email"`
			Company string `json:"company"`
		} `json:"profile"`
	} `json:"attendees"`
	Pagination struct {
		HasMoreItems bool   `json:"has_more_items"`
		Continuation string `json:"continuation"`
	} `json:"pagination"`
}

// ListAttendees returns every attendee of an event, following pagination
func (c *Client) ListAttendees(ctx context.Context, externalID string) ([]port.Attendee, error) {
	if externalID == "" {
		return nil, fmt.Errorf("eventbrite event id is required")
	}

	base := fmt.Sprintf("%s/events/%s/attendees/", c.config.BaseURL, url.PathEscape(externalID))
	attendees := []port.Attendee{}
	continuation := ""

	for {
		endpoint := base
		if continuation != "" {
			endpoint += "?continuation=" + url.QueryEscape(continuation)
		}

		var page attendeesResponse
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			c.logger.Error("Failed to fetch attendees", zap.String("event_id", externalID), zap.Error(err))
			return nil, err
		}

		for _, a := range page.Attendees {
			attendees = append(attendees, port.Attendee{
				ID:        a.ID,
				Name:      a.Profile.Name,
				Email:     a.Profile.Email,
				Company:   a.Profile.Company,
				Status:    a.Status,
				CheckedIn: a.CheckedIn,
			})
		}

		if !page.Pagination.HasMoreItems || page.Pagination.Continuation == "" {
			break
		}
		continuation = page.Pagination.Continuation
	}

	return attendees, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("eventbrite request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode eventbrite response: %w", err)
	}
	return nil
}

// APIError is a non-2xx response from Eventbrite
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eventbrite API error: status %d: %s", e.StatusCode, e.Body)
}

func formatUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
