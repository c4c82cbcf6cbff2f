package port

import (
	"context"
	"time"

	"github.com/garyjia/collab-approval/internal/domain/entity"
)

// Notifier delivers a rendered message to an address
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// ListingContent is the final approved content handed to the external publisher
type ListingContent struct {
	Title           string
	Summary         string
	DescriptionHTML string
	Start           time.Time
	End             time.Time
	Timezone        string
	Currency        string
	Capacity        int
	Online          bool
	Listed          bool
}

// Listing identifies a listing created by the external publisher
type Listing struct {
	ExternalID string
	URL        string
}

// Publisher creates public event listings
type Publisher interface {
	CreateListing(ctx context.Context, content ListingContent) (*Listing, error)
}

// CompanyProfile describes one collaborating company for plan generation
type CompanyProfile struct {
	Name             string   `json:"name"`
	ShortDescription string   `json:"shortDescription"`
	Website          string   `json:"website,omitempty"`
	IndustryTags     []string `json:"industryTags,omitempty"`
	Offerings        []string `json:"offerings"`
	Goals            []string `json:"goals"`
}

// GenerationRequest is the input to plan generation
type GenerationRequest struct {
	CompanyA CompanyProfile
	CompanyB CompanyProfile
}

// PlanGenerator drafts plan content. The returned plan carries content fields
// only; identity and approval fields are assigned by the caller.
type PlanGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (*entity.EventPlan, error)
}

// Attendee is one registration on a published listing
type Attendee struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company,omitempty"`
	Status    string `json:"status"`
	CheckedIn bool   `json:"checkedIn"`
}

// AttendeeSource reads registrations back from the external listing service
type AttendeeSource interface {
	ListAttendees(ctx context.Context, externalID string) ([]Attendee, error)
}
