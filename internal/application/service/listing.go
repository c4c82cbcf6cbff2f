package service

import (
	"html"
	"time"

	"github.com/garyjia/collab-approval/internal/application/port"
	"github.com/garyjia/collab-approval/internal/domain/entity"
	"github.com/garyjia/collab-approval/pkg/utils"
)

// ListingOptions are the publisher-side defaults applied to every listing
type ListingOptions struct {
	Timezone   string
	Currency   string
	Capacity   int
	Online     bool
	Listed     bool
	LeadTime   time.Duration
	SummaryLen int
}

// DefaultListingOptions returns the listing defaults used when none are configured
func DefaultListingOptions() ListingOptions {
	return ListingOptions{
		Timezone:   "Asia/Singapore",
		Currency:   "SGD",
		Capacity:   100,
		Online:     true,
		Listed:     true,
		LeadTime:   30 * 24 * time.Hour,
		SummaryLen: 140,
	}
}

// BuildListingContent derives the external listing payload from an approved plan
func BuildListingContent(plan *entity.EventPlan, opts ListingOptions, now time.Time) port.ListingContent {
	start := now.Add(opts.LeadTime)
	end := start.Add(time.Duration(plan.DurationMinutes()) * time.Minute)

	description := "<p>" + html.EscapeString(plan.Description) + "</p>"
	if hero := plan.MarketingAssets.LandingHero; hero != "" {
		description += "<p>" + html.EscapeString(hero) + "</p>"
	}

	return port.ListingContent{
		Title:           plan.Title,
		Summary:         utils.TruncateRunes(plan.Description, opts.SummaryLen),
		DescriptionHTML: description,
		Start:           start,
		End:             end,
		Timezone:        opts.Timezone,
		Currency:        opts.Currency,
		Capacity:        opts.Capacity,
		Online:          opts.Online,
		Listed:          opts.Listed,
	}
}
