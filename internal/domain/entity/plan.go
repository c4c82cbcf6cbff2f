package entity

import (
	"time"

	"github.com/garyjia/collab-approval/internal/domain/workflow"
)

// EventPlan is the collaboration event record governed by the approval workflow.
// Content fields are produced once at generation and never mutated by the workflow.
type EventPlan struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Subtitle         string            `json:"subtitle,omitempty"`
	Description      string            `json:"description"`
	Tone             string            `json:"tone,omitempty"`
	Objectives       []string          `json:"objectives"`
	AudiencePersonas []AudiencePersona `json:"audiencePersonas,omitempty"`
	KPIs             []KPI             `json:"KPIs,omitempty"`
	Agenda           []AgendaItem      `json:"agenda"`
	Deliverables     []string          `json:"deliverables,omitempty"`
	MarketingAssets  MarketingAssets   `json:"marketingAssets"`
	PilotTemplate    PilotTemplate     `json:"pilotTemplate"`
	Logistics        []string          `json:"logistics,omitempty"`
	SpeakerBriefs    []SpeakerBrief    `json:"speakerBriefs,omitempty"`
	InferredFields   []string          `json:"inferredFields,omitempty"`
	SourceCitations  []string          `json:"sourceCitations,omitempty"`
	Approval         ApprovalRecord    `json:"approval"`
	Eventbrite       *ExternalListing  `json:"eventbrite,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`

	// Version is the optimistic concurrency token maintained by the store
	Version int64 `json:"-"`
}

// AudiencePersona describes a target attendee profile
type AudiencePersona struct {
	Role       string   `json:"role"`
	PainPoints []string `json:"painPoints"`
	ValueProps []string `json:"valueProps"`
}

// KPI is a measurable outcome for the event
type KPI struct {
	Key    string `json:"key"`
	Target string `json:"target"`
}

// AgendaItem is one session; StartMin and EndMin are minute offsets from the event start
type AgendaItem struct {
	StartMin int    `json:"startMin"`
	EndMin   int    `json:"endMin"`
	Title    string `json:"title"`
	Speaker  string `json:"speaker,omitempty"`
	Format   string `json:"format"`
	Notes    string `json:"notes,omitempty"`
}

// EmailBody holds the pre- and post-event email copy
type EmailBody struct {
	Pre  string `json:"pre"`
	Post string `json:"post"`
}

// MarketingAssets holds generated marketing copy
type MarketingAssets struct {
	LandingHero   string      `json:"landingHero,omitempty"`
	EmailSubjects []string    `json:"emailSubjects,omitempty"`
	EmailBodies   []EmailBody `json:"emailBodies,omitempty"`
	SocialPosts   []string    `json:"socialPosts,omitempty"`
}

// PricingTier is one tier of the follow-up pilot offer
type PricingTier struct {
	Tier     string   `json:"tier"`
	PriceSGD float64  `json:"priceSGD"`
	Includes []string `json:"includes"`
}

// PilotTemplate describes the pilot program proposed after the event
type PilotTemplate struct {
	Objective     string        `json:"objective"`
	Metrics       []string      `json:"metrics"`
	DurationWeeks int           `json:"durationWeeks"`
	PricingTiers  []PricingTier `json:"pricingTiers"`
}

// SpeakerBrief lists talking points for a speaker role
type SpeakerBrief struct {
	Role    string   `json:"role"`
	Bullets []string `json:"bullets"`
}

// ExternalListing is the identity of the published listing on the external service
type ExternalListing struct {
	EventID string `json:"eventId"`
	URL     string `json:"url"`
}

// DurationMinutes returns the event length derived from the agenda:
// the largest EndMin across entries, or 120 when the agenda gives none.
func (p *EventPlan) DurationMinutes() int {
	longest := 0
	for _, item := range p.Agenda {
		if item.EndMin > longest {
			longest = item.EndMin
		}
	}
	if longest <= 0 {
		return DefaultDurationMinutes
	}
	return longest
}

// DefaultDurationMinutes is used when the agenda carries no end offsets
const DefaultDurationMinutes = 120

// Clone returns a deep copy of the approval-related parts of the plan.
// Content slices are shared since the workflow never mutates them.
func (p *EventPlan) Clone() *EventPlan {
	c := *p
	c.Approval.Approvers = append([]Approver(nil), p.Approval.Approvers...)
	c.Approval.History = append([]HistoryEntry(nil), p.Approval.History...)
	if p.Eventbrite != nil {
		listing := *p.Eventbrite
		c.Eventbrite = &listing
	}
	return &c
}

// State is a shortcut for the current workflow state
func (p *EventPlan) State() workflow.State {
	return p.Approval.State
}
