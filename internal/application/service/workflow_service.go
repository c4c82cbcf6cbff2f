package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/collab-approval/internal/application/port"
	"github.com/garyjia/collab-approval/internal/domain/approval"
	"github.com/garyjia/collab-approval/internal/domain/entity"
	"github.com/garyjia/collab-approval/internal/domain/workflow"
	"github.com/garyjia/collab-approval/pkg/utils"
)

const systemActor = "system"

// WorkflowConfig tunes the orchestration
type WorkflowConfig struct {
	MaxConflictRetries int
	StoreTimeout       time.Duration
	PublishTimeout     time.Duration
	GenerateTimeout    time.Duration
	AutoPublish        bool
	Listing            ListingOptions

	// Clock and NewID are replaceable for tests
	Clock func() time.Time
	NewID func() string
}

// DefaultWorkflowConfig returns the settings used when nothing is configured
func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		MaxConflictRetries: 3,
		StoreTimeout:       5 * time.Second,
		PublishTimeout:     30 * time.Second,
		GenerateTimeout:    120 * time.Second,
		Listing:            DefaultListingOptions(),
	}
}

// CreatePlanRequest carries the two company profiles and their approvers
type CreatePlanRequest struct {
	CompanyA        port.CompanyProfile
	CompanyB        port.CompanyProfile
	CompanyAContact entity.Contact
	CompanyBContact entity.Contact
}

// CreateResult is returned by CreatePlan
type CreateResult struct {
	Plan     *entity.EventPlan
	Warnings []string
}

// ApprovalResult is returned by SubmitApproval once the approval is committed
type ApprovalResult struct {
	Plan    *entity.EventPlan
	Company entity.Company

	// NotificationError is set when the confirmation to the actor could not be sent
	NotificationError error

	// Warnings collects every best-effort follow-up that failed
	Warnings []string
}

// PublishResult is returned by RequestPublish
type PublishResult struct {
	Plan       *entity.EventPlan
	ExternalID string
	URL        string
}

// ResendResult is returned by ResendReviewRequest
type ResendResult struct {
	Sent      bool
	Company   entity.Company
	Recipient string
}

// WorkflowService orchestrates the two-party approval lifecycle of an event plan
type WorkflowService interface {
	CreatePlan(ctx context.Context, req CreatePlanRequest) (*CreateResult, error)
	GetPlan(ctx context.Context, planID string) (*entity.EventPlan, error)
	ListPlans(ctx context.Context, filter port.PlanFilter) ([]*entity.EventPlan, error)
	SubmitApproval(ctx context.Context, planID, actorEmail string) (*ApprovalResult, error)
	RequestPublish(ctx context.Context, planID string) (*PublishResult, error)
	ResendReviewRequest(ctx context.Context, planID string) (*ResendResult, error)
	ListParticipants(ctx context.Context, planID string) ([]port.Attendee, error)
	RemindStale(ctx context.Context, olderThan time.Duration) (int, error)
}

type workflowServiceImpl struct {
	repo          port.PlanRepository
	notifications NotificationService
	publisher     port.Publisher
	attendees     port.AttendeeSource
	generator     port.PlanGenerator
	config        WorkflowConfig
	logger        Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	repo port.PlanRepository,
	notifications NotificationService,
	publisher port.Publisher,
	attendees port.AttendeeSource,
	generator port.PlanGenerator,
	config WorkflowConfig,
	logger Logger,
) WorkflowService {
	defaults := DefaultWorkflowConfig()
	if config.MaxConflictRetries < 0 {
		config.MaxConflictRetries = 0
	}
	if config.StoreTimeout <= 0 {
		config.StoreTimeout = defaults.StoreTimeout
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = defaults.PublishTimeout
	}
	if config.GenerateTimeout <= 0 {
		config.GenerateTimeout = defaults.GenerateTimeout
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.NewID == nil {
		config.NewID = func() string { return "evt-" + uuid.NewString() }
	}

	return &workflowServiceImpl{
		repo:          repo,
		notifications: notifications,
		publisher:     publisher,
		attendees:     attendees,
		generator:     generator,
		config:        config,
		logger:        logger,
	}
}

// CreatePlan generates a plan for two companies and opens the review of company A
func (s *workflowServiceImpl) CreatePlan(ctx context.Context, req CreatePlanRequest) (*CreateResult, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.config.GenerateTimeout)
	plan, err := s.generator.Generate(genCtx, port.GenerationRequest{CompanyA: req.CompanyA, CompanyB: req.CompanyB})
	cancel()
	if err != nil {
		s.logger.Error("Plan generation failed", "error", err, "company_a", req.CompanyA.Name, "company_b", req.CompanyB.Name)
		return nil, externalError("generator", "generate", err)
	}
	if plan == nil {
		return nil, externalError("generator", "generate", errors.New("empty plan"))
	}

	state, ok := workflow.NextState(workflow.StateDraft, workflow.TriggerGenerate)
	if !ok {
		return nil, fmt.Errorf("no transition from %s on %s", workflow.StateDraft, workflow.TriggerGenerate)
	}

	now := s.config.Clock()
	plan.ID = s.config.NewID()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	plan.Eventbrite = nil
	plan.Approval = entity.ApprovalRecord{
		State:           state,
		CompanyAContact: normalizeContact(req.CompanyAContact),
		CompanyBContact: normalizeContact(req.CompanyBContact),
		Approvers:       []entity.Approver{},
		History: []entity.HistoryEntry{
			{Timestamp: now, Action: "Plan generated", By: systemActor},
		},
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	err = s.repo.Create(storeCtx, plan)
	cancel()
	if err != nil {
		s.logger.Error("Failed to store generated plan", "error", err, "plan_id", plan.ID)
		return nil, externalError("store", "create", err)
	}

	s.logger.Info("Plan created", "plan_id", plan.ID, "state", plan.Approval.State)

	result := &CreateResult{Plan: plan}
	if _, err := s.notifications.SendReviewRequest(ctx, plan, entity.CompanyA); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("review request to %s not sent: %v", entity.CompanyA.Label(), err))
	}
	return result, nil
}

// GetPlan loads one plan
func (s *workflowServiceImpl) GetPlan(ctx context.Context, planID string) (*entity.EventPlan, error) {
	if strings.TrimSpace(planID) == "" {
		return nil, malformed("plan id is required")
	}
	return s.load(ctx, planID)
}

// ListPlans returns plans matching filter
func (s *workflowServiceImpl) ListPlans(ctx context.Context, filter port.PlanFilter) ([]*entity.EventPlan, error) {
	for _, st := range filter.States {
		if !st.IsValid() {
			return nil, malformed("unknown state %q", st)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	plans, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, externalError("store", "list", err)
	}
	return plans, nil
}

// SubmitApproval records the actor's approval for whichever company's turn it is.
//
// The write is conditional on the version read. On a version conflict the
// whole read-authorize-record cycle is repeated, so a retry sees the state
// left by the competing writer. Notifications are sent only after commit.
func (s *workflowServiceImpl) SubmitApproval(ctx context.Context, planID, actorEmail string) (*ApprovalResult, error) {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return nil, malformed("plan id is required")
	}
	if strings.TrimSpace(actorEmail) == "" {
		return nil, malformed("approver email is required")
	}
	if err := utils.ValidateEmail(actorEmail); err != nil {
		return nil, malformed("%v", err)
	}
	actorEmail = strings.TrimSpace(actorEmail)

	var (
		committed *entity.EventPlan
		company   entity.Company
	)

	attempts := s.config.MaxConflictRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		plan, err := s.load(ctx, planID)
		if err != nil {
			return nil, err
		}

		resolved, ok := approval.ResolveApprover(plan, actorEmail)
		if !ok {
			s.logger.Warn("Approval rejected", "plan_id", planID, "actor", actorEmail, "state", plan.Approval.State)
			return nil, fmt.Errorf("%w: %s cannot approve plan in state %s", ErrForbidden, actorEmail, plan.Approval.State)
		}

		updated, err := approval.RecordApproval(plan, resolved, actorEmail, s.config.Clock())
		if err != nil {
			if errors.Is(err, approval.ErrDuplicateApproval) {
				return nil, fmt.Errorf("%w: %v", ErrForbidden, err)
			}
			return nil, err
		}

		if next, ok := workflow.NextState(plan.Approval.State, resolved.Trigger()); ok {
			updated.Approval.State = next
		}

		err = s.save(ctx, updated, plan.Version)
		if err == nil {
			committed = updated
			company = resolved
			break
		}
		if !errors.Is(err, port.ErrVersionConflict) {
			s.logger.Error("Failed to save approval", "error", err, "plan_id", planID)
			if errors.Is(err, port.ErrPlanNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, planID)
			}
			return nil, externalError("store", "save", err)
		}

		s.logger.Warn("Version conflict on approval, retrying", "plan_id", planID, "attempt", attempt)
	}

	if committed == nil {
		return nil, fmt.Errorf("%w: %s after %d attempts", ErrConflict, planID, attempts)
	}

	s.logger.Info("Approval recorded",
		"plan_id", planID,
		"company", company,
		"actor", actorEmail,
		"state", committed.Approval.State,
	)

	result := &ApprovalResult{Plan: committed, Company: company}

	if err := s.notifications.SendApprovalConfirmation(ctx, committed, actorEmail); err != nil {
		result.NotificationError = err
		result.Warnings = append(result.Warnings, fmt.Sprintf("approval confirmation not sent: %v", err))
	}

	switch committed.Approval.State {
	case workflow.StateAwaitingReviewB:
		if _, err := s.notifications.SendReviewRequest(ctx, committed, entity.CompanyB); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("review request to %s not sent: %v", entity.CompanyB.Label(), err))
		}
	case workflow.StateApproved:
		if s.config.AutoPublish {
			published, err := s.RequestPublish(ctx, planID)
			if err != nil {
				s.logger.Error("Auto-publish failed", "error", err, "plan_id", planID)
				result.Warnings = append(result.Warnings, fmt.Sprintf("auto-publish failed: %v", err))
			} else {
				result.Plan = published.Plan
			}
		}
	}

	return result, nil
}

// RequestPublish creates the external listing for a fully approved plan
func (s *workflowServiceImpl) RequestPublish(ctx context.Context, planID string) (*PublishResult, error) {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return nil, malformed("plan id is required")
	}

	plan, err := s.load(ctx, planID)
	if err != nil {
		return nil, err
	}

	if plan.Approval.State != workflow.StateApproved {
		return nil, fmt.Errorf("%w: plan %s is %s", ErrPreconditionFailed, planID, plan.Approval.State)
	}

	now := s.config.Clock()
	content := BuildListingContent(plan, s.config.Listing, now)

	pubCtx, cancel := context.WithTimeout(ctx, s.config.PublishTimeout)
	listing, err := s.publisher.CreateListing(pubCtx, content)
	cancel()
	if err != nil {
		s.logger.Error("Failed to create external listing", "error", err, "plan_id", planID)
		return nil, externalError("publisher", "create listing", err)
	}

	updated := plan.Clone()
	updated.Eventbrite = &entity.ExternalListing{EventID: listing.ExternalID, URL: listing.URL}
	if next, ok := workflow.NextState(plan.Approval.State, workflow.TriggerPublish); ok {
		updated.Approval.State = next
	}
	updated.Approval.History = append(updated.Approval.History, entity.HistoryEntry{
		Timestamp: now,
		Action:    "Published to Eventbrite",
		By:        systemActor,
	})
	updated.UpdatedAt = now

	if err := s.save(ctx, updated, plan.Version); err != nil {
		s.logger.Error("Failed to save published plan",
			"error", err,
			"plan_id", planID,
			"external_id", listing.ExternalID,
		)
		if errors.Is(err, port.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: listing %s created but plan %s changed", ErrConflict, listing.ExternalID, planID)
		}
		if errors.Is(err, port.ErrPlanNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, planID)
		}
		return nil, externalError("store", "save", err)
	}

	s.logger.Info("Plan published", "plan_id", planID, "external_id", listing.ExternalID, "url", listing.URL)

	return &PublishResult{Plan: updated, ExternalID: listing.ExternalID, URL: listing.URL}, nil
}

// ResendReviewRequest re-sends the review request to whichever company's turn it is
func (s *workflowServiceImpl) ResendReviewRequest(ctx context.Context, planID string) (*ResendResult, error) {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return nil, malformed("plan id is required")
	}

	plan, err := s.load(ctx, planID)
	if err != nil {
		return nil, err
	}

	company, ok := entity.ReviewerFor(plan.Approval.State)
	if !ok {
		return &ResendResult{Sent: false}, nil
	}

	recipient, err := s.notifications.SendReviewRequest(ctx, plan, company)
	if err != nil {
		var extErr *ExternalServiceError
		if errors.As(err, &extErr) {
			return nil, err
		}
		return nil, externalError("notifier", "send", err)
	}

	return &ResendResult{Sent: true, Company: company, Recipient: recipient}, nil
}

// ListParticipants fetches the registrations of a published plan
func (s *workflowServiceImpl) ListParticipants(ctx context.Context, planID string) ([]port.Attendee, error) {
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.Eventbrite == nil || plan.Eventbrite.EventID == "" {
		return nil, fmt.Errorf("%w: plan %s has no external listing", ErrPreconditionFailed, plan.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.PublishTimeout)
	defer cancel()

	attendees, err := s.attendees.ListAttendees(ctx, plan.Eventbrite.EventID)
	if err != nil {
		s.logger.Error("Failed to list attendees", "error", err, "plan_id", plan.ID)
		return nil, externalError("publisher", "list attendees", err)
	}
	return attendees, nil
}

// RemindStale resends review requests for plans waiting longer than olderThan.
// Returns the number of reminders sent.
func (s *workflowServiceImpl) RemindStale(ctx context.Context, olderThan time.Duration) (int, error) {
	plans, err := s.ListPlans(ctx, port.PlanFilter{
		States:        []workflow.State{workflow.StateAwaitingReviewA, workflow.StateAwaitingReviewB},
		UpdatedBefore: s.config.Clock().Add(-olderThan),
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, plan := range plans {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		company, ok := entity.ReviewerFor(plan.Approval.State)
		if !ok {
			continue
		}
		if _, err := s.notifications.SendReviewRequest(ctx, plan, company); err != nil {
			s.logger.Warn("Reminder not sent", "plan_id", plan.ID, "company", company, "error", err)
			continue
		}
		sent++
	}

	return sent, nil
}

func (s *workflowServiceImpl) load(ctx context.Context, planID string) (*entity.EventPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	plan, err := s.repo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, port.ErrPlanNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, planID)
		}
		s.logger.Error("Failed to load plan", "error", err, "plan_id", planID)
		return nil, externalError("store", "get", err)
	}
	return plan, nil
}

func (s *workflowServiceImpl) save(ctx context.Context, plan *entity.EventPlan, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()
	return s.repo.Save(ctx, plan, expectedVersion)
}

func validateCreateRequest(req CreatePlanRequest) error {
	if strings.TrimSpace(req.CompanyA.Name) == "" || strings.TrimSpace(req.CompanyB.Name) == "" {
		return malformed("both company profiles need a name")
	}
	if strings.TrimSpace(req.CompanyA.ShortDescription) == "" || strings.TrimSpace(req.CompanyB.ShortDescription) == "" {
		return malformed("both company profiles need a short description")
	}
	if err := utils.ValidateEmail(req.CompanyAContact.Email); err != nil {
		return malformed("company A contact: %v", err)
	}
	if err := utils.ValidateEmail(req.CompanyBContact.Email); err != nil {
		return malformed("company B contact: %v", err)
	}
	return nil
}

func normalizeContact(c entity.Contact) entity.Contact {
	c.Name = strings.TrimSpace(utils.SanitizeString(c.Name))
	c.Role = strings.TrimSpace(utils.SanitizeString(c.Role))
	c.Email = strings.TrimSpace(c.Email)
	return c
}
