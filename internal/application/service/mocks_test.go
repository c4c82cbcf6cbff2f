package service

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/collab-approval/internal/application/port"
	"github.com/garyjia/collab-approval/internal/domain/entity"
	"github.com/garyjia/collab-approval/internal/domain/workflow"
)

var fixedNow = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

const (
	emailA = "alice@a.example.com"
	emailB = "bob@b.example.com"
)

// memRepo is an in-memory PlanRepository with version checks
type memRepo struct {
	mu        sync.Mutex
	plans     map[string]*entity.EventPlan
	saveCalls int

	getErr     error
	saveErr    error
	createErr  error
	beforeSave func(stored *entity.EventPlan, call int)
}

func newMemRepo(plans ...*entity.EventPlan) *memRepo {
	r := &memRepo{plans: make(map[string]*entity.EventPlan)}
	for _, p := range plans {
		if p.Version == 0 {
			p.Version = 1
		}
		r.plans[p.ID] = p.Clone()
	}
	return r
}

func (r *memRepo) Create(ctx context.Context, plan *entity.EventPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.plans[plan.ID]; ok {
		return port.ErrPlanExists
	}
	plan.Version = 1
	r.plans[plan.ID] = plan.Clone()
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*entity.EventPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	p, ok := r.plans[id]
	if !ok {
		return nil, port.ErrPlanNotFound
	}
	return p.Clone(), nil
}

func (r *memRepo) Save(ctx context.Context, plan *entity.EventPlan, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.plans[plan.ID]
	if !ok {
		return port.ErrPlanNotFound
	}
	if r.beforeSave != nil {
		r.beforeSave(stored, r.saveCalls)
	}
	if stored.Version != expectedVersion {
		return port.ErrVersionConflict
	}
	plan.Version = expectedVersion + 1
	r.plans[plan.ID] = plan.Clone()
	return nil
}

func (r *memRepo) List(ctx context.Context, filter port.PlanFilter) ([]*entity.EventPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.EventPlan
	for _, p := range r.plans {
		if len(filter.States) > 0 && !containsState(filter.States, p.Approval.State) {
			continue
		}
		if !filter.UpdatedBefore.IsZero() && !p.UpdatedAt.Before(filter.UpdatedBefore) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r *memRepo) stored(id string) *entity.EventPlan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plans[id].Clone()
}

func containsState(states []workflow.State, s workflow.State) bool {
	for _, st := range states {
		if st == s {
			return true
		}
	}
	return false
}

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

type mockNotifier struct {
	mu       sync.Mutex
	sent     []sentMessage
	sendFunc func(ctx context.Context, to, subject, body string) error
}

func (m *mockNotifier) Send(ctx context.Context, to, subject, body string) error {
	if m.sendFunc != nil {
		if err := m.sendFunc(ctx, to, subject, body); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{To: to, Subject: subject, Body: body})
	return nil
}

func (m *mockNotifier) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

type mockPublisher struct {
	calls             int
	lastContent       port.ListingContent
	createListingFunc func(ctx context.Context, content port.ListingContent) (*port.Listing, error)
}

func (m *mockPublisher) CreateListing(ctx context.Context, content port.ListingContent) (*port.Listing, error) {
	m.calls++
	m.lastContent = content
	if m.createListingFunc != nil {
		return m.createListingFunc(ctx, content)
	}
	return &port.Listing{ExternalID: "eb-1001", URL: "https://www.eventbrite.sg/e/eb-1001"}, nil
}

type mockAttendees struct {
	listAttendeesFunc func(ctx context.Context, externalID string) ([]port.Attendee, error)
}

func (m *mockAttendees) ListAttendees(ctx context.Context, externalID string) ([]port.Attendee, error) {
	if m.listAttendeesFunc != nil {
		return m.listAttendeesFunc(ctx, externalID)
	}
	return []port.Attendee{{ID: "a1", Name: "Ann", Email: "ann@x.com", Status: "Attending"}}, nil
}

type mockGenerator struct {
	generateFunc func(ctx context.Context, req port.GenerationRequest) (*entity.EventPlan, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req port.GenerationRequest) (*entity.EventPlan, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return &entity.EventPlan{
		Title:       req.CompanyA.Name + " x " + req.CompanyB.Name,
		Description: "A joint session.",
		Agenda:      []entity.AgendaItem{{StartMin: 0, EndMin: 90, Title: "Kickoff", Format: "talk"}},
	}, nil
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestPlan(id string, state workflow.State) *entity.EventPlan {
	created := fixedNow.Add(-48 * time.Hour)
	plan := &entity.EventPlan{
		ID:          id,
		Title:       "Joint Launch",
		Description: "Two companies host a practical workshop on shared tooling.",
		Agenda: []entity.AgendaItem{
			{StartMin: 0, EndMin: 45, Title: "Welcome", Format: "talk"},
			{StartMin: 45, EndMin: 150, Title: "Workshop", Format: "hands-on"},
		},
		MarketingAssets: entity.MarketingAssets{LandingHero: "Build together"},
		Approval: entity.ApprovalRecord{
			State:           state,
			CompanyAContact: entity.Contact{Name: "Alice", Role: "CTO", Email: emailA},
			CompanyBContact: entity.Contact{Name: "Bob", Role: "CMO", Email: emailB},
			Approvers:       []entity.Approver{},
			History:         []entity.HistoryEntry{{Timestamp: created, Action: "Plan generated", By: "system"}},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}

	if state == workflow.StateAwaitingReviewB || state == workflow.StateApproved || state == workflow.StatePublished {
		plan.Approval.Approvers = append(plan.Approval.Approvers, entity.Approver{Company: entity.CompanyA, ApprovedAt: created, ApprovedBy: emailA})
		plan.Approval.History = append(plan.Approval.History, entity.HistoryEntry{Timestamp: created, Action: "Approved by Company A", By: emailA})
	}
	if state == workflow.StateApproved || state == workflow.StatePublished {
		plan.Approval.Approvers = append(plan.Approval.Approvers, entity.Approver{Company: entity.CompanyB, ApprovedAt: created, ApprovedBy: emailB})
		plan.Approval.History = append(plan.Approval.History, entity.HistoryEntry{Timestamp: created, Action: "Approved by Company B", By: emailB})
	}
	return plan
}

type testHarness struct {
	repo      *memRepo
	notifier  *mockNotifier
	publisher *mockPublisher
	attendees *mockAttendees
	generator *mockGenerator
	service   WorkflowService
}

func newHarness(config WorkflowConfig, plans ...*entity.EventPlan) *testHarness {
	h := &testHarness{
		repo:      newMemRepo(plans...),
		notifier:  &mockNotifier{},
		publisher: &mockPublisher{},
		attendees: &mockAttendees{},
		generator: &mockGenerator{},
	}
	config.Clock = func() time.Time { return fixedNow }
	if config.NewID == nil {
		config.NewID = func() string { return "evt-test" }
	}
	notifications := NewNotificationService(h.notifier, NotificationConfig{
		AppBaseURL: "https://app.example.com/",
		SenderName: "Collab Events",
	}, &mockLogger{})
	h.service = NewWorkflowService(h.repo, notifications, h.publisher, h.attendees, h.generator, config, &mockLogger{})
	return h
}
