package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/collab-approval/internal/application/port"
	"github.com/garyjia/collab-approval/internal/domain/entity"
	"github.com/garyjia/collab-approval/internal/domain/workflow"
)

// Confirmation copy, branching on the state reached after an approval
const (
	NextStepsApproved = "All approvals received. The event will be published to Eventbrite shortly."
	NextStepsWaiting  = "Waiting for approval from the other company."
)

// NotificationConfig holds template variables shared by every message
type NotificationConfig struct {
	AppBaseURL string
	SenderName string
	Timeout    time.Duration
}

// NotificationService renders named templates and hands them to a Notifier
type NotificationService interface {
	// SendReviewRequest asks the company's registered contact to review the plan.
	// Returns the recipient address.
	SendReviewRequest(ctx context.Context, plan *entity.EventPlan, company entity.Company) (string, error)

	// SendApprovalConfirmation confirms a recorded approval to the approving actor
	SendApprovalConfirmation(ctx context.Context, plan *entity.EventPlan, actorEmail string) error
}

type notificationServiceImpl struct {
	notifier port.Notifier
	config   NotificationConfig
	logger   Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifier port.Notifier, config NotificationConfig, logger Logger) NotificationService {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &notificationServiceImpl{
		notifier: notifier,
		config:   config,
		logger:   logger,
	}
}

// SendReviewRequest sends the review_request template to the company's contact
func (s *notificationServiceImpl) SendReviewRequest(ctx context.Context, plan *entity.EventPlan, company entity.Company) (string, error) {
	contact := plan.Approval.ContactFor(company)
	if contact.Email == "" {
		return "", fmt.Errorf("no contact email registered for %s", company.Label())
	}

	body, err := renderTemplate(TemplateReviewRequest, map[string]string{
		"Name":      contact.Name,
		"Title":     plan.Title,
		"ReviewURL": s.reviewURL(plan.ID),
		"Sender":    s.config.SenderName,
	})
	if err != nil {
		return "", err
	}

	subject := fmt.Sprintf("Review Requested: %s", plan.Title)
	if err := s.send(ctx, contact.Email, subject, body); err != nil {
		s.logger.Error("Failed to send review request", "error", err, "plan_id", plan.ID, "company", company)
		return contact.Email, err
	}

	s.logger.Info("Review request sent", "plan_id", plan.ID, "company", company, "to", contact.Email)
	return contact.Email, nil
}

// SendApprovalConfirmation sends the approval_confirmation template to the approving actor
func (s *notificationServiceImpl) SendApprovalConfirmation(ctx context.Context, plan *entity.EventPlan, actorEmail string) error {
	nextSteps := NextStepsWaiting
	if plan.Approval.State == workflow.StateApproved {
		nextSteps = NextStepsApproved
	}

	body, err := renderTemplate(TemplateApprovalConfirmation, map[string]string{
		"Name":      actorEmail,
		"Title":     plan.Title,
		"NextSteps": nextSteps,
		"Sender":    s.config.SenderName,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Approval Confirmed: %s", plan.Title)
	if err := s.send(ctx, actorEmail, subject, body); err != nil {
		s.logger.Error("Failed to send approval confirmation", "error", err, "plan_id", plan.ID, "to", actorEmail)
		return err
	}

	s.logger.Info("Approval confirmation sent", "plan_id", plan.ID, "to", actorEmail, "state", plan.Approval.State)
	return nil
}

func (s *notificationServiceImpl) send(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	if err := s.notifier.Send(ctx, to, subject, body); err != nil {
		return externalError("notifier", "send", err)
	}
	return nil
}

func (s *notificationServiceImpl) reviewURL(planID string) string {
	return strings.TrimRight(s.config.AppBaseURL, "/") + "/review/" + planID
}
