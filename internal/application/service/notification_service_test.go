package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/garyjia/collab-approval/internal/domain/entity"
	"github.com/garyjia/collab-approval/internal/domain/workflow"
)

func newTestNotificationService(notifier *mockNotifier) NotificationService {
	return NewNotificationService(notifier, NotificationConfig{
		AppBaseURL: "https://app.example.com",
		SenderName: "Collab Events",
	}, &mockLogger{})
}

func TestNotificationService_SendReviewRequest(t *testing.T) {
	notifier := &mockNotifier{}
	service := newTestNotificationService(notifier)
	plan := newTestPlan("evt-9", workflow.StateAwaitingReviewA)
	plan.Title = "Tools & <Tactics>"

	recipient, err := service.SendReviewRequest(context.Background(), plan, entity.CompanyA)
	if err != nil {
		t.Fatalf("SendReviewRequest() error = %v", err)
	}
	if recipient != emailA {
		t.Errorf("recipient = %q, want %q", recipient, emailA)
	}

	msgs := notifier.messages()
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(msgs))
	}
	if msgs[0].Subject != "Review Requested: Tools & <Tactics>" {
		t.Errorf("Subject = %q", msgs[0].Subject)
	}
	body := msgs[0].Body
	for _, want := range []string{"Hello Alice,", "Tools &amp; &lt;Tactics&gt;", `href="https://app.example.com/review/evt-9"`, "Collab Events"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestNotificationService_SendReviewRequestWithoutContact(t *testing.T) {
	notifier := &mockNotifier{}
	service := newTestNotificationService(notifier)
	plan := newTestPlan("evt-9", workflow.StateAwaitingReviewB)
	plan.Approval.CompanyBContact.Email = ""

	if _, err := service.SendReviewRequest(context.Background(), plan, entity.CompanyB); err == nil {
		t.Fatal("expected error for missing contact email")
	}
	if len(notifier.messages()) != 0 {
		t.Errorf("notifier was called")
	}
}

func TestNotificationService_SendApprovalConfirmation(t *testing.T) {
	tests := []struct {
		state workflow.State
		want  string
	}{
		{workflow.StateAwaitingReviewB, NextStepsWaiting},
		{workflow.StateApproved, NextStepsApproved},
	}

	for _, tt := range tests {
		notifier := &mockNotifier{}
		service := newTestNotificationService(notifier)
		plan := newTestPlan("evt-9", tt.state)

		if err := service.SendApprovalConfirmation(context.Background(), plan, emailB); err != nil {
			t.Fatalf("SendApprovalConfirmation() error = %v", err)
		}

		msgs := notifier.messages()
		if len(msgs) != 1 || msgs[0].To != emailB {
			t.Fatalf("messages = %+v", msgs)
		}
		if msgs[0].Subject != "Approval Confirmed: Joint Launch" {
			t.Errorf("Subject = %q", msgs[0].Subject)
		}
		if !strings.Contains(msgs[0].Body, tt.want) {
			t.Errorf("%s: body missing %q", tt.state, tt.want)
		}
	}
}

func TestNotificationService_SendFailureIsExternal(t *testing.T) {
	notifier := &mockNotifier{
		sendFunc: func(ctx context.Context, to, subject, body string) error {
			return errors.New("connection reset")
		},
	}
	service := newTestNotificationService(notifier)

	err := service.SendApprovalConfirmation(context.Background(), newTestPlan("evt-9", workflow.StateApproved), emailB)
	var extErr *ExternalServiceError
	if !errors.As(err, &extErr) || extErr.Service != "notifier" {
		t.Fatalf("error = %v, want notifier ExternalServiceError", err)
	}
}

func TestRenderTemplate_Unknown(t *testing.T) {
	if _, err := renderTemplate("missing", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
