// Package approval decides who may approve a plan and records approvals.
//
// Authorization is derived from the workflow state ("whose turn is it") and
// the contact registered for that turn. There is no separate permission table.
package approval

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/collab-approval/internal/domain/entity"
)

// ErrDuplicateApproval is returned when a company already has an approval entry
var ErrDuplicateApproval = errors.New("company has already approved this plan")

// ResolveApprover returns the company the actor may approve for, or false.
//
// Company A resolves only in awaiting_review_A with company A's contact email,
// company B only in awaiting_review_B with company B's. Emails compare
// case-insensitively after trimming; stored values keep their original case.
func ResolveApprover(plan *entity.EventPlan, actorEmail string) (entity.Company, bool) {
	if plan == nil {
		return "", false
	}

	company, ok := entity.ReviewerFor(plan.Approval.State)
	if !ok {
		return "", false
	}

	registered := plan.Approval.ContactFor(company).Email
	if !SameEmail(registered, actorEmail) {
		return "", false
	}
	return company, true
}

// RecordApproval returns a copy of plan with one approver entry and one
// history entry appended for company, and UpdatedAt set to now.
// The state is not advanced and the input plan is not modified.
func RecordApproval(plan *entity.EventPlan, company entity.Company, actorEmail string, now time.Time) (*entity.EventPlan, error) {
	if !company.IsValid() {
		return nil, fmt.Errorf("invalid company designator %q", company)
	}
	if plan.Approval.HasApproved(company) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateApproval, company.Label())
	}

	updated := plan.Clone()
	updated.Approval.Approvers = append(updated.Approval.Approvers, entity.Approver{
		Company:    company,
		ApprovedAt: now,
		ApprovedBy: actorEmail,
	})
	updated.Approval.History = append(updated.Approval.History, entity.HistoryEntry{
		Timestamp: now,
		Action:    "Approved by " + company.Label(),
		By:        actorEmail,
	})
	updated.UpdatedAt = now

	return updated, nil
}

// SameEmail compares two addresses ignoring case and surrounding whitespace
func SameEmail(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
