package entity

import (
	"time"

	"github.com/garyjia/collab-approval/internal/domain/workflow"
)

// Company designates one of the two collaborating parties
type Company string

const (
	CompanyA Company = "A"
	CompanyB Company = "B"
)

// Trigger returns the workflow trigger fired when this company approves
func (c Company) Trigger() workflow.Trigger {
	if c == CompanyA {
		return workflow.TriggerApproveA
	}
	return workflow.TriggerApproveB
}

// Label returns the human-readable company name used in records
func (c Company) Label() string {
	return "Company " + string(c)
}

// IsValid returns true for A or B
func (c Company) IsValid() bool {
	return c == CompanyA || c == CompanyB
}

// Contact is the registered approver identity for one company
type Contact struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

// Approver is one recorded approval
type Approver struct {
	Company    Company   `json:"company"`
	ApprovedAt time.Time `json:"approvedAt"`
	ApprovedBy string    `json:"approvedBy"`
}

// HistoryEntry is one line of the approval audit log
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	By        string    `json:"by"`
}

// ApprovalRecord is the workflow state embedded in every plan
type ApprovalRecord struct {
	State           workflow.State `json:"state"`
	CompanyAContact Contact        `json:"companyA_contact"`
	CompanyBContact Contact        `json:"companyB_contact"`
	Approvers       []Approver     `json:"approvers"`
	History         []HistoryEntry `json:"approvalHistory"`
}

// ContactFor returns the registered contact of the given company
func (r *ApprovalRecord) ContactFor(c Company) Contact {
	if c == CompanyA {
		return r.CompanyAContact
	}
	return r.CompanyBContact
}

// HasApproved reports whether the approvers list already holds an entry for the company
func (r *ApprovalRecord) HasApproved(c Company) bool {
	for _, a := range r.Approvers {
		if a.Company == c {
			return true
		}
	}
	return false
}

// ReviewerFor returns the company whose turn it is in the given state
func ReviewerFor(state workflow.State) (Company, bool) {
	switch state {
	case workflow.StateAwaitingReviewA:
		return CompanyA, true
	case workflow.StateAwaitingReviewB:
		return CompanyB, true
	default:
		return "", false
	}
}
