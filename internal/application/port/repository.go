package port

import (
	"context"
	"errors"
	"time"

	"github.com/garyjia/collab-approval/internal/domain/entity"
	"github.com/garyjia/collab-approval/internal/domain/workflow"
)

var (
	// ErrPlanNotFound is returned when no plan exists for an ID
	ErrPlanNotFound = errors.New("plan not found")

	// ErrVersionConflict is returned by Save when the stored plan changed since it was read
	ErrVersionConflict = errors.New("plan version conflict")

	// ErrPlanExists is returned by Create when the ID is already taken
	ErrPlanExists = errors.New("plan already exists")
)

// PlanFilter narrows List results
type PlanFilter struct {
	States        []workflow.State
	UpdatedBefore time.Time
	Limit         int
	Offset        int
}

// PlanRepository defines persistence operations for EventPlan
type PlanRepository interface {
	// Create inserts a new plan and sets its Version to 1
	Create(ctx context.Context, plan *entity.EventPlan) error

	// GetByID loads a plan; returns ErrPlanNotFound when absent
	GetByID(ctx context.Context, id string) (*entity.EventPlan, error)

	// Save writes the full plan only if the stored version still equals
	// expectedVersion, then sets plan.Version to the new version.
	// Returns ErrVersionConflict on mismatch and ErrPlanNotFound when absent.
	Save(ctx context.Context, plan *entity.EventPlan, expectedVersion int64) error

	// List returns plans ordered by creation time, newest first
	List(ctx context.Context, filter PlanFilter) ([]*entity.EventPlan, error)
}
