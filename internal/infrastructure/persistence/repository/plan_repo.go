package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/garyjia/collab-approval/internal/application/port"
	"github.com/garyjia/collab-approval/internal/domain/entity"
)

// PlanRepository implements port.PlanRepository on SQLite.
// Each plan is one JSON document; state, version and timestamps are also
// kept in columns for conditional writes and filtering.
type PlanRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *sql.DB, logger *zap.Logger) port.PlanRepository {
	return &PlanRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new plan with version 1
func (r *PlanRepository) Create(ctx context.Context, plan *entity.EventPlan) error {
	doc, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	query := `
		INSERT INTO event_plans (id, state, version, document, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		plan.ID,
		string(plan.Approval.State),
		string(doc),
		plan.CreatedAt.UnixNano(),
		plan.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", port.ErrPlanExists, plan.ID)
		}
		r.logger.Error("Failed to create plan", zap.String("plan_id", plan.ID), zap.Error(err))
		return fmt.Errorf("failed to create plan: %w", err)
	}

	plan.Version = 1
	return nil
}

// GetByID retrieves a plan by ID
func (r *PlanRepository) GetByID(ctx context.Context, id string) (*entity.EventPlan, error) {
	query := `SELECT version, document FROM event_plans WHERE id = ?`

	var (
		version int64
		doc     string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&version, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", port.ErrPlanNotFound, id)
	}
	if err != nil {
		r.logger.Error("Failed to get plan by ID", zap.String("plan_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return decodePlan(doc, version)
}

// Save overwrites the plan if the stored version still equals expectedVersion
func (r *PlanRepository) Save(ctx context.Context, plan *entity.EventPlan, expectedVersion int64) error {
	doc, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	query := `
		UPDATE event_plans
		SET state = ?, version = version + 1, document = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(plan.Approval.State),
		string(doc),
		plan.UpdatedAt.UnixNano(),
		plan.ID,
		expectedVersion,
	)
	if err != nil {
		r.logger.Error("Failed to save plan", zap.String("plan_id", plan.ID), zap.Error(err))
		return fmt.Errorf("failed to save plan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return r.missOrConflict(ctx, plan.ID, expectedVersion)
	}

	plan.Version = expectedVersion + 1
	return nil
}

// List retrieves plans newest first
func (r *PlanRepository) List(ctx context.Context, filter port.PlanFilter) ([]*entity.EventPlan, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if len(filter.States) > 0 {
		placeholders := make([]string, len(filter.States))
		for i, s := range filter.States {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		conditions = append(conditions, "state IN ("+strings.Join(placeholders, ", ")+")")
	}
	if !filter.UpdatedBefore.IsZero() {
		conditions = append(conditions, "updated_at < ?")
		args = append(args, filter.UpdatedBefore.UnixNano())
	}

	query := "SELECT version, document FROM event_plans"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list plans", zap.Error(err))
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*entity.EventPlan
	for rows.Next() {
		var (
			version int64
			doc     string
		)
		if err := rows.Scan(&version, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plan, err := decodePlan(doc, version)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	return plans, rows.Err()
}

func (r *PlanRepository) missOrConflict(ctx context.Context, id string, expectedVersion int64) error {
	var current int64
	err := r.db.QueryRowContext(ctx, `SELECT version FROM event_plans WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", port.ErrPlanNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to check plan version: %w", err)
	}

	r.logger.Info("Plan version conflict",
		zap.String("plan_id", id),
		zap.Int64("expected", expectedVersion),
		zap.Int64("current", current),
	)
	return fmt.Errorf("%w: %s expected version %d, found %d", port.ErrVersionConflict, id, expectedVersion, current)
}

func decodePlan(doc string, version int64) (*entity.EventPlan, error) {
	var plan entity.EventPlan
	if err := json.Unmarshal([]byte(doc), &plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	if plan.Approval.Approvers == nil {
		plan.Approval.Approvers = []entity.Approver{}
	}
	if plan.Approval.History == nil {
		plan.Approval.History = []entity.HistoryEntry{}
	}
	plan.Version = version
	return &plan, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
