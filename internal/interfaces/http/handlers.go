package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/collab-approval/internal/application/port"
	"github.com/garyjia/collab-approval/internal/application/service"
	"github.com/garyjia/collab-approval/internal/domain/entity"
	"github.com/garyjia/collab-approval/internal/domain/workflow"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// HealthReporter checks backing components. A nil error marks the component healthy.
type HealthReporter interface {
	Check(ctx context.Context) map[string]error
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	workflow service.WorkflowService
	health   HealthReporter
	version  string
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(workflow service.WorkflowService, health HealthReporter, version string, logger Logger) *Handlers {
	return &Handlers{
		workflow: workflow,
		health:   health,
		version:  version,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components,omitempty"`
}

// CreatePlanRequest is the body of POST /api/plans
type CreatePlanRequest struct {
	CompanyA        port.CompanyProfile `json:"companyA"`
	CompanyB        port.CompanyProfile `json:"companyB"`
	CompanyAContact entity.Contact      `json:"companyAContact"`
	CompanyBContact entity.Contact      `json:"companyBContact"`
}

// ApproveRequest is the body of POST /api/plans/:id/approve
type ApproveRequest struct {
	ApproverEmail string `json:"approverEmail" binding:"required"`
}

// ListPlansRequest represents query parameters for listing plans
type ListPlansRequest struct {
	State  string `form:"state"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// CreatePlanResponse is returned by POST /api/plans
type CreatePlanResponse struct {
	Plan     *entity.EventPlan `json:"plan"`
	Warnings []string          `json:"warnings,omitempty"`
}

// ApprovalResponse is returned by POST /api/plans/:id/approve
type ApprovalResponse struct {
	Plan     *entity.EventPlan `json:"plan"`
	Company  entity.Company    `json:"company"`
	Warning  string            `json:"warning,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// PublishResponse is returned by POST /api/plans/:id/publish
type PublishResponse struct {
	ExternalID string `json:"externalId"`
	URL        string `json:"url"`
	State      string `json:"state"`
}

// ResendResponse is returned by POST /api/plans/:id/request-review
type ResendResponse struct {
	Sent      bool           `json:"sent"`
	Company   entity.Company `json:"company,omitempty"`
	Recipient string         `json:"recipient,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	}

	status := http.StatusOK
	if h.health != nil {
		response.Components = make(map[string]string)
		for name, err := range h.health.Check(c.Request.Context()) {
			if err != nil {
				response.Components[name] = err.Error()
				response.Status = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			response.Components[name] = "ok"
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// CreatePlan handles POST /api/plans
func (h *Handlers) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid create plan body", "error", err)
		h.badRequest(c, "invalid request body")
		return
	}

	result, err := h.workflow.CreatePlan(c.Request.Context(), service.CreatePlanRequest{
		CompanyA:        req.CompanyA,
		CompanyB:        req.CompanyB,
		CompanyAContact: req.CompanyAContact,
		CompanyBContact: req.CompanyBContact,
	})
	if err != nil {
		h.writeError(c, "create plan", err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    CreatePlanResponse{Plan: result.Plan, Warnings: result.Warnings},
	})
}

// ListPlans handles GET /api/plans
func (h *Handlers) ListPlans(c *gin.Context) {
	var req ListPlansRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		h.badRequest(c, "invalid query parameters")
		return
	}

	if req.Limit <= 0 || req.Limit > maxListLimit {
		req.Limit = defaultListLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	filter := port.PlanFilter{Limit: req.Limit, Offset: req.Offset}
	for _, s := range strings.Split(req.State, ",") {
		if s = strings.TrimSpace(s); s != "" {
			filter.States = append(filter.States, workflow.State(s))
		}
	}

	plans, err := h.workflow.ListPlans(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, "list plans", err)
		return
	}

	if plans == nil {
		plans = []*entity.EventPlan{}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    plans,
	})
}

// GetPlan handles GET /api/plans/:id
func (h *Handlers) GetPlan(c *gin.Context) {
	plan, err := h.workflow.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get plan", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    plan,
	})
}

// SubmitApproval handles POST /api/plans/:id/approve
func (h *Handlers) SubmitApproval(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid approve body", "error", err)
		h.badRequest(c, "approverEmail is required")
		return
	}

	result, err := h.workflow.SubmitApproval(c.Request.Context(), c.Param("id"), req.ApproverEmail)
	if err != nil {
		h.writeError(c, "submit approval", err)
		return
	}

	response := ApprovalResponse{
		Plan:     result.Plan,
		Company:  result.Company,
		Warnings: result.Warnings,
	}
	if result.NotificationError != nil {
		response.Warning = "approval recorded but confirmation could not be sent"
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// RequestPublish handles POST /api/plans/:id/publish
func (h *Handlers) RequestPublish(c *gin.Context) {
	result, err := h.workflow.RequestPublish(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "publish plan", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: PublishResponse{
			ExternalID: result.ExternalID,
			URL:        result.URL,
			State:      result.Plan.Approval.State.String(),
		},
	})
}

// ResendReviewRequest handles POST /api/plans/:id/request-review
func (h *Handlers) ResendReviewRequest(c *gin.Context) {
	result, err := h.workflow.ResendReviewRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "resend review request", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: ResendResponse{
			Sent:      result.Sent,
			Company:   result.Company,
			Recipient: result.Recipient,
		},
	})
}

// ListParticipants handles GET /api/plans/:id/participants
func (h *Handlers) ListParticipants(c *gin.Context) {
	attendees, err := h.workflow.ListParticipants(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "list participants", err)
		return
	}

	if attendees == nil {
		attendees = []port.Attendee{}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    attendees,
	})
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
	})
}

// writeError maps service errors to status codes. External failures are
// logged with their cause but reported without internal detail.
func (h *Handlers) writeError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	msg := err.Error()

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "op", op, "plan_id", c.Param("id"), "error", err)
		var ext *service.ExternalServiceError
		if errors.As(err, &ext) {
			msg = ext.Service + " unavailable"
		} else {
			msg = "internal error"
		}
	} else {
		h.logger.Info("Request rejected", "op", op, "plan_id", c.Param("id"), "status", status, "error", err)
	}

	c.JSON(status, Response{
		Success: false,
		Error:   msg,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrPreconditionFailed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
