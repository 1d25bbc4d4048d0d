package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/templateflow/api/internal/middleware"
	"github.com/templateflow/api/internal/model"
	"github.com/templateflow/api/internal/service"
	"github.com/templateflow/api/pkg/response"
)

type ValidationHandler struct {
	service   *service.JobService
	validator *validator.Validate
}

func NewValidationHandler(svc *service.JobService, v *validator.Validate) *ValidationHandler {
	return &ValidationHandler{
		service:   svc,
		validator: v,
	}
}

// ApprovePreview handles POST /api/jobs/:jobId/preview/approve
func (h *ValidationHandler) ApprovePreview(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.ApprovePreview(c.Context(), jobID, middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return response.OK(c, fiber.Map{
		"jobId":     job.ID,
		"stage":     job.Stage.String(),
		"status":    job.Status,
		"gateState": job.ConflictReport.GateState,
	})
}

// Conflicts handles GET /api/jobs/:jobId/conflicts
func (h *ValidationHandler) Conflicts(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.Get(c.Context(), jobID)
	if err != nil {
		return respondDomainError(c, err)
	}
	if job.ConflictReport == nil {
		return response.NotFound(c, "Conflict detection has not run yet")
	}
	return response.OK(c, job.ConflictReport)
}

// Approve handles POST /api/jobs/:jobId/validation/approve
func (h *ValidationHandler) Approve(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.ApproveValidation(c.Context(), jobID, middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return response.Accepted(c, model.TransitionResponse{
		JobID:  job.ID,
		Stage:  job.Stage.String(),
		Status: job.Status,
	})
}

// Override handles POST /api/jobs/:jobId/validation/override
func (h *ValidationHandler) Override(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	var req model.ValidationOverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	job, err := h.service.OverrideValidation(c.Context(), jobID, req.Reason, middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return response.Accepted(c, model.TransitionResponse{
		JobID:  job.ID,
		Stage:  job.Stage.String(),
		Status: job.Status,
	})
}

// Return handles POST /api/jobs/:jobId/validation/return
func (h *ValidationHandler) Return(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.ReturnToReview(c.Context(), jobID, middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return response.OK(c, model.TransitionResponse{
		JobID:  job.ID,
		Stage:  job.Stage.String(),
		Status: job.Status,
	})
}

// Retry handles POST /api/jobs/:jobId/script/retry
func (h *ValidationHandler) Retry(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.RetryScript(c.Context(), jobID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return response.Accepted(c, model.TransitionResponse{
		JobID:  job.ID,
		Stage:  job.Stage.String(),
		Status: job.Status,
	})
}
