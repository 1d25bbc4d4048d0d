package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/templateflow/api/internal/middleware"
	"github.com/templateflow/api/internal/model"
	"github.com/templateflow/api/internal/service"
	"github.com/templateflow/api/pkg/response"
)

type JobHandler struct {
	service   *service.JobService
	validator *validator.Validate
}

func NewJobHandler(svc *service.JobService, v *validator.Validate) *JobHandler {
	return &JobHandler{
		service:   svc,
		validator: v,
	}
}

// Create handles POST /api/jobs
func (h *JobHandler) Create(c *fiber.Ctx) error {
	var req model.JobCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	job, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return respondDomainError(c, err)
	}

	return response.Created(c, model.JobCreateResponse{
		JobID:     job.ID,
		Stage:     job.Stage.String(),
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
	})
}

// List handles GET /api/jobs
func (h *JobHandler) List(c *fiber.Ctx) error {
	summaries, err := h.service.List(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, fiber.Map{"jobs": summaries})
}

// Get handles GET /api/jobs/:jobId
func (h *JobHandler) Get(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.Get(c.Context(), jobID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return response.OK(c, job)
}

// Parse handles POST /api/jobs/:jobId/parse
func (h *JobHandler) Parse(c *fiber.Ctx) error {
	return h.transition(c, h.service.Parse)
}

// Audit handles GET /api/jobs/:jobId/audit
func (h *JobHandler) Audit(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.Get(c.Context(), jobID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return response.OK(c, fiber.Map{
		"jobId":   job.ID,
		"entries": job.AuditLog,
	})
}

// Script handles GET /api/jobs/:jobId/script
func (h *JobHandler) Script(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.Get(c.Context(), jobID)
	if err != nil {
		return respondDomainError(c, err)
	}
	if job.Script == "" {
		return response.NotFound(c, "No script generated yet")
	}
	return response.OK(c, model.ScriptResponse{JobID: job.ID, Script: job.Script})
}

// transition runs a single-argument workflow action with the
// authenticated user as actor
func (h *JobHandler) transition(c *fiber.Ctx, fn func(ctx context.Context, jobID, actor string) (*model.Job, error)) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := fn(c.Context(), jobID, middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return response.OK(c, model.TransitionResponse{
		JobID:  job.ID,
		Stage:  job.Stage.String(),
		Status: job.Status,
	})
}
