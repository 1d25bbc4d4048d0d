package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/templateflow/api/internal/middleware"
	"github.com/templateflow/api/internal/model"
	"github.com/templateflow/api/internal/service"
	"github.com/templateflow/api/pkg/response"
)

type MatchHandler struct {
	service   *service.JobService
	validator *validator.Validate
}

func NewMatchHandler(svc *service.JobService, v *validator.Validate) *MatchHandler {
	return &MatchHandler{
		service:   svc,
		validator: v,
	}
}

// Run handles POST /api/jobs/:jobId/match
func (h *MatchHandler) Run(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.RunMatch(c.Context(), jobID, middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return response.OK(c, matchSetResponse(job))
}

// Get handles GET /api/jobs/:jobId/matches
func (h *MatchHandler) Get(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.Get(c.Context(), jobID)
	if err != nil {
		return respondDomainError(c, err)
	}
	if job.MatchSet == nil {
		return response.NotFound(c, "Matching has not run yet")
	}
	return response.OK(c, matchSetResponse(job))
}

// Override handles PUT /api/jobs/:jobId/matches/:sourceId
func (h *MatchHandler) Override(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	sourceID := c.Params("sourceId")
	if jobID == "" || sourceID == "" {
		return response.ValidationError(c, "Job ID and source ID are required", nil)
	}

	var req model.OverrideAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	job, err := h.service.OverrideAssignment(c.Context(), jobID, sourceID, req.TargetID, middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return response.OK(c, matchSetResponse(job))
}

// CompleteReview handles POST /api/jobs/:jobId/review/complete
func (h *MatchHandler) CompleteReview(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	var req model.ReviewCompleteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.ValidationError(c, "Invalid request body", nil)
		}
	}

	job, err := h.service.CompleteReview(c.Context(), jobID, req.Force, middleware.GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return response.Accepted(c, model.TransitionResponse{
		JobID:  job.ID,
		Stage:  job.Stage.String(),
		Status: job.Status,
	})
}

func matchSetResponse(job *model.Job) model.MatchSetResponse {
	resp := model.MatchSetResponse{
		JobID:      job.ID,
		Unresolved: job.MatchSet.Unresolved(),
	}
	for _, a := range job.MatchSet.Assignments {
		resp.Assignments = append(resp.Assignments, model.AssignmentRow{
			MatchAssignment: a,
			Band:            model.ConfidenceBand(a.Confidence),
		})
	}
	return resp
}
