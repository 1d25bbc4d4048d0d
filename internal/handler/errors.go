package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/templateflow/api/internal/matcher"
	"github.com/templateflow/api/internal/store"
	"github.com/templateflow/api/internal/workflow"
	"github.com/templateflow/api/pkg/response"
)

// respondDomainError maps core error taxonomy onto response codes.
// Every rejection leaves the job in its prior state, so these are safe
// to surface directly.
func respondDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return response.NotFound(c, "Job not found")
	case errors.Is(err, matcher.ErrConflictingAssignment):
		return response.ConflictingAssignment(c, err.Error())
	case errors.Is(err, matcher.ErrInvalidInput), errors.Is(err, workflow.ErrInvalidInput):
		return response.InvalidInput(c, err.Error())
	case errors.Is(err, workflow.ErrPendingReview):
		return response.PendingReview(c, err.Error(), nil)
	case errors.Is(err, workflow.ErrValidationBlocked):
		return response.ValidationBlocked(c, err.Error())
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrConcurrentModification):
		return response.InvalidTransition(c, err.Error())
	default:
		return response.ServiceError(c, err.Error())
	}
}

func formatValidationErrors(err error) []fiber.Map {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	out := make([]fiber.Map, 0, len(ve))
	for _, fe := range ve {
		out = append(out, fiber.Map{
			"field": fe.Field(),
			"rule":  fe.Tag(),
			"value": fe.Param(),
		})
	}
	return out
}
