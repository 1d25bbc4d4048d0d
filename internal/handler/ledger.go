package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/templateflow/api/internal/ledger"
	"github.com/templateflow/api/internal/model"
	"github.com/templateflow/api/pkg/response"
)

type LedgerHandler struct {
	ledger    *ledger.Ledger
	validator *validator.Validate
}

func NewLedgerHandler(l *ledger.Ledger, v *validator.Validate) *LedgerHandler {
	return &LedgerHandler{
		ledger:    l,
		validator: v,
	}
}

// RecordDecision handles POST /api/ledger/decisions
func (h *LedgerHandler) RecordDecision(c *fiber.Ctx) error {
	var req model.LedgerDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}
	if req.SourceDims.Width <= 0 || req.SourceDims.Height <= 0 ||
		req.TargetDims.Width <= 0 || req.TargetDims.Height <= 0 {
		return response.InvalidInput(c, "dimensions must be positive")
	}

	rec, err := h.ledger.RecordDecision(c.Context(), req.SourceDims, req.TargetDims, req.HumanChoice)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.Created(c, model.LedgerDecisionResponse{Record: rec})
}

// Stats handles GET /api/ledger/stats
func (h *LedgerHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.ledger.Statistics(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, stats)
}
