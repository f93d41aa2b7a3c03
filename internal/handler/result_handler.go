package handler

import (
	"iq-test-service/internal/domain"
	"iq-test-service/internal/dto"
	"iq-test-service/internal/middleware"
	"iq-test-service/internal/service"
	"iq-test-service/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ResultHandler handles result retrieval and reconciliation HTTP requests
type ResultHandler struct {
	reconcile service.ReconcileService
	validator *validation.Validator
}

// NewResultHandler creates a new ResultHandler instance
func NewResultHandler(reconcile service.ReconcileService, validator *validation.Validator) *ResultHandler {
	return &ResultHandler{
		reconcile: reconcile,
		validator: validator,
	}
}

// ResolveResult godoc
// @Summary Resolve the result to display
// @Description Claims a pending guest result for the logged-in user when one exists, otherwise falls back to the latest stored result or asks the client to redirect
// @Tags results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ResolveResultRequest true "Session or result reference"
// @Success 200 {object} dto.ResolveResultResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /results/resolve [post]
func (h *ResultHandler) ResolveResult(c *fiber.Ctx) error {
	var req dto.ResolveResultRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	if errs := h.validator.ValidateResolveResultRequest(&req); len(errs) > 0 {
		return errs
	}

	userID := middleware.UserID(c)
	if userID == "" {
		return domain.NewError(domain.CodeUnauthorized, "authentication required", nil)
	}

	resp, err := h.reconcile.ResolveResult(c.Context(), userID, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetResult godoc
// @Summary Get one stored result
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param id path string true "Result id"
// @Success 200 {object} dto.ResultResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /results/{id} [get]
func (h *ResultHandler) GetResult(c *fiber.Ctx) error {
	resultID := c.Params("id")
	if errs := h.validator.ValidateResultID(resultID); len(errs) > 0 {
		return errs
	}

	result, err := h.reconcile.GetResultByID(c.Context(), middleware.UserID(c), resultID)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// ListResults godoc
// @Summary List the user's stored results
// @Description Most recent first
// @Tags results
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ResultListResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /results [get]
func (h *ResultHandler) ListResults(c *fiber.Ctx) error {
	resp, err := h.reconcile.ListResults(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
