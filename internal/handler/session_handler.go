package handler

import (
	"iq-test-service/internal/dto"
	"iq-test-service/internal/logger"
	"iq-test-service/internal/middleware"
	"iq-test-service/internal/service"
	"iq-test-service/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionHandler handles test session HTTP requests
type SessionHandler struct {
	sessions  service.TestSessionService
	validator *validation.Validator
}

// NewSessionHandler creates a new SessionHandler instance
func NewSessionHandler(sessions service.TestSessionService, validator *validation.Validator) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		validator: validator,
	}
}

// StartTest godoc
// @Summary Start a test attempt
// @Description Begins a fresh attempt and returns the first page with the countdown running
// @Tags tests
// @Accept json
// @Produce json
// @Param request body dto.StartTestRequest false "Optional session id to reuse"
// @Success 200 {object} dto.SessionSnapshot
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /tests/start [post]
func (h *SessionHandler) StartTest(c *fiber.Ctx) error {
	var req dto.StartTestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	if req.SessionID != "" {
		if errs := h.validator.ValidateSessionID(req.SessionID); len(errs) > 0 {
			return errs
		}
	}

	snap, err := h.sessions.StartTest(c.Context(), req.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

// GetSession godoc
// @Summary Get the current session snapshot
// @Description Returns session state, answers, timer and the requested page; rehydrates after a reload
// @Tags tests
// @Produce json
// @Param session_id query string true "Session id"
// @Param page query int false "Page index"
// @Success 200 {object} dto.SessionSnapshot
// @Failure 400 {object} middleware.ErrorResponse
// @Router /tests/session [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if errs := h.validator.ValidateSessionID(sessionID); len(errs) > 0 {
		return errs
	}
	pageIndex := c.QueryInt("page", 0)

	snap, err := h.sessions.GetSession(c.Context(), sessionID, pageIndex)
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

// SetAnswer godoc
// @Summary Answer a question
// @Description Upserts the selected option for one question; a null selection clears it
// @Tags tests
// @Accept json
// @Produce json
// @Param request body dto.SetAnswerRequest true "Answer details"
// @Success 200 {object} dto.SessionSnapshot
// @Failure 400 {object} middleware.ErrorResponse
// @Router /tests/answers [put]
func (h *SessionHandler) SetAnswer(c *fiber.Ctx) error {
	var req dto.SetAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := h.validator.ValidateSetAnswerRequest(&req); len(errs) > 0 {
		return errs
	}

	snap, err := h.sessions.SetAnswer(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

// SubmitTest godoc
// @Summary Submit a complete attempt
// @Description Scores the attempt. Authenticated users get a stored result; guests get a pending result to claim after login.
// @Tags tests
// @Accept json
// @Produce json
// @Param request body dto.SubmitTestRequest true "Session to submit"
// @Success 200 {object} dto.SessionSnapshot
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /tests/submit [post]
func (h *SessionHandler) SubmitTest(c *fiber.Ctx) error {
	var req dto.SubmitTestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := h.validator.ValidateSessionID(req.SessionID); len(errs) > 0 {
		return errs
	}

	var (
		snap *dto.SessionSnapshot
		err  error
	)
	if userID := middleware.UserID(c); userID != "" {
		snap, err = h.sessions.SubmitTest(c.Context(), req.SessionID, userID)
	} else {
		snap, err = h.sessions.SubmitTestGuest(c.Context(), req.SessionID)
	}
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

// SubmitTestGuest godoc
// @Summary Submit a complete attempt as a guest
// @Description Scores the attempt and parks the result for a later login to claim, regardless of auth state
// @Tags tests
// @Accept json
// @Produce json
// @Param request body dto.SubmitTestRequest true "Session to submit"
// @Success 200 {object} dto.SessionSnapshot
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /tests/submit/guest [post]
func (h *SessionHandler) SubmitTestGuest(c *fiber.Ctx) error {
	var req dto.SubmitTestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := h.validator.ValidateSessionID(req.SessionID); len(errs) > 0 {
		return errs
	}

	snap, err := h.sessions.SubmitTestGuest(c.Context(), req.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

// ResetTest godoc
// @Summary Abandon an attempt
// @Description Clears the persisted record and returns the session to idle
// @Tags tests
// @Accept json
// @Produce json
// @Param request body dto.SubmitTestRequest true "Session to reset"
// @Success 204
// @Failure 400 {object} middleware.ErrorResponse
// @Router /tests/reset [post]
func (h *SessionHandler) ResetTest(c *fiber.Ctx) error {
	var req dto.SubmitTestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := h.validator.ValidateSessionID(req.SessionID); len(errs) > 0 {
		return errs
	}

	if err := h.sessions.ResetTest(c.Context(), req.SessionID); err != nil {
		logger.Get().Error("Failed to reset test", zap.Error(err), zap.String("sessionID", req.SessionID))
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
