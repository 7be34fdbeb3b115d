package handler

import (
	"errors"
	"time"

	"github.com/fadilmartias/studypath/internal/dto"
	"github.com/fadilmartias/studypath/internal/middleware"
	"github.com/fadilmartias/studypath/internal/model"
	"github.com/fadilmartias/studypath/internal/repository"
	"github.com/fadilmartias/studypath/internal/service"
	"github.com/fadilmartias/studypath/internal/usecase"
	"github.com/fadilmartias/studypath/internal/util"
	"github.com/fadilmartias/studypath/internal/view"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessions      *repository.SessionRepository
	catalog       *usecase.CatalogUsecase
	chatRateLimit int
	log           *zap.Logger
}

func NewSessionHandler(sessions *repository.SessionRepository, catalog *usecase.CatalogUsecase, chatRateLimit int, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:      sessions,
		catalog:       catalog,
		chatRateLimit: chatRateLimit,
		log:           log.Named("SessionHandler"),
	}
}

func (h *SessionHandler) RegisterRoutes(app *fiber.App) {
	sessions := app.Group("/sessions")
	sessions.Post("/", h.Create)
	sessions.Get("/:id", h.Snapshot)
	sessions.Delete("/:id", h.Delete)
	sessions.Post("/:id/start", h.Start)
	sessions.Post("/:id/profile", h.SubmitProfile)
	sessions.Post("/:id/edit", h.Edit)
	sessions.Post("/:id/cancel", h.Cancel)
	sessions.Post("/:id/clear", h.Clear)
	sessions.Post("/:id/chat", middleware.SessionRateLimiter(h.chatRateLimit, time.Minute), h.SendChat)
	sessions.Post("/:id/refresh/:resource", h.Refresh)

	catalog := app.Group("/catalog")
	catalog.Get("/universities", h.Universities)
	catalog.Get("/scholarships", h.Scholarships)
}

func (h *SessionHandler) Create(c *fiber.Ctx) error {
	session := h.sessions.CreateSession()
	h.log.Info("Session created", zap.String("session_id", session.ID()))
	return h.respondSnapshot(c, session, fiber.StatusCreated, "Session created")
}

func (h *SessionHandler) Snapshot(c *fiber.Ctx) error {
	session, err := h.sessions.FindSessionByID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondSnapshot(c, session, fiber.StatusOK, "Success get session")
}

func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	if err := h.sessions.DeleteSession(c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Session deleted",
	})
}

func (h *SessionHandler) Start(c *fiber.Ctx) error {
	session, err := h.sessions.FindSessionByID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := session.Start(); err != nil {
		return h.fail(c, err)
	}
	return h.respondSnapshot(c, session, fiber.StatusOK, "Setup started")
}

func (h *SessionHandler) SubmitProfile(c *fiber.Ctx) error {
	session, err := h.sessions.FindSessionByID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	var draft dto.ProfileDraft
	if err := c.BodyParser(&draft); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid profile body",
		}, err)
	}
	if _, err := session.Submit(c.UserContext(), draft); err != nil {
		return h.fail(c, err)
	}
	return h.respondSnapshot(c, session, fiber.StatusOK, "Profile saved")
}

func (h *SessionHandler) Edit(c *fiber.Ctx) error {
	session, err := h.sessions.FindSessionByID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if _, err := session.Edit(); err != nil {
		return h.fail(c, err)
	}
	return h.respondSnapshot(c, session, fiber.StatusOK, "Editing profile")
}

func (h *SessionHandler) Cancel(c *fiber.Ctx) error {
	session, err := h.sessions.FindSessionByID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := session.Cancel(); err != nil {
		return h.fail(c, err)
	}
	return h.respondSnapshot(c, session, fiber.StatusOK, "Edit cancelled")
}

func (h *SessionHandler) Clear(c *fiber.Ctx) error {
	session, err := h.sessions.FindSessionByID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := session.ClearProfile(); err != nil {
		return h.fail(c, err)
	}
	return h.respondSnapshot(c, session, fiber.StatusOK, "Profile cleared")
}

func (h *SessionHandler) SendChat(c *fiber.Ctx) error {
	session, err := h.sessions.FindSessionByID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	var req dto.ChatRequestDTO
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid chat body",
		}, err)
	}
	entry, err := session.SendChat(c.UserContext(), req.Message)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Message sent",
		Data:    entry,
	})
}

func (h *SessionHandler) Refresh(c *fiber.Ctx) error {
	session, err := h.sessions.FindSessionByID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := session.Refresh(view.Resource(c.Params("resource"))); err != nil {
		return h.fail(c, err)
	}
	return h.respondSnapshot(c, session, fiber.StatusAccepted, "Refresh started")
}

func (h *SessionHandler) Universities(c *fiber.Ctx) error {
	filter := model.UniversityFilter{Country: c.Query("country"), Program: c.Query("program")}
	universities, err := h.catalog.Universities(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get universities",
		Data:    universities,
		Meta:    fiber.Map{"total": len(universities)},
	})
}

func (h *SessionHandler) Scholarships(c *fiber.Ctx) error {
	filter := model.ScholarshipFilter{Country: c.Query("country"), Field: c.Query("field")}
	scholarships, err := h.catalog.Scholarships(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get scholarships",
		Data:    scholarships,
		Meta:    fiber.Map{"total": len(scholarships)},
	})
}

func (h *SessionHandler) respondSnapshot(c *fiber.Ctx, session *view.Controller, code int, message string) error {
	snap, err := session.Snapshot()
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    code,
		Message: message,
		Data:    snap,
	})
}

// fail maps domain errors onto the error envelope.
func (h *SessionHandler) fail(c *fiber.Ctx, err error) error {
	var formErr *util.FormError
	var apiErr *service.APIError
	switch {
	case errors.As(err, &formErr):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: formErr.Message,
			Details: formErr.Errors,
		}, err)
	case errors.Is(err, repository.ErrSessionNotFound):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "session not found",
		}, nil)
	case errors.Is(err, usecase.ErrEmptyMessage), errors.Is(err, view.ErrUnknownResource):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: err.Error(),
		}, nil)
	case errors.Is(err, view.ErrInvalidTransition),
		errors.Is(err, view.ErrNotOnDashboard),
		errors.Is(err, view.ErrNoProfile),
		errors.Is(err, view.ErrStaleResult):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusConflict,
			Message: err.Error(),
		}, nil)
	case errors.As(err, &apiErr):
		h.log.Warn("Advisor api error", zap.Int("status_code", apiErr.StatusCode), zap.String("detail", apiErr.Detail))
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadGateway,
			Message: apiErr.Detail,
		}, err)
	default:
		h.log.Error("Request failed", zap.Error(err))
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadGateway,
			Message: "advisor service unavailable",
		}, err)
	}
}
