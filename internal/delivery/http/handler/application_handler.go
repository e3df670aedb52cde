package handler

import (
	"errors"
	"time"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/domain/application"
	"hireflow/internal/domain/user"
	"hireflow/internal/pkg/response"
	"hireflow/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ApplicationHandler struct {
	uc   usecase.ApplicationUsecase
	auth *middleware.AuthMiddleware
}

type applyRequest struct {
	JobID              uuid.UUID  `json:"job_id"`
	ResumeURL          string     `json:"resume_url"`
	CoverLetter        string     `json:"cover_letter"`
	ExpectedSalary     *int64     `json:"expected_salary"`
	AvailableStartDate *time.Time `json:"available_start_date"`
}

type statusChangeRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type noteRequest struct {
	Content string `json:"content"`
}

type interviewRequest struct {
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	Notes    string    `json:"notes"`
}

func NewApplicationHandler(uc usecase.ApplicationUsecase, auth *middleware.AuthMiddleware) *ApplicationHandler {
	return &ApplicationHandler{uc: uc, auth: auth}
}

func (h *ApplicationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/applications")
	grp.Post("/", h.Apply)
	grp.Get("/:id", h.Get)
	grp.Put("/:id/withdraw", h.Withdraw)

	admin := grp.Group("", h.auth.RequireAdmin())
	admin.Put("/:id/status", h.ChangeStatus)
	admin.Post("/:id/notes", h.AddNote)
	admin.Put("/:id/interview", h.ScheduleInterview)
}

func (h *ApplicationHandler) Apply(c fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req applyRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	a, err := h.uc.Apply(c.Context(), usecase.ApplyInput{
		UserID:             userID,
		JobID:              req.JobID,
		ResumeURL:          req.ResumeURL,
		CoverLetter:        req.CoverLetter,
		ExpectedSalary:     req.ExpectedSalary,
		AvailableStartDate: req.AvailableStartDate,
	})
	if err != nil {
		return mapApplicationError(err)
	}

	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewApplicationResponse(a))
}

func (h *ApplicationHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	a, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapApplicationError(err)
	}

	// Applicants only see their own applications.
	userID, _ := middleware.UserIDFromCtx(c)
	if middleware.RoleFromCtx(c) != string(user.RoleAdmin) && a.UserID != userID {
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, nil)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationResponse(a))
}

func (h *ApplicationHandler) ChangeStatus(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req statusChangeRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	actor, _ := c.Locals(middleware.CtxEmailKey).(string)
	if actor == "" {
		actor = application.SystemAuthor
	}

	res, err := h.uc.ChangeStatus(c.Context(), id, application.Status(req.Status), actor)
	if err != nil {
		return mapApplicationError(err)
	}

	if req.Note != "" {
		if updated, noteErr := h.uc.AddNote(c.Context(), id, actor, req.Note); noteErr == nil {
			res.Application = updated
		}
	}

	return response.SuccessWithWarning(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationResponse(res.Application), res.Warning)
}

func (h *ApplicationHandler) Withdraw(c fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	a, err := h.uc.Withdraw(c.Context(), id, userID)
	if err != nil {
		return mapApplicationError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationResponse(a))
}

func (h *ApplicationHandler) AddNote(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req noteRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	actor, _ := c.Locals(middleware.CtxEmailKey).(string)
	if actor == "" {
		actor = application.SystemAuthor
	}

	a, err := h.uc.AddNote(c.Context(), id, actor, req.Content)
	if err != nil {
		return mapApplicationError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationResponse(a))
}

func (h *ApplicationHandler) ScheduleInterview(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req interviewRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	a, err := h.uc.ScheduleInterview(c.Context(), id, req.Date, req.Location, req.Notes)
	if err != nil {
		return mapApplicationError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationResponse(a))
}

func mapApplicationError(err error) error {
	if err == nil {
		return nil
	}

	var conflict *usecase.StateConflictError
	if errors.As(err, &conflict) {
		// The loser of a race gets the authoritative state back.
		data := map[string]any{
			"reason":      conflict.Reason.Error(),
			"application": dto.NewApplicationResponse(conflict.Current),
		}
		return middleware.NewAppError(fiber.StatusConflict, "Conflict", data, err)
	}

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	case errors.Is(err, usecase.ErrDuplicateApplication):
		return middleware.NewAppError(fiber.StatusConflict, "Already applied to this job", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrInvalidTransition), errors.Is(err, usecase.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, "Conflict", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
