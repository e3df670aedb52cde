package handler

import (
	"errors"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/domain/conversation"
	"hireflow/internal/domain/user"
	"hireflow/internal/pkg/response"
	"hireflow/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type MessageHandler struct {
	uc usecase.ConversationUsecase
}

type startConversationRequest struct {
	PeerID        uuid.UUID  `json:"peer_id"`
	ApplicationID *uuid.UUID `json:"application_id"`
	JobID         *uuid.UUID `json:"job_id"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func NewMessageHandler(uc usecase.ConversationUsecase) *MessageHandler {
	return &MessageHandler{uc: uc}
}

func (h *MessageHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/messages")
	grp.Post("/start", h.Start)
	grp.Get("/:id", h.Get)
	grp.Post("/:id/send", h.Send)
	grp.Put("/:id/read", h.MarkRead)
}

// Start resolves the applicant/admin sides from the caller's role, so the
// same endpoint serves both directions of the pair.
func (h *MessageHandler) Start(c fiber.Ctx) error {
	callerID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req startConversationRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	userID, adminID := callerID, req.PeerID
	if middleware.RoleFromCtx(c) == string(user.RoleAdmin) {
		userID, adminID = req.PeerID, callerID
	}

	conv, err := h.uc.StartOrGet(c.Context(), userID, adminID, req.ApplicationID, req.JobID)
	if err != nil {
		return mapConversationError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewConversationResponse(conv))
}

func (h *MessageHandler) Get(c fiber.Ctx) error {
	conv, err := h.authorizedConversation(c)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewConversationResponse(conv))
}

func (h *MessageHandler) Send(c fiber.Ctx) error {
	conv, err := h.authorizedConversation(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	callerID, _ := middleware.UserIDFromCtx(c)
	senderType := conversation.SenderApplicant
	if middleware.RoleFromCtx(c) == string(user.RoleAdmin) {
		senderType = conversation.SenderAdmin
	}

	m, err := h.uc.SendMessage(c.Context(), conv.ID, callerID, senderType, req.Content)
	if err != nil {
		return mapConversationError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMessageResponse(m))
}

func (h *MessageHandler) MarkRead(c fiber.Ctx) error {
	conv, err := h.authorizedConversation(c)
	if err != nil {
		return err
	}

	reader := conversation.SenderApplicant
	if middleware.RoleFromCtx(c) == string(user.RoleAdmin) {
		reader = conversation.SenderAdmin
	}

	if err := h.uc.MarkRead(c.Context(), conv.ID, reader); err != nil {
		return mapConversationError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]any{"read": true})
}

// authorizedConversation loads the thread and hides it from anyone who is
// not one of its two sides. Outsiders get the same 404 as a missing id.
func (h *MessageHandler) authorizedConversation(c fiber.Ctx) (conversation.Conversation, error) {
	callerID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return conversation.Conversation{}, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return conversation.Conversation{}, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	conv, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return conversation.Conversation{}, mapConversationError(err)
	}
	if conv.UserID != callerID && conv.AdminID != callerID {
		return conversation.Conversation{}, middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, nil)
	}
	return conv, nil
}

func mapConversationError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
