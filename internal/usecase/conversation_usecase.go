package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hireflow/internal/domain/application"
	"hireflow/internal/domain/conversation"
	"hireflow/internal/domain/user"
	"hireflow/internal/pkg/keylock"
	"hireflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessagePublisher pushes a freshly stored message to connected clients.
type MessagePublisher interface {
	MessageSent(c conversation.Conversation, m conversation.Message)
}

type ConversationUsecase interface {
	StartOrGet(ctx context.Context, userID, adminID uuid.UUID, applicationID, jobID *uuid.UUID) (conversation.Conversation, error)
	Get(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	SendMessage(ctx context.Context, conversationID, senderID uuid.UUID, senderType conversation.SenderType, content string) (conversation.Message, error)
	MarkRead(ctx context.Context, conversationID uuid.UUID, reader conversation.SenderType) error
}

type ConversationService struct {
	convs     repository.ConversationRepository
	users     repository.UserRepository
	publisher MessagePublisher
	logger    *zap.Logger

	locks *keylock.KeyedMutex
	now   func() time.Time
}

func NewConversationService(
	convs repository.ConversationRepository,
	users repository.UserRepository,
	publisher MessagePublisher,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		convs:     convs,
		users:     users,
		publisher: publisher,
		logger:    logger,
		locks:     keylock.New(),
		now:       time.Now,
	}
}

// StartOrGet is idempotent per (user, admin) pair. A second call with
// context attaches the application and job if the thread has none yet.
func (s *ConversationService) StartOrGet(ctx context.Context, userID, adminID uuid.UUID, applicationID, jobID *uuid.UUID) (conversation.Conversation, error) {
	applicant, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return conversation.Conversation{}, ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	admin, err := s.users.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return conversation.Conversation{}, ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	if applicant.Role != user.RoleApplicant || admin.Role != user.RoleAdmin {
		return conversation.Conversation{}, ErrNotFound
	}

	key := pairKey(userID, adminID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	existing, err := s.convs.FindByPair(ctx, userID, adminID)
	if err == nil {
		if applicationID != nil || jobID != nil {
			if err := s.convs.AttachContext(ctx, existing.ID, applicationID, jobID); err != nil {
				return conversation.Conversation{}, err
			}
			return s.convs.FindByPair(ctx, userID, adminID)
		}
		return existing, nil
	}
	if !errors.Is(err, repository.ErrConversationNotFound) {
		return conversation.Conversation{}, err
	}

	c := conversation.Conversation{
		ID:            uuid.New(),
		UserID:        userID,
		AdminID:       adminID,
		ApplicationID: applicationID,
		JobID:         jobID,
	}
	if err := s.convs.Create(ctx, c); err != nil {
		// The pair lock is per-process; another instance can win the
		// insert race against the unique pair constraint. Fall back to
		// the thread that made it in.
		if won, findErr := s.convs.FindByPair(ctx, userID, adminID); findErr == nil {
			return won, nil
		}
		return conversation.Conversation{}, err
	}
	return s.convs.FindByPair(ctx, userID, adminID)
}

func (s *ConversationService) Get(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	c, err := s.convs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return conversation.Conversation{}, ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	return c, nil
}

// SendMessage appends to the thread under the per-conversation lock.
// Timestamps are server-assigned and clamped to be non-decreasing, so the
// stored order never depends on client clocks.
func (s *ConversationService) SendMessage(ctx context.Context, conversationID, senderID uuid.UUID, senderType conversation.SenderType, content string) (conversation.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return conversation.Message{}, ErrInvalidInput
	}
	switch senderType {
	case conversation.SenderApplicant, conversation.SenderAdmin, conversation.SenderSystem:
	default:
		return conversation.Message{}, ErrInvalidInput
	}

	key := "conversation:" + conversationID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	c, err := s.Get(ctx, conversationID)
	if err != nil {
		return conversation.Message{}, err
	}

	ts := s.now().UTC()
	if last, ok, err := s.convs.LastMessageTime(ctx, conversationID); err == nil && ok && ts.Before(last) {
		ts = last
	}

	m := conversation.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     senderType,
		Content:        content,
		SentAt:         ts,
	}
	stored, err := s.convs.AppendMessage(ctx, m)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return conversation.Message{}, ErrNotFound
		}
		return conversation.Message{}, err
	}

	if s.publisher != nil {
		s.publisher.MessageSent(c, stored)
	}
	return stored, nil
}

func (s *ConversationService) MarkRead(ctx context.Context, conversationID uuid.UUID, reader conversation.SenderType) error {
	if reader != conversation.SenderApplicant && reader != conversation.SenderAdmin {
		return ErrInvalidInput
	}
	if err := s.convs.MarkRead(ctx, conversationID, reader); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// StatusChanged lets the conversation manager consume lifecycle events: the
// applicant gets a system message in their most recent thread. No thread,
// no message; the websocket event still reaches them.
func (s *ConversationService) StatusChanged(ctx context.Context, a application.Application) {
	c, err := s.convs.FindLatestByUser(ctx, a.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrConversationNotFound) && s.logger != nil {
			s.logger.Warn("status notification lookup failed", zap.String("user_id", a.UserID.String()), zap.Error(err))
		}
		return
	}

	content := fmt.Sprintf("Your application status is now %s", a.Status)
	if _, err := s.SendMessage(ctx, c.ID, c.AdminID, conversation.SenderSystem, content); err != nil && s.logger != nil {
		s.logger.Warn("status notification message failed", zap.String("conversation_id", c.ID.String()), zap.Error(err))
	}
}

func pairKey(userID, adminID uuid.UUID) string {
	return "pair:" + userID.String() + ":" + adminID.String()
}
