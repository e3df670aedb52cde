package dto

import (
	"time"

	"hireflow/internal/domain/conversation"

	"github.com/google/uuid"
)

type MessageResponse struct {
	ID         uuid.UUID `json:"id"`
	Seq        int64     `json:"seq"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderType string    `json:"sender_type"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
}

func NewMessageResponse(m conversation.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		Seq:        m.Seq,
		SenderID:   m.SenderID,
		SenderType: string(m.SenderType),
		Content:    m.Content,
		SentAt:     m.SentAt,
	}
}

type ConversationResponse struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	AdminID       uuid.UUID         `json:"admin_id"`
	ApplicationID *uuid.UUID        `json:"application_id,omitempty"`
	JobID         *uuid.UUID        `json:"job_id,omitempty"`
	UserUnread    int               `json:"user_unread"`
	AdminUnread   int               `json:"admin_unread"`
	Messages      []MessageResponse `json:"messages"`
	CreatedAt     time.Time         `json:"created_at"`
}

func NewConversationResponse(c conversation.Conversation) ConversationResponse {
	out := ConversationResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		AdminID:       c.AdminID,
		ApplicationID: c.ApplicationID,
		JobID:         c.JobID,
		UserUnread:    c.UserUnread,
		AdminUnread:   c.AdminUnread,
		Messages:      make([]MessageResponse, 0, len(c.Messages)),
		CreatedAt:     c.CreatedAt,
	}
	for _, m := range c.Messages {
		out.Messages = append(out.Messages, NewMessageResponse(m))
	}
	return out
}
