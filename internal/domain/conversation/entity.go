package conversation

import (
	"time"

	"github.com/google/uuid"
)

type SenderType string

const (
	SenderApplicant SenderType = "applicant"
	SenderAdmin     SenderType = "admin"
	// SenderSystem marks lifecycle notifications injected by the server.
	// System messages count against the applicant's unread side.
	SenderSystem SenderType = "system"
)

type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Seq            int64
	SenderID       uuid.UUID
	SenderType     SenderType
	Content        string
	SentAt         time.Time
}

// Conversation is the single thread between one applicant and one admin,
// optionally pinned to an application and job for context.
type Conversation struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AdminID       uuid.UUID
	ApplicationID *uuid.UUID
	JobID         *uuid.UUID

	UserUnread  int
	AdminUnread int

	Messages []Message

	CreatedAt time.Time
	UpdatedAt time.Time
}
