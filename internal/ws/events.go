package ws

import (
	"context"
	"encoding/json"
	"time"

	"hireflow/internal/domain/application"
	"hireflow/internal/domain/conversation"

	"go.uber.org/zap"
)

type StatusEvent struct {
	Type          string `json:"type"`
	ApplicationID string `json:"application_id"`
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
}

type MessageEvent struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	Seq            int64  `json:"seq"`
	SenderType     string `json:"sender_type"`
	Content        string `json:"content"`
	SentAt         string `json:"sent_at"`
}

// Publisher turns lifecycle and conversation events into websocket pushes
// targeted at the users they concern.
type Publisher struct {
	hub    *Hub
	logger *zap.Logger
}

func NewPublisher(hub *Hub, logger *zap.Logger) *Publisher {
	return &Publisher{hub: hub, logger: logger}
}

func (p *Publisher) StatusChanged(_ context.Context, a application.Application) {
	if p == nil || p.hub == nil {
		return
	}

	evt := StatusEvent{
		Type:          "application_status",
		ApplicationID: a.ID.String(),
		JobID:         a.JobID.String(),
		Status:        string(a.Status),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	p.hub.SendToUser(a.UserID, b)
}

func (p *Publisher) MessageSent(c conversation.Conversation, m conversation.Message) {
	if p == nil || p.hub == nil {
		return
	}

	evt := MessageEvent{
		Type:           "message",
		ConversationID: c.ID.String(),
		MessageID:      m.ID.String(),
		Seq:            m.Seq,
		SenderType:     string(m.SenderType),
		Content:        m.Content,
		SentAt:         m.SentAt.UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}

	// Both sides of the thread get the push; the sender's own echo
	// doubles as a delivery acknowledgement.
	p.hub.SendToUser(c.UserID, b)
	p.hub.SendToUser(c.AdminID, b)
}
