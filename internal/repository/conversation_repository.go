package repository

import (
	"context"
	"errors"
	"time"

	"hireflow/internal/database"
	"hireflow/internal/domain/conversation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepository interface {
	Create(ctx context.Context, c conversation.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	FindByPair(ctx context.Context, userID, adminID uuid.UUID) (conversation.Conversation, error)
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (conversation.Conversation, error)
	AttachContext(ctx context.Context, id uuid.UUID, applicationID, jobID *uuid.UUID) error

	// AppendMessage inserts the message and bumps the unread counter of the
	// side opposite the sender in one transaction.
	AppendMessage(ctx context.Context, m conversation.Message) (conversation.Message, error)
	LastMessageTime(ctx context.Context, conversationID uuid.UUID) (time.Time, bool, error)
	MarkRead(ctx context.Context, id uuid.UUID, reader conversation.SenderType) error
}

type PostgresConversationRepository struct {
	db database.DB
}

func NewPostgresConversationRepository(db database.DB) *PostgresConversationRepository {
	return &PostgresConversationRepository{db: db}
}

const conversationColumns = `id, user_id, admin_id, application_id, job_id, user_unread, admin_unread, created_at, updated_at`

func (r *PostgresConversationRepository) Create(ctx context.Context, c conversation.Conversation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO conversations (id, user_id, admin_id, application_id, job_id, user_unread, admin_unread, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $6)`,
		c.ID, c.UserID, c.AdminID, c.ApplicationID, c.JobID, time.Now().UTC(),
	)
	return err
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	c, err := r.findOne(ctx, `WHERE id = $1`, id)
	if err != nil {
		return conversation.Conversation{}, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, conversation_id, seq, sender_id, sender_type, content, sent_at
		 FROM messages WHERE conversation_id = $1 ORDER BY seq ASC`,
		id,
	)
	if err != nil {
		return conversation.Conversation{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var m conversation.Message
		var senderType string
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Seq, &m.SenderID, &senderType, &m.Content, &m.SentAt); err != nil {
			return conversation.Conversation{}, err
		}
		m.SenderType = conversation.SenderType(senderType)
		c.Messages = append(c.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return conversation.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) FindByPair(ctx context.Context, userID, adminID uuid.UUID) (conversation.Conversation, error) {
	return r.findOne(ctx, `WHERE user_id = $1 AND admin_id = $2`, userID, adminID)
}

func (r *PostgresConversationRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (conversation.Conversation, error) {
	return r.findOne(ctx, `WHERE user_id = $1 ORDER BY updated_at DESC LIMIT 1`, userID)
}

func (r *PostgresConversationRepository) findOne(ctx context.Context, clause string, args ...any) (conversation.Conversation, error) {
	var c conversation.Conversation
	row := r.db.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations `+clause, args...)
	err := row.Scan(&c.ID, &c.UserID, &c.AdminID, &c.ApplicationID, &c.JobID,
		&c.UserUnread, &c.AdminUnread, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return conversation.Conversation{}, ErrConversationNotFound
		}
		return conversation.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) AttachContext(ctx context.Context, id uuid.UUID, applicationID, jobID *uuid.UUID) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE conversations
		 SET application_id = COALESCE(application_id, $1),
		     job_id = COALESCE(job_id, $2),
		     updated_at = $3
		 WHERE id = $4`,
		applicationID, jobID, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) AppendMessage(ctx context.Context, m conversation.Message) (conversation.Message, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return conversation.Message{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx,
		`INSERT INTO messages (id, conversation_id, sender_id, sender_type, content, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING seq`,
		m.ID, m.ConversationID, m.SenderID, string(m.SenderType), m.Content, m.SentAt,
	)
	if err := row.Scan(&m.Seq); err != nil {
		return conversation.Message{}, err
	}

	counter := `user_unread`
	if m.SenderType == conversation.SenderApplicant {
		counter = `admin_unread`
	}
	affected, err := tx.Exec(ctx,
		`UPDATE conversations SET `+counter+` = `+counter+` + 1, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), m.ConversationID,
	)
	if err != nil {
		return conversation.Message{}, err
	}
	if affected == 0 {
		return conversation.Message{}, ErrConversationNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return conversation.Message{}, err
	}
	return m, nil
}

func (r *PostgresConversationRepository) LastMessageTime(ctx context.Context, conversationID uuid.UUID) (time.Time, bool, error) {
	var ts time.Time
	row := r.db.QueryRow(ctx,
		`SELECT sent_at FROM messages WHERE conversation_id = $1 ORDER BY seq DESC LIMIT 1`,
		conversationID,
	)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return ts, true, nil
}

func (r *PostgresConversationRepository) MarkRead(ctx context.Context, id uuid.UUID, reader conversation.SenderType) error {
	counter := `admin_unread`
	if reader == conversation.SenderApplicant {
		counter = `user_unread`
	}
	affected, err := r.db.Exec(ctx,
		`UPDATE conversations SET `+counter+` = 0, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrConversationNotFound
	}
	return nil
}
