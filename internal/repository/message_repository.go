package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
)

const messageColumns = `m.id, m.subject, m.content, m.is_read, m.type, m.intern_id,
        TRIM(i.first_name || ' ' || i.last_name) AS intern_name, m.sender_id, m.recipient_id, m.sent_at`

var errEmptyScope = errors.New("message scope requires an HR user or an intern")

// MessageRepository persists the message history between HR and interns.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message.
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	const query = `INSERT INTO messages (id, subject, content, is_read, type, intern_id, sender_id, recipient_id, sent_at)
        VALUES ($1, $2, $3, FALSE, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query, m.ID, m.Subject, m.Content, m.Type, m.InternID, m.SenderID, m.RecipientID, m.SentAt); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// List pages the messages visible in scope, newest first. HR users see what they sent and
// what interns sent them; interns see their whole conversation.
func (r *MessageRepository) List(ctx context.Context, scope models.MessageScope, page search.Pageable) ([]models.Message, int, error) {
	where, arg, err := scopeFilter(scope, "m.", false)
	if err != nil {
		return nil, 0, err
	}
	base := "FROM messages m JOIN interns i ON i.id = m.intern_id WHERE " + where

	query := fmt.Sprintf("SELECT %s %s ORDER BY m.sent_at DESC, m.id LIMIT %d OFFSET %d", messageColumns, base, page.Size, page.Offset())
	items := []models.Message{}
	if err := r.db.SelectContext(ctx, &items, query, arg); err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, arg); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}
	return items, total, nil
}

// MarkRead flags a message read when it was addressed to the scope's owner.
func (r *MessageRepository) MarkRead(ctx context.Context, id string, scope models.MessageScope) (bool, error) {
	where, arg, err := scopeFilter(scope, "", true)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, "UPDATE messages SET is_read = TRUE WHERE id = $2 AND "+where, arg, id)
	if err != nil {
		return false, fmt.Errorf("mark message read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark message read: %w", err)
	}
	return affected > 0, nil
}

// CountUnread counts unread messages addressed to the scope's owner.
func (r *MessageRepository) CountUnread(ctx context.Context, scope models.MessageScope) (int, error) {
	where, arg, err := scopeFilter(scope, "", true)
	if err != nil {
		return 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM messages WHERE is_read = FALSE AND "+where, arg); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return total, nil
}

// scopeFilter returns a condition bound to $1. received narrows it to messages the owner
// received rather than every message in the conversation.
func scopeFilter(scope models.MessageScope, alias string, received bool) (string, string, error) {
	switch {
	case scope.HRUserID != "":
		inbox := fmt.Sprintf("%[1]srecipient_id = $1 AND %[1]stype = '%[2]s'", alias, models.MessageInternToHR)
		if received {
			return inbox, scope.HRUserID, nil
		}
		return fmt.Sprintf("((%[1]ssender_id = $1 AND %[1]stype = '%[2]s') OR (%[3]s))", alias, models.MessageHRToIntern, inbox), scope.HRUserID, nil
	case scope.InternID != "":
		if received {
			return fmt.Sprintf("%[1]sintern_id = $1 AND %[1]stype = '%[2]s'", alias, models.MessageHRToIntern), scope.InternID, nil
		}
		return alias + "intern_id = $1", scope.InternID, nil
	default:
		return "", "", errEmptyScope
	}
}
