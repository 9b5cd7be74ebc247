package models

import "time"

// MessageType is the direction of a stored message.
type MessageType string

const (
	MessageHRToIntern MessageType = "HR_TO_INTERN"
	MessageInternToHR MessageType = "INTERN_TO_HR"
)

// Message is the persisted copy of a message exchanged between HR and an intern.
// RecipientID is nil for HR messages addressed to an intern without a login account.
type Message struct {
	ID          string      `db:"id" json:"id"`
	Subject     string      `db:"subject" json:"subject"`
	Content     string      `db:"content" json:"content"`
	IsRead      bool        `db:"is_read" json:"is_read"`
	Type        MessageType `db:"type" json:"type"`
	InternID    string      `db:"intern_id" json:"intern_id"`
	InternName  string      `db:"intern_name" json:"intern_name"`
	SenderID    *string     `db:"sender_id" json:"sender_id,omitempty"`
	RecipientID *string     `db:"recipient_id" json:"recipient_id,omitempty"`
	SentAt      time.Time   `db:"sent_at" json:"sent_at"`
}

// MessageScope selects the messages visible to one user. Exactly one field is set:
// HRUserID for an HR user, InternID for an intern.
type MessageScope struct {
	HRUserID string
	InternID string
}
