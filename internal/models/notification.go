package models

import "time"

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotificationWelcome           NotificationType = "WELCOME"
	NotificationMessageFromHR     NotificationType = "MESSAGE_FROM_HR"
	NotificationMessageFromIntern NotificationType = "MESSAGE_FROM_INTERN"
	NotificationInternshipEnding  NotificationType = "INTERNSHIP_ENDING"
	NotificationSystem            NotificationType = "SYSTEM"
)

// Notification is an in-app notification addressed to one user.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	UserID    string           `db:"user_id" json:"user_id"`
	InternID  *string          `db:"intern_id" json:"intern_id,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// NotificationFilter captures paging for a recipient's notifications.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	Size       int
}
