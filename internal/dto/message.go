package dto

import "time"

// MessageRequest is a message from HR to one intern, or from an intern to HR.
type MessageRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=5000"`
}

// BatchMessageRequest addresses a message to several interns.
type BatchMessageRequest struct {
	InternIDs []string `json:"intern_ids" validate:"required,min=1,dive,required"`
	Subject   string   `json:"subject" validate:"required,max=200"`
	Content   string   `json:"content" validate:"required,max=5000"`
}

// MessageOutcome reports delivery to a single recipient.
type MessageOutcome struct {
	InternID   string     `json:"intern_id"`
	InternName string     `json:"intern_name,omitempty"`
	Email      string     `json:"email,omitempty"`
	Status     string     `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
}

// MessageBatchResult aggregates per-recipient outcomes.
type MessageBatchResult struct {
	Total    int              `json:"total"`
	Sent     int              `json:"sent"`
	Failed   int              `json:"failed"`
	Outcomes []MessageOutcome `json:"outcomes"`
}

// NewMessageBatchResult counts outcomes.
func NewMessageBatchResult(outcomes []MessageOutcome) *MessageBatchResult {
	res := &MessageBatchResult{Total: len(outcomes), Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Status == OutcomeSent {
			res.Sent++
		} else {
			res.Failed++
		}
	}
	return res
}
