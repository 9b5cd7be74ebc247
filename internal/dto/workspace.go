package dto

import (
	"io"
	"time"
)

// CreateActivityRequest logs what an intern worked on today.
type CreateActivityRequest struct {
	Description string `json:"description" validate:"required,min=10,max=2000"`
}

// AttendanceRequest carries optional remarks for a check-in.
type AttendanceRequest struct {
	Remarks *string `json:"remarks" validate:"omitempty,max=500"`
}

// DocumentUpload is a document received from an intern. Content is read once.
type DocumentUpload struct {
	Type        string
	Comment     string
	FileName    string
	ContentType string
	Content     io.Reader
}

// DocumentLink is a time-limited download token for one document.
type DocumentLink struct {
	URL       string    `json:"url,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

