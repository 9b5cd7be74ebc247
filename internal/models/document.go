package models

import "time"

// DocumentType classifies an uploaded document.
type DocumentType string

const (
	DocumentReport      DocumentType = "REPORT"
	DocumentCertificate DocumentType = "CERTIFICATE"
	DocumentCV          DocumentType = "CV"
	DocumentOther       DocumentType = "OTHER"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentReport, DocumentCertificate, DocumentCV, DocumentOther:
		return true
	}
	return false
}

// Document is a file an intern uploaded. FilePath is relative to the storage root.
type Document struct {
	ID               string       `db:"id" json:"id"`
	InternID         string       `db:"intern_id" json:"intern_id"`
	InternName       string       `db:"intern_name" json:"intern_name"`
	FileName         string       `db:"file_name" json:"file_name"`
	OriginalFileName string       `db:"original_file_name" json:"original_file_name"`
	MimeType         string       `db:"mime_type" json:"mime_type"`
	FileSize         int64        `db:"file_size" json:"file_size"`
	FilePath         string       `db:"file_path" json:"-"`
	Type             DocumentType `db:"type" json:"type"`
	Comment          *string      `db:"comment" json:"comment,omitempty"`
	UploadedAt       time.Time    `db:"uploaded_at" json:"uploaded_at"`
}
