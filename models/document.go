package models

import (
	"time"

	"github.com/google/uuid"
)

// Document represents an uploaded raw document (already decoded to plain text)
type Document struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	CaseID      *int64    `json:"case_id,omitempty"` // set when the parsed case was indexed
	CreatedAt   time.Time `json:"created_at"`
}
