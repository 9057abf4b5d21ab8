package model

import "time"

// Document is the persisted unit: one uploaded file plus its extracted text.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
//
// Invariants enforced by the upload workflow: Content is non-empty and free of
// the extraction failure sentinel at insert time, FileURL points at an object
// that was written before the row existed, and UserID never changes after
// creation.
type Document struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	FileURL   string    `json:"file_url"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Topic     string    `json:"topic"`
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
}
