package models

import "time"

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
)

// Note is a PDF study material uploaded by a teacher.
type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subject     string    `json:"subject"`
	School      string    `json:"school"`
	Batch       string    `json:"batch"`
	FileURL     string    `json:"fileUrl"`
	UploadedBy  string    `json:"uploadedBy"`
	Description string    `json:"description,omitempty"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NotePatch holds the only fields an owner may change after upload.
// Nil means "leave as is".
type NotePatch struct {
	Title   *string
	Subject *string
	School  *string
	Batch   *string
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Subject == nil && p.School == nil && p.Batch == nil
}

// Apply copies set fields onto n.
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Subject != nil {
		n.Subject = *p.Subject
	}
	if p.School != nil {
		n.School = *p.School
	}
	if p.Batch != nil {
		n.Batch = *p.Batch
	}
}

// NoteFilter narrows note listings. Empty fields match everything.
type NoteFilter struct {
	UploadedBy string
	Subject    string
	School     string
	Batch      string
}

// Matches reports whether n satisfies every set field of f.
func (f NoteFilter) Matches(n Note) bool {
	if f.UploadedBy != "" && n.UploadedBy != f.UploadedBy {
		return false
	}
	if f.Subject != "" && n.Subject != f.Subject {
		return false
	}
	if f.School != "" && n.School != f.School {
		return false
	}
	if f.Batch != "" && n.Batch != f.Batch {
		return false
	}
	return true
}
