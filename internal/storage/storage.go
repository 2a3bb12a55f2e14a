package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/campuslearn-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures user persistence operations needed by the auth service.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, id string) (models.User, error)
}

// NoteStore captures note persistence operations needed by the note service.
// List returns notes newest first.
type NoteStore interface {
	CreateNote(ctx context.Context, note models.Note) (models.Note, error)
	FindNoteByID(ctx context.Context, id string) (models.Note, error)
	ListNotes(ctx context.Context, filter models.NoteFilter) ([]models.Note, error)
	UpdateNote(ctx context.Context, id string, patch models.NotePatch) (models.Note, error)
	IncrementNoteViews(ctx context.Context, id string) (models.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// Store is a full backend: users, notes and the connection behind them.
type Store interface {
	UserStore
	NoteStore
	Close(ctx context.Context) error
}
