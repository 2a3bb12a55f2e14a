// Package memory is an in-process storage backend used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/campuslearn-be/internal/models"
	"github.com/hongminglow/campuslearn-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps users and notes in maps guarded by a single lock.
type Store struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string
	notes   map[string]models.Note
	now     func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
		notes:   make(map[string]models.Note),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Close is a no-op; the maps live as long as the Store.
func (s *Store) Close(context.Context) error { return nil }

// CreateUser stores a user under a fresh id, rejecting duplicate emails.
func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	user.ID = uuid.NewString()
	user.CreatedAt = s.now()
	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return user, nil
}

// FindUserByEmail looks a user up by exact email address.
func (s *Store) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

// FindUserByID looks a user up by id.
func (s *Store) FindUserByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// CreateNote stores a note under a fresh id with zero views.
func (s *Store) CreateNote(_ context.Context, note models.Note) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	note.ID = uuid.NewString()
	note.Views = 0
	note.CreatedAt = now
	note.UpdatedAt = now
	s.notes[note.ID] = note
	return note, nil
}

// FindNoteByID fetches a single note.
func (s *Store) FindNoteByID(_ context.Context, id string) (models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, ok := s.notes[id]
	if !ok {
		return models.Note{}, storage.ErrNotFound
	}
	return note, nil
}

// ListNotes returns notes matching filter, newest first.
func (s *Store) ListNotes(_ context.Context, filter models.NoteFilter) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Note, 0, len(s.notes))
	for _, note := range s.notes {
		if filter.Matches(note) {
			out = append(out, note)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateNote applies the set fields of patch.
func (s *Store) UpdateNote(_ context.Context, id string, patch models.NotePatch) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok {
		return models.Note{}, storage.ErrNotFound
	}
	patch.Apply(&note)
	note.UpdatedAt = s.now()
	s.notes[id] = note
	return note, nil
}

// IncrementNoteViews bumps the view counter and returns the updated note.
func (s *Store) IncrementNoteViews(_ context.Context, id string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok {
		return models.Note{}, storage.ErrNotFound
	}
	note.Views++
	s.notes[id] = note
	return note, nil
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}
