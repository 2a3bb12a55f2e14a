package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/campuslearn-be/internal/models"
	"github.com/hongminglow/campuslearn-be/internal/storage"
	"github.com/hongminglow/campuslearn-be/internal/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, NewStore())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, models.User{Name: "T", Email: "t@x.com", Role: models.Teacher})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = s.CreateUser(ctx, models.User{Name: "T again", Email: "t@x.com"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	// Emails are case-sensitive as stored.
	_, err = s.CreateUser(ctx, models.User{Name: "Upper", Email: "T@x.com"})
	assert.NoError(t, err)

	found, err := s.FindUserByEmail(ctx, "t@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = s.FindUserByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNotesLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	older, err := s.CreateNote(ctx, models.Note{Title: "Old", Subject: "CS", UploadedBy: "t1"})
	require.NoError(t, err)
	newer, err := s.CreateNote(ctx, models.Note{Title: "New", Subject: "Math", UploadedBy: "t1"})
	require.NoError(t, err)
	_, err = s.CreateNote(ctx, models.Note{Title: "Other", Subject: "CS", UploadedBy: "t2"})
	require.NoError(t, err)

	mine, err := s.ListNotes(ctx, models.NoteFilter{UploadedBy: "t1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	cs, err := s.ListNotes(ctx, models.NoteFilter{Subject: "CS"})
	require.NoError(t, err)
	assert.Len(t, cs, 2)

	title := "Older"
	updated, err := s.UpdateNote(ctx, older.ID, models.NotePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Older", updated.Title)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	viewed, err := s.IncrementNoteViews(ctx, older.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, viewed.Views)

	require.NoError(t, s.DeleteNote(ctx, older.ID))
	assert.ErrorIs(t, s.DeleteNote(ctx, older.ID), storage.ErrNotFound)
	_, err = s.FindNoteByID(ctx, older.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
