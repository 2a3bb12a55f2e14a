// Package storagetest holds behaviour checks shared by every storage.Store
// implementation.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/campuslearn-be/internal/models"
	"github.com/hongminglow/campuslearn-be/internal/storage"
)

// Run exercises s against the storage contract. Emails and titles are made
// unique per run so live databases can be reused.
func Run(t *testing.T, s storage.Store) {
	t.Helper()
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	t.Run("users", func(t *testing.T) { testUsers(t, s, suffix) })
	t.Run("notes", func(t *testing.T) { testNotes(t, s, suffix) })
}

func testUsers(t *testing.T, s storage.Store, suffix string) {
	ctx := context.Background()
	email := "teacher_" + suffix + "@example.com"

	created, err := s.CreateUser(ctx, models.User{
		Name:         "Teacher",
		Email:        email,
		Role:         models.Teacher,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, models.Teacher, created.Role)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = s.CreateUser(ctx, models.User{Name: "Dup", Email: email, Role: models.Student, PasswordHash: "x"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	byEmail, err := s.FindUserByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := s.FindUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, email, byID.Email)

	_, err = s.FindUserByEmail(ctx, "nobody_"+suffix+"@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.FindUserByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testNotes(t *testing.T, s storage.Store, suffix string) {
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, models.User{
		Name: "Owner", Email: "owner_" + suffix + "@example.com", Role: models.Teacher, PasswordHash: "h",
	})
	require.NoError(t, err)
	other, err := s.CreateUser(ctx, models.User{
		Name: "Other", Email: "other_" + suffix + "@example.com", Role: models.Teacher, PasswordHash: "h",
	})
	require.NoError(t, err)

	subject := "Subject-" + suffix
	first, err := s.CreateNote(ctx, models.Note{
		Title: "Algo", Subject: subject, School: "SoE", Batch: "2024",
		FileURL: "/uploads/a.pdf", UploadedBy: owner.ID, Description: "intro",
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	assert.Equal(t, owner.ID, first.UploadedBy)
	assert.Zero(t, first.Views)

	time.Sleep(5 * time.Millisecond)
	second, err := s.CreateNote(ctx, models.Note{
		Title: "Graphs", Subject: subject, School: "SoE", Batch: "2025",
		FileURL: "/uploads/b.pdf", UploadedBy: other.ID,
	})
	require.NoError(t, err)

	mine, err := s.ListNotes(ctx, models.NoteFilter{UploadedBy: owner.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	bySubject, err := s.ListNotes(ctx, models.NoteFilter{Subject: subject})
	require.NoError(t, err)
	require.Len(t, bySubject, 2)
	assert.Equal(t, second.ID, bySubject[0].ID, "newest first")

	byBatch, err := s.ListNotes(ctx, models.NoteFilter{Subject: subject, Batch: "2025"})
	require.NoError(t, err)
	require.Len(t, byBatch, 1)
	assert.Equal(t, second.ID, byBatch[0].ID)

	title := "Algorithms"
	updated, err := s.UpdateNote(ctx, first.ID, models.NotePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", updated.Title)
	assert.Equal(t, subject, updated.Subject)
	assert.Equal(t, owner.ID, updated.UploadedBy)
	assert.Equal(t, "intro", updated.Description)

	viewed, err := s.IncrementNoteViews(ctx, first.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, viewed.Views)

	require.NoError(t, s.DeleteNote(ctx, first.ID))
	assert.ErrorIs(t, s.DeleteNote(ctx, first.ID), storage.ErrNotFound)
	_, err = s.FindNoteByID(ctx, first.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.UpdateNote(ctx, first.ID, models.NotePatch{Title: &title})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeleteNote(ctx, second.ID))
}
