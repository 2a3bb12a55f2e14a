package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/hongminglow/campuslearn-be/internal/auth"
	"github.com/hongminglow/campuslearn-be/internal/blob"
	"github.com/hongminglow/campuslearn-be/internal/models"
	"github.com/hongminglow/campuslearn-be/internal/storage"
)

const pdfContentType = "application/pdf"

var pdfMagic = []byte("%PDF-")

// UploadInput carries the form fields of a note upload.
type UploadInput struct {
	Title       string
	Subject     string
	School      string
	Batch       string
	Description string
}

// File is an uploaded file as received from the client.
type File struct {
	Name string
	Size int64
	Body io.Reader
}

// NoteService enforces who may create, see, change and remove notes.
type NoteService struct {
	notes  storage.NoteStore
	blobs  blob.Store
	logger zerolog.Logger
}

// NewNoteService constructs the service.
func NewNoteService(notes storage.NoteStore, blobs blob.Store, logger zerolog.Logger) *NoteService {
	return &NoteService{notes: notes, blobs: blobs, logger: logger}
}

// canAuthor reports whether role may upload and manage notes.
func canAuthor(role models.Role) bool {
	switch role {
	case models.Teacher:
		return true
	case models.Student, models.Admin:
		return false
	}
	return false
}

// AuthorizeUpload reports whether the caller may upload at all. Handlers call
// it before reading a request body.
func (s *NoteService) AuthorizeUpload(id auth.Identity) error {
	if !canAuthor(id.Role) {
		return forbidden("only teachers can upload notes")
	}
	return nil
}

// Upload stores file and records a note owned by the caller.
func (s *NoteService) Upload(ctx context.Context, id auth.Identity, in UploadInput, file *File) (models.Note, error) {
	if err := s.AuthorizeUpload(id); err != nil {
		return models.Note{}, err
	}

	note := models.Note{
		Title:       strings.TrimSpace(in.Title),
		Subject:     strings.TrimSpace(in.Subject),
		School:      strings.TrimSpace(in.School),
		Batch:       strings.TrimSpace(in.Batch),
		Description: strings.TrimSpace(in.Description),
		UploadedBy:  id.UserID,
	}
	if note.Title == "" || note.Subject == "" || note.School == "" || note.Batch == "" {
		return models.Note{}, validationf("title, subject, school and batch are required")
	}
	if err := checkLengths(note.Title, note.Description); err != nil {
		return models.Note{}, err
	}
	if file == nil || file.Body == nil {
		return models.Note{}, validationf("a PDF file is required")
	}
	if !strings.EqualFold(filepath.Ext(file.Name), ".pdf") {
		return models.Note{}, validationf("only PDFs allowed")
	}
	body, err := sniffPDF(file.Body)
	if err != nil {
		return models.Note{}, err
	}

	key := blob.NewKey(file.Name)
	locator, err := s.blobs.Put(ctx, key, body, file.Size, pdfContentType)
	if err != nil {
		return models.Note{}, fmt.Errorf("%w: store file: %v", ErrStorage, err)
	}
	note.FileURL = locator

	created, err := s.notes.CreateNote(ctx, note)
	if err != nil {
		s.removeBlob(ctx, locator, "")
		return models.Note{}, fromStore("create note", err, "uploader not found")
	}

	s.logger.Info().Str("note_id", created.ID).Str("user_id", id.UserID).Msg("note uploaded")
	return created, nil
}

// ListMine returns the caller's own uploads.
func (s *NoteService) ListMine(ctx context.Context, id auth.Identity) ([]models.Note, error) {
	if !canAuthor(id.Role) {
		return nil, forbidden("only teachers can view their uploads")
	}
	notes, err := s.notes.ListNotes(ctx, models.NoteFilter{UploadedBy: id.UserID})
	if err != nil {
		return nil, fromStore("list notes", err, "note not found")
	}
	return notes, nil
}

// ListAll returns every note matching the optional subject/school/batch
// filter. Owner filtering is never taken from the caller.
func (s *NoteService) ListAll(ctx context.Context, _ auth.Identity, filter models.NoteFilter) ([]models.Note, error) {
	notes, err := s.notes.ListNotes(ctx, models.NoteFilter{
		Subject: strings.TrimSpace(filter.Subject),
		School:  strings.TrimSpace(filter.School),
		Batch:   strings.TrimSpace(filter.Batch),
	})
	if err != nil {
		return nil, fromStore("list notes", err, "note not found")
	}
	return notes, nil
}

// Get returns a single note and counts the view.
func (s *NoteService) Get(ctx context.Context, _ auth.Identity, noteID string) (models.Note, error) {
	note, err := s.notes.IncrementNoteViews(ctx, noteID)
	if err != nil {
		return models.Note{}, fromStore("get note", err, "note not found")
	}
	return note, nil
}

// Update changes the whitelisted fields of a note the caller owns.
func (s *NoteService) Update(ctx context.Context, id auth.Identity, noteID string, patch models.NotePatch) (models.Note, error) {
	if _, err := s.ownedNote(ctx, id, noteID); err != nil {
		return models.Note{}, err
	}

	cleaned, err := cleanPatch(patch)
	if err != nil {
		return models.Note{}, err
	}

	updated, err := s.notes.UpdateNote(ctx, noteID, cleaned)
	if err != nil {
		return models.Note{}, fromStore("update note", err, "note not found")
	}
	return updated, nil
}

// Delete removes a note the caller owns along with its file. A failure to
// remove the file is logged and does not fail the call.
func (s *NoteService) Delete(ctx context.Context, id auth.Identity, noteID string) error {
	note, err := s.ownedNote(ctx, id, noteID)
	if err != nil {
		return err
	}
	if err := s.notes.DeleteNote(ctx, noteID); err != nil {
		return fromStore("delete note", err, "note not found")
	}
	s.removeBlob(ctx, note.FileURL, noteID)
	s.logger.Info().Str("note_id", noteID).Str("user_id", id.UserID).Msg("note deleted")
	return nil
}

// ownedNote re-reads the note and checks it against the verified identity.
func (s *NoteService) ownedNote(ctx context.Context, id auth.Identity, noteID string) (models.Note, error) {
	if !canAuthor(id.Role) {
		return models.Note{}, forbidden("only teachers can modify notes")
	}
	note, err := s.notes.FindNoteByID(ctx, noteID)
	if err != nil {
		return models.Note{}, fromStore("find note", err, "note not found")
	}
	if note.UploadedBy != id.UserID {
		return models.Note{}, forbidden("you can only modify your own notes")
	}
	return note, nil
}

func (s *NoteService) removeBlob(ctx context.Context, locator, noteID string) {
	if locator == "" {
		return
	}
	if err := s.blobs.Delete(context.WithoutCancel(ctx), locator); err != nil {
		s.logger.Warn().Err(err).Str("note_id", noteID).Str("file_url", locator).Msg("orphaned note file")
	}
}

func cleanPatch(patch models.NotePatch) (models.NotePatch, error) {
	var out models.NotePatch
	fields := []struct {
		name string
		in   *string
		out  **string
	}{
		{"title", patch.Title, &out.Title},
		{"subject", patch.Subject, &out.Subject},
		{"school", patch.School, &out.School},
		{"batch", patch.Batch, &out.Batch},
	}
	for _, f := range fields {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if v == "" {
			return models.NotePatch{}, validationf("%s cannot be empty", f.name)
		}
		*f.out = &v
	}
	if out.Empty() {
		return models.NotePatch{}, validationf("nothing to update: allowed fields are title, subject, school and batch")
	}
	if out.Title != nil {
		if err := checkLengths(*out.Title, ""); err != nil {
			return models.NotePatch{}, err
		}
	}
	return out, nil
}

func checkLengths(title, description string) error {
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return validationf("title must be at most %d characters", models.MaxTitleLength)
	}
	if utf8.RuneCountInString(description) > models.MaxDescriptionLength {
		return validationf("description must be at most %d characters", models.MaxDescriptionLength)
	}
	return nil
}

// sniffPDF checks the file signature and returns a reader that still yields
// the full content.
func sniffPDF(r io.Reader) (io.Reader, error) {
	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if !bytes.Equal(head[:n], pdfMagic) {
		return nil, validationf("only PDFs allowed")
	}
	return io.MultiReader(bytes.NewReader(head[:n]), r), nil
}
