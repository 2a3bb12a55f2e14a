package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/hongminglow/campuslearn-be/internal/auth"
	"github.com/hongminglow/campuslearn-be/internal/http/respond"
	"github.com/hongminglow/campuslearn-be/internal/models"
	"github.com/hongminglow/campuslearn-be/internal/models/dto"
	"github.com/hongminglow/campuslearn-be/internal/service"
)

const (
	// multipart parts above this size spill to temp files.
	formMemoryBytes = 8 << 20

	// An upload of the maximum size may arrive this slowly (bytes per
	// second) and still finish before its deadline.
	minUploadRate = 64 << 10
	uploadGrace   = 30 * time.Second
)

// NoteHandler serves the /notes routes. Every route requires a verified caller.
type NoteHandler struct {
	notes          *service.NoteService
	maxUploadBytes int64
}

// NewNoteHandler constructs the handler. maxUploadBytes bounds the whole
// multipart request body.
func NewNoteHandler(notes *service.NoteService, maxUploadBytes int64) *NoteHandler {
	return &NoteHandler{notes: notes, maxUploadBytes: maxUploadBytes}
}

// Register attaches note routes to r, which must already be authenticated.
func (h *NoteHandler) Register(r *mux.Router) {
	r.HandleFunc("/upload", h.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/my-notes", h.handleMine).Methods(http.MethodGet)
	r.HandleFunc("/all-notes", h.handleAll).Methods(http.MethodGet)
	r.HandleFunc("", h.handleAll).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/{id}", h.handleDelete).Methods(http.MethodDelete)
}

func (h *NoteHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if err := h.notes.AuthorizeUpload(id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.extendDeadlines(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(formMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		respond.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := service.UploadInput{
		Title:       r.FormValue("title"),
		Subject:     r.FormValue("subject"),
		School:      r.FormValue("school"),
		Batch:       r.FormValue("batch"),
		Description: r.FormValue("description"),
	}

	var file *service.File
	f, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer f.Close()
		file = &service.File{Name: header.Filename, Size: header.Size, Body: f}
	case errors.Is(err, http.ErrMissingFile):
	default:
		respond.Error(w, http.StatusBadRequest, "invalid file field")
		return
	}

	note, err := h.notes.Upload(r.Context(), id, in, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "note uploaded successfully", note)
}

// extendDeadlines replaces the server-wide read and write timeouts for this
// request with a budget scaled to the upload limit.
func (h *NoteHandler) extendDeadlines(w http.ResponseWriter, r *http.Request) {
	deadline := time.Now().Add(uploadBudget(h.maxUploadBytes))
	rc := http.NewResponseController(w)
	for _, set := range []func(time.Time) error{rc.SetReadDeadline, rc.SetWriteDeadline} {
		if err := set(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("extend upload deadline")
		}
	}
}

func uploadBudget(maxBytes int64) time.Duration {
	return uploadGrace + time.Duration(maxBytes/minUploadRate)*time.Second
}

func (h *NoteHandler) handleMine(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	notes, err := h.notes.ListMine(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", nonNil(notes))
}

func (h *NoteHandler) handleAll(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	notes, err := h.notes.ListAll(r.Context(), id, models.NoteFilter{
		Subject: q.Get("subject"),
		School:  q.Get("school"),
		Batch:   q.Get("batch"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", nonNil(notes))
}

func (h *NoteHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	note, err := h.notes.Get(r.Context(), id, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", note)
}

func (h *NoteHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req dto.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	note, err := h.notes.Update(r.Context(), id, mux.Vars(r)["id"], models.NotePatch{
		Title:   req.Title,
		Subject: req.Subject,
		School:  req.School,
		Batch:   req.Batch,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "note updated successfully", note)
}

func (h *NoteHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if err := h.notes.Delete(r.Context(), id, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "note deleted successfully", nil)
}

// identity returns the caller attached by the auth middleware. A route
// mounted without it answers 401 rather than serving anonymously.
func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
	}
	return id, ok
}

func nonNil(notes []models.Note) []models.Note {
	if notes == nil {
		return []models.Note{}
	}
	return notes
}
