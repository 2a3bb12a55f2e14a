package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/hongminglow/campuslearn-be/internal/models"
	"github.com/hongminglow/campuslearn-be/internal/storage"
	"github.com/hongminglow/campuslearn-be/internal/storage/postgres/migrations"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Store provides Postgres-backed persistence for users and notes.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close(context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

const userColumns = `id::text, name, email, password_hash, role, created_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, uuid.NewString(), user.Name, user.Email, user.PasswordHash, string(user.Role))
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, translate(err)
	}
	return created, nil
}

// FindUserByEmail fetches a user by exact email address.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindUserByID fetches a user by id.
func (s *Store) FindUserByID(ctx context.Context, id string) (models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.User{}, storage.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

const noteColumns = `id::text, title, subject, school, batch, file_url, uploaded_by::text, description, views, created_at, updated_at`

// CreateNote inserts a note owned by note.UploadedBy. An owner that is not a
// stored user yields storage.ErrNotFound.
func (s *Store) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	if _, err := uuid.Parse(note.UploadedBy); err != nil {
		return models.Note{}, storage.ErrNotFound
	}
	query := `
		INSERT INTO notes (id, title, subject, school, batch, file_url, uploaded_by, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + noteColumns
	row := s.pool.QueryRow(ctx, query,
		uuid.NewString(), note.Title, note.Subject, note.School, note.Batch, note.FileURL, note.UploadedBy, note.Description)
	created, err := scanNote(row)
	if err != nil {
		return models.Note{}, translate(err)
	}
	return created, nil
}

// FindNoteByID fetches a single note.
func (s *Store) FindNoteByID(ctx context.Context, id string) (models.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Note{}, storage.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)
	return scanNote(row)
}

// ListNotes returns notes matching filter, newest first.
func (s *Store) ListNotes(ctx context.Context, filter models.NoteFilter) ([]models.Note, error) {
	var (
		conds []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.UploadedBy != "" {
		if _, err := uuid.Parse(filter.UploadedBy); err != nil {
			return []models.Note{}, nil
		}
	}
	add("uploaded_by", filter.UploadedBy)
	add("subject", filter.Subject)
	add("school", filter.School)
	add("batch", filter.Batch)

	query := `SELECT ` + noteColumns + ` FROM notes`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// UpdateNote applies the whitelisted fields of patch.
func (s *Store) UpdateNote(ctx context.Context, id string, patch models.NotePatch) (models.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Note{}, storage.ErrNotFound
	}
	query := `
		UPDATE notes SET
			title = COALESCE($2, title),
			subject = COALESCE($3, subject),
			school = COALESCE($4, school),
			batch = COALESCE($5, batch),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + noteColumns
	row := s.pool.QueryRow(ctx, query, id, patch.Title, patch.Subject, patch.School, patch.Batch)
	return scanNote(row)
}

// IncrementNoteViews bumps the view counter atomically.
func (s *Store) IncrementNoteViews(ctx context.Context, id string) (models.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Note{}, storage.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `UPDATE notes SET views = views + 1 WHERE id = $1 RETURNING `+noteColumns, id)
	return scanNote(row)
}

// DeleteNote removes a note row.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return storage.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// translate maps constraint violations onto storage sentinels.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return storage.ErrAlreadyExists
	case foreignKeyViolation:
		return storage.ErrNotFound
	}
	return err
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user models.User
		role string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	user.Role = models.Role(role)
	return user, nil
}

func scanNote(row pgx.Row) (models.Note, error) {
	var note models.Note
	err := row.Scan(&note.ID, &note.Title, &note.Subject, &note.School, &note.Batch, &note.FileURL,
		&note.UploadedBy, &note.Description, &note.Views, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Note{}, storage.ErrNotFound
		}
		return models.Note{}, err
	}
	return note, nil
}
