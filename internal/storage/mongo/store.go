// Package mongo stores users and notes in MongoDB collections.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hongminglow/campuslearn-be/internal/models"
	"github.com/hongminglow/campuslearn-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

const (
	usersCollection = "users"
	notesCollection = "notes"
	connectTimeout  = 10 * time.Second
)

// Store is a MongoDB-backed storage.Store.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	notes  *mongo.Collection
}

// NewStore connects to uri, pings the server and ensures indexes exist.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client: client,
		users:  db.Collection(usersCollection),
		notes:  db.Collection(notesCollection),
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	_, err = s.notes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "uploadedBy", Value: 1}}},
		{Keys: bson.D{{Key: "subject", Value: 1}}},
		{Keys: bson.D{{Key: "school", Value: 1}}},
		{Keys: bson.D{{Key: "batch", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create note indexes: %w", err)
	}
	return nil
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d userDoc) model() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		Role:         models.Role(d.Role),
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
	}
}

type noteDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Subject     string             `bson:"subject"`
	School      string             `bson:"school"`
	Batch       string             `bson:"batch"`
	FileURL     string             `bson:"fileUrl"`
	UploadedBy  primitive.ObjectID `bson:"uploadedBy"`
	Description string             `bson:"description,omitempty"`
	Views       int64              `bson:"views"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d noteDoc) model() models.Note {
	return models.Note{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Subject:     d.Subject,
		School:      d.School,
		Batch:       d.Batch,
		FileURL:     d.FileURL,
		UploadedBy:  d.UploadedBy.Hex(),
		Description: d.Description,
		Views:       d.Views,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// CreateUser inserts a user document; the unique email index reports duplicates.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Role:      string(user.Role),
		CreatedAt: now(),
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return doc.model(), nil
}

// FindUserByEmail fetches a user by exact email address.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

// FindUserByID fetches a user by hex object id.
func (s *Store) FindUserByID(ctx context.Context, id string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, storage.ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return models.User{}, translate(err)
	}
	return doc.model(), nil
}

// CreateNote inserts a note owned by note.UploadedBy.
func (s *Store) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	owner, err := primitive.ObjectIDFromHex(note.UploadedBy)
	if err != nil {
		return models.Note{}, fmt.Errorf("insert note: invalid owner id %q", note.UploadedBy)
	}
	ts := now()
	doc := noteDoc{
		ID:          primitive.NewObjectID(),
		Title:       note.Title,
		Subject:     note.Subject,
		School:      note.School,
		Batch:       note.Batch,
		FileURL:     note.FileURL,
		UploadedBy:  owner,
		Description: note.Description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := s.notes.InsertOne(ctx, doc); err != nil {
		return models.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return doc.model(), nil
}

// FindNoteByID fetches a single note.
func (s *Store) FindNoteByID(ctx context.Context, id string) (models.Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Note{}, storage.ErrNotFound
	}
	var doc noteDoc
	if err := s.notes.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Note{}, translate(err)
	}
	return doc.model(), nil
}

// ListNotes returns notes matching filter, newest first.
func (s *Store) ListNotes(ctx context.Context, filter models.NoteFilter) ([]models.Note, error) {
	query := bson.M{}
	if filter.UploadedBy != "" {
		owner, err := primitive.ObjectIDFromHex(filter.UploadedBy)
		if err != nil {
			return []models.Note{}, nil
		}
		query["uploadedBy"] = owner
	}
	if filter.Subject != "" {
		query["subject"] = filter.Subject
	}
	if filter.School != "" {
		query["school"] = filter.School
	}
	if filter.Batch != "" {
		query["batch"] = filter.Batch
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.notes.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []noteDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	notes := make([]models.Note, 0, len(docs))
	for _, doc := range docs {
		notes = append(notes, doc.model())
	}
	return notes, nil
}

// UpdateNote sets the whitelisted fields of patch and returns the new document.
func (s *Store) UpdateNote(ctx context.Context, id string, patch models.NotePatch) (models.Note, error) {
	set := bson.M{"updatedAt": now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Subject != nil {
		set["subject"] = *patch.Subject
	}
	if patch.School != nil {
		set["school"] = *patch.School
	}
	if patch.Batch != nil {
		set["batch"] = *patch.Batch
	}
	return s.findAndUpdate(ctx, id, bson.M{"$set": set})
}

// IncrementNoteViews bumps the view counter atomically with $inc.
func (s *Store) IncrementNoteViews(ctx context.Context, id string) (models.Note, error) {
	return s.findAndUpdate(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
}

func (s *Store) findAndUpdate(ctx context.Context, id string, update bson.M) (models.Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Note{}, storage.ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc noteDoc
	if err := s.notes.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return models.Note{}, translate(err)
	}
	return doc.model(), nil
}

// DeleteNote removes a note document.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.ErrNotFound
	}
	res, err := s.notes.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	return err
}

// Mongo stores milliseconds; truncating keeps returned values equal to what
// a later read decodes.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
