package formstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/mmu-rhsf/fellowhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("registration form not found")
	// ErrDuplicateFormID means the generated public id collided with an existing form.
	ErrDuplicateFormID = errors.New("registration form id already exists")
	// ErrNotAccepting is returned by RecordSubmission when the form is no
	// longer active, has expired or has no slot left.
	ErrNotAccepting = errors.New("registration form is not accepting submissions")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("registration_forms")}
}

// Create inserts f as given. The caller sets FormID, defaults and timestamps.
func (s *Store) Create(ctx context.Context, f models.RegistrationForm) error {
	if f.Submissions == nil {
		f.Submissions = []models.SubmissionReceipt{}
	}
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateFormID
		}
		return fmt.Errorf("insert registration form: %w", err)
	}
	return nil
}

// GetByFormID loads a form by its public id.
func (s *Store) GetByFormID(ctx context.Context, formID string) (models.RegistrationForm, error) {
	var f models.RegistrationForm
	if err := s.c.FindOne(ctx, bson.M{"form_id": formID}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.RegistrationForm{}, ErrNotFound
		}
		return models.RegistrationForm{}, fmt.Errorf("get registration form: %w", err)
	}
	return f, nil
}

// ListByOwner returns owner's forms, newest first.
func (s *Store) ListByOwner(ctx context.Context, owner string) ([]models.RegistrationForm, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := s.c.Find(ctx, bson.M{"created_by": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list registration forms: %w", err)
	}
	defer cur.Close(ctx)

	forms := []models.RegistrationForm{}
	if err := cur.All(ctx, &forms); err != nil {
		return nil, fmt.Errorf("decode registration forms: %w", err)
	}
	return forms, nil
}

// Deactivate clears is_active on the form matching both formID and owner.
// A form owned by someone else is reported as ErrNotFound.
func (s *Store) Deactivate(ctx context.Context, formID, owner string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"form_id": formID, "created_by": owner},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("deactivate registration form: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the form matching both formID and owner. Members created
// through it are kept.
func (s *Store) Delete(ctx context.Context, formID, owner string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"form_id": formID, "created_by": owner})
	if err != nil {
		return fmt.Errorf("delete registration form: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordSubmission appends receipt and increments current_submissions in a
// single update. The filter re-checks that the form is active, not expired
// at now and below capacity, so concurrent callers can never push the
// counter past max_submissions.
func (s *Store) RecordSubmission(ctx context.Context, formID string, receipt models.SubmissionReceipt, now time.Time) error {
	filter := bson.M{
		"form_id":    formID,
		"is_active":  true,
		"expires_at": bson.M{"$gte": now},
		"$expr":      bson.M{"$lt": bson.A{"$current_submissions", "$max_submissions"}},
	}
	update := bson.M{
		"$inc":  bson.M{"current_submissions": 1},
		"$push": bson.M{"submissions": receipt},
		"$set":  bson.M{"updated_at": now},
	}
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotAccepting
	}
	return nil
}
