package memberstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/normalize"
	"github.com/mmu-rhsf/fellowhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateEmail is returned when a member with the same email already exists.
	ErrDuplicateEmail = errors.New("a member with this email already exists")
	ErrNotFound       = errors.New("member not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

// Create inserts m with a new ID, the folded search name and timestamps.
// Status defaults to Active and JoinDate to now.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	now := time.Now().UTC()

	m.ID = primitive.NewObjectID()
	m.Name = normalize.Name(m.Name)
	m.NameCI = text.Fold(m.Name)
	m.Email = normalize.Email(m.Email)
	if m.Status == "" {
		m.Status = models.MemberStatusActive
	}
	if m.JoinDate.IsZero() {
		m.JoinDate = now
	}
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Member{}, ErrDuplicateEmail
		}
		return models.Member{}, fmt.Errorf("insert member: %w", err)
	}
	return m, nil
}

// EmailExists reports whether a member has exactly this email (after trimming).
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx,
		bson.M{"email": normalize.Email(email)},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, fmt.Errorf("lookup member email: %w", err)
	}
}

// GetByID loads one member.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Member{}, ErrNotFound
		}
		return models.Member{}, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// GetByIDs loads the members with the given IDs, keyed by ID. Missing IDs
// are simply absent from the result.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Member, error) {
	out := make(map[primitive.ObjectID]models.Member, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var m models.Member
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode member: %w", err)
		}
		out[m.ID] = m
	}
	return out, cur.Err()
}

// Delete removes a member. Deleting a missing member is not an error.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}
