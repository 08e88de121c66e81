package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/mmu-rhsf/fellowhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test documents directly, bypassing the stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMember inserts an active member.
func (f *Fixtures) CreateMember(ctx context.Context, name, email string) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Email:      email,
		Phone:      "555-0100",
		Department: "Testing",
		Status:     models.MemberStatusActive,
		JoinDate:   now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// FormOption adjusts a form before CreateForm inserts it.
type FormOption func(*models.RegistrationForm)

func FormExpiresAt(t time.Time) FormOption {
	return func(f *models.RegistrationForm) { f.ExpiresAt = t }
}

func FormCapacity(max, current int) FormOption {
	return func(f *models.RegistrationForm) {
		f.MaxSubmissions = max
		f.CurrentSubmissions = current
		f.Submissions = make([]models.SubmissionReceipt, current)
		for i := range f.Submissions {
			f.Submissions[i] = models.SubmissionReceipt{MemberID: primitive.NewObjectID(), SubmittedAt: f.CreatedAt}
		}
	}
}

func FormInactive() FormOption {
	return func(f *models.RegistrationForm) { f.IsActive = false }
}

// CreateForm inserts an open form owned by owner with a capacity of 10 and
// a 30 day expiry, then applies opts.
func (f *Fixtures) CreateForm(ctx context.Context, formID, owner string, opts ...FormOption) models.RegistrationForm {
	f.t.Helper()

	now := time.Now().UTC()
	form := models.RegistrationForm{
		ID:             primitive.NewObjectID(),
		FormID:         formID,
		Title:          "Test Form",
		Description:    "Test description",
		IsActive:       true,
		ExpiresAt:      now.Add(30 * 24 * time.Hour),
		MaxSubmissions: 10,
		Submissions:    []models.SubmissionReceipt{},
		CreatedBy:      owner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, o := range opts {
		o(&form)
	}
	if _, err := f.db.Collection("registration_forms").InsertOne(ctx, form); err != nil {
		f.t.Fatalf("failed to create test form: %v", err)
	}
	return form
}
