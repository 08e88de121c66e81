package registration

import (
	"context"
	"sort"
	"sync"
	"time"

	memberstore "github.com/mmu-rhsf/fellowhub/internal/app/store/members"
	formstore "github.com/mmu-rhsf/fellowhub/internal/app/store/regforms"
	"github.com/mmu-rhsf/fellowhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memForms mirrors formstore.Store semantics in memory.
type memForms struct {
	mu    sync.Mutex
	forms map[string]models.RegistrationForm

	createErrs   []error // consumed one per Create call
	recordErr    error
	beforeRecord func(formID string)
}

func newMemForms() *memForms {
	return &memForms{forms: map[string]models.RegistrationForm{}}
}

func (m *memForms) put(f models.RegistrationForm) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.Submissions == nil {
		f.Submissions = []models.SubmissionReceipt{}
	}
	m.forms[f.FormID] = f
}

func (m *memForms) get(formID string) models.RegistrationForm {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forms[formID]
}

func (m *memForms) Create(_ context.Context, f models.RegistrationForm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := m.forms[f.FormID]; ok {
		return formstore.ErrDuplicateFormID
	}
	m.forms[f.FormID] = f
	return nil
}

func (m *memForms) GetByFormID(_ context.Context, formID string) (models.RegistrationForm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[formID]
	if !ok {
		return models.RegistrationForm{}, formstore.ErrNotFound
	}
	f.Submissions = append([]models.SubmissionReceipt(nil), f.Submissions...)
	return f, nil
}

func (m *memForms) ListByOwner(_ context.Context, owner string) ([]models.RegistrationForm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.RegistrationForm{}
	for _, f := range m.forms {
		if f.CreatedBy == owner {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memForms) Deactivate(_ context.Context, formID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[formID]
	if !ok || f.CreatedBy != owner {
		return formstore.ErrNotFound
	}
	f.IsActive = false
	m.forms[formID] = f
	return nil
}

func (m *memForms) Delete(_ context.Context, formID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[formID]
	if !ok || f.CreatedBy != owner {
		return formstore.ErrNotFound
	}
	delete(m.forms, formID)
	return nil
}

func (m *memForms) RecordSubmission(_ context.Context, formID string, r models.SubmissionReceipt, now time.Time) error {
	if m.beforeRecord != nil {
		m.beforeRecord(formID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	f, ok := m.forms[formID]
	if !ok || !f.IsActive || f.ExpiresAt.Before(now) || f.CurrentSubmissions >= f.MaxSubmissions {
		return formstore.ErrNotAccepting
	}
	f.CurrentSubmissions++
	f.Submissions = append(f.Submissions, r)
	m.forms[formID] = f
	return nil
}

// memMembers mirrors memberstore.Store semantics in memory.
type memMembers struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]models.Member
	byEmail map[string]primitive.ObjectID

	existsErr error
	// hideEmails makes EmailExists miss, simulating a concurrent insert
	// that lands between the pre-check and Create.
	hideEmails bool
}

func newMemMembers() *memMembers {
	return &memMembers{
		byID:    map[primitive.ObjectID]models.Member{},
		byEmail: map[string]primitive.ObjectID{},
	}
}

func (m *memMembers) Create(_ context.Context, mem models.Member) (models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[mem.Email]; ok {
		return models.Member{}, memberstore.ErrDuplicateEmail
	}
	mem.ID = primitive.NewObjectID()
	m.byID[mem.ID] = mem
	m.byEmail[mem.Email] = mem.ID
	return mem, nil
}

func (m *memMembers) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if m.hideEmails {
		return false, nil
	}
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *memMembers) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]models.Member{}
	for _, id := range ids {
		if mem, ok := m.byID[id]; ok {
			out[id] = mem
		}
	}
	return out, nil
}

func (m *memMembers) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mem, ok := m.byID[id]; ok {
		delete(m.byEmail, mem.Email)
		delete(m.byID, id)
	}
	return nil
}

func (m *memMembers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// directTx runs fn without a transaction, like txn.Runner on a standalone server.
type directTx struct{ calls int }

func (d *directTx) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	d.calls++
	return fn(ctx)
}
