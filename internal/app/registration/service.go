// Package registration implements the public self-registration workflow
// and the owner-scoped administration of registration forms.
package registration

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	memberstore "github.com/mmu-rhsf/fellowhub/internal/app/store/members"
	formstore "github.com/mmu-rhsf/fellowhub/internal/app/store/regforms"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/htmlsanitize"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/normalize"
	"github.com/mmu-rhsf/fellowhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// FormRepo persists registration forms. *formstore.Store satisfies it.
type FormRepo interface {
	Create(ctx context.Context, f models.RegistrationForm) error
	GetByFormID(ctx context.Context, formID string) (models.RegistrationForm, error)
	ListByOwner(ctx context.Context, owner string) ([]models.RegistrationForm, error)
	Deactivate(ctx context.Context, formID, owner string) error
	Delete(ctx context.Context, formID, owner string) error
	RecordSubmission(ctx context.Context, formID string, r models.SubmissionReceipt, now time.Time) error
}

// MemberRepo persists members. *memberstore.Store satisfies it.
type MemberRepo interface {
	Create(ctx context.Context, m models.Member) (models.Member, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Member, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Transactor runs fn atomically when it can. *txn.Runner satisfies it.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Defaults applied to forms created without explicit values.
type Defaults struct {
	Title          string
	Description    string
	MaxSubmissions int
	ExpiryDays     int
}

// DefaultSettings mirrors the values the configuration layer falls back to.
func DefaultSettings() Defaults {
	return Defaults{
		Title:          "Fellowship Registration Form",
		Description:    "Welcome to the fellowship! Please fill out this form to join our community.",
		MaxSubmissions: 100,
		ExpiryDays:     30,
	}
}

// Config configures a Service.
type Config struct {
	Defaults
	// PublicBaseURL prefixes the shareable link, e.g. https://fellowship.example.org.
	PublicBaseURL string
}

const formIDAttempts = 3

// Upper bounds for the numbers an admin may set on a form.
const (
	MaxFormSubmissions = 100000
	MaxFormExpiryDays  = 3650
)

type Service struct {
	forms   FormRepo
	members MemberRepo
	tx      Transactor
	cfg     Config
	log     *zap.Logger

	now       func() time.Time
	newFormID func() string
}

func New(forms FormRepo, members MemberRepo, tx Transactor, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := DefaultSettings()
	if cfg.Title == "" {
		cfg.Title = d.Title
	}
	if cfg.Description == "" {
		cfg.Description = d.Description
	}
	if cfg.MaxSubmissions <= 0 {
		cfg.MaxSubmissions = d.MaxSubmissions
	}
	if cfg.ExpiryDays <= 0 {
		cfg.ExpiryDays = d.ExpiryDays
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &Service{
		forms:     forms,
		members:   members,
		tx:        tx,
		cfg:       cfg,
		log:       logger,
		now:       func() time.Time { return time.Now().UTC() },
		newFormID: newFormID,
	}
}

// newFormID returns 32 lowercase hex characters from a random UUID.
func newFormID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// FormURL is the public link for formID.
func (s *Service) FormURL(formID string) string {
	return s.cfg.PublicBaseURL + "/register/" + formID
}

func (s *Service) storage(op string, err error, fields ...zap.Field) *Error {
	s.log.Error(op+" failed", append(fields, zap.Error(err))...)
	return Storage(err)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Form administration                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// CreateInput holds the optional values for a new form. Zero or negative
// numbers and blank text fall back to the configured defaults. Numbers above
// MaxFormSubmissions or MaxFormExpiryDays are rejected.
type CreateInput struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	MaxSubmissions int    `json:"maxSubmissions"`
	ExpiresInDays  int    `json:"expiresInDays"`
}

// Create makes a new active form owned by owner.
func (s *Service) Create(ctx context.Context, in CreateInput, owner string) (FormView, error) {
	if in.MaxSubmissions > MaxFormSubmissions {
		return FormView{}, OutOfRange("maxSubmissions", MaxFormSubmissions)
	}
	if in.ExpiresInDays > MaxFormExpiryDays {
		return FormView{}, OutOfRange("expiresInDays", MaxFormExpiryDays)
	}

	title := htmlsanitize.Plain(in.Title)
	if title == "" {
		title = s.cfg.Title
	}
	desc := htmlsanitize.Plain(in.Description)
	if desc == "" {
		desc = s.cfg.Description
	}
	max := in.MaxSubmissions
	if max <= 0 {
		max = s.cfg.MaxSubmissions
	}
	days := in.ExpiresInDays
	if days <= 0 {
		days = s.cfg.ExpiryDays
	}

	now := s.now()
	f := models.RegistrationForm{
		ID:             primitive.NewObjectID(),
		Title:          title,
		Description:    desc,
		IsActive:       true,
		ExpiresAt:      now.AddDate(0, 0, days),
		MaxSubmissions: max,
		Submissions:    []models.SubmissionReceipt{},
		CreatedBy:      owner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var err error
	for i := 0; i < formIDAttempts; i++ {
		f.FormID = s.newFormID()
		if err = s.forms.Create(ctx, f); !errors.Is(err, formstore.ErrDuplicateFormID) {
			break
		}
		s.log.Warn("form id collision; regenerating", zap.String("form_id", f.FormID))
	}
	if err != nil {
		return FormView{}, s.storage("create registration form", err, zap.String("owner", owner))
	}

	s.log.Info("registration form created",
		zap.String("form_id", f.FormID),
		zap.String("owner", owner),
		zap.Int("max_submissions", f.MaxSubmissions),
		zap.Time("expires_at", f.ExpiresAt))
	return s.view(f, now, nil), nil
}

// ListForms returns owner's forms, newest first, with each receipt's member
// details filled in.
func (s *Service) ListForms(ctx context.Context, owner string) ([]FormView, error) {
	forms, err := s.forms.ListByOwner(ctx, owner)
	if err != nil {
		return nil, s.storage("list registration forms", err, zap.String("owner", owner))
	}

	var ids []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, f := range forms {
		for _, r := range f.Submissions {
			if !seen[r.MemberID] {
				seen[r.MemberID] = true
				ids = append(ids, r.MemberID)
			}
		}
	}
	members, err := s.members.GetByIDs(ctx, ids)
	if err != nil {
		return nil, s.storage("load submitted members", err, zap.String("owner", owner))
	}

	now := s.now()
	out := make([]FormView, 0, len(forms))
	for _, f := range forms {
		out = append(out, s.view(f, now, members))
	}
	return out, nil
}

// Deactivate stops owner's form from accepting submissions.
func (s *Service) Deactivate(ctx context.Context, formID, owner string) error {
	formID = normalize.FormID(formID)
	if err := s.forms.Deactivate(ctx, formID, owner); err != nil {
		if errors.Is(err, formstore.ErrNotFound) {
			return NotFound()
		}
		return s.storage("deactivate registration form", err, zap.String("form_id", formID))
	}
	s.log.Info("registration form deactivated", zap.String("form_id", formID), zap.String("owner", owner))
	return nil
}

// Delete removes owner's form. Members it created are kept.
func (s *Service) Delete(ctx context.Context, formID, owner string) error {
	formID = normalize.FormID(formID)
	if err := s.forms.Delete(ctx, formID, owner); err != nil {
		if errors.Is(err, formstore.ErrNotFound) {
			return NotFound()
		}
		return s.storage("delete registration form", err, zap.String("form_id", formID))
	}
	s.log.Info("registration form deleted", zap.String("form_id", formID), zap.String("owner", owner))
	return nil
}

// GetPublicFormSummary returns the fields a prospective member may see,
// only while the form accepts submissions.
func (s *Service) GetPublicFormSummary(ctx context.Context, formID string) (PublicSummary, error) {
	f, err := s.lookup(ctx, formID)
	if err != nil {
		return PublicSummary{}, err
	}
	if reason := f.Acceptance(s.now()).Reason(); reason != "" {
		return PublicSummary{}, NotAccepting(reason)
	}
	return PublicSummary{
		FormID:             f.FormID,
		Title:              f.Title,
		Description:        f.Description,
		CurrentSubmissions: f.CurrentSubmissions,
		MaxSubmissions:     f.MaxSubmissions,
	}, nil
}

func (s *Service) lookup(ctx context.Context, formID string) (models.RegistrationForm, error) {
	formID = normalize.FormID(formID)
	f, err := s.forms.GetByFormID(ctx, formID)
	if err != nil {
		if errors.Is(err, formstore.ErrNotFound) {
			return models.RegistrationForm{}, NotFound()
		}
		return models.RegistrationForm{}, s.storage("load registration form", err, zap.String("form_id", formID))
	}
	return f, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Public submission                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// SubmitInput is the public registration payload.
type SubmitInput struct {
	Name             string                  `json:"name"`
	Email            string                  `json:"email"`
	Phone            string                  `json:"phone"`
	Department       string                  `json:"department"`
	Address          AddressInput            `json:"address"`
	EmergencyContact models.EmergencyContact `json:"emergencyContact"`
	Notes            string                  `json:"notes"`
}

// AddressInput is the address as the registration page sends it.
type AddressInput struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Origin describes where a submission came from; kept on the receipt.
type Origin struct {
	RemoteAddr string
	UserAgent  string
}

// SubmitResult identifies the member created by a submission.
type SubmitResult struct {
	MemberID primitive.ObjectID `json:"memberId"`
	Name     string             `json:"name"`
	Email    string             `json:"email"`
}

func (in SubmitInput) clean() SubmitInput {
	p := htmlsanitize.Plain
	return SubmitInput{
		Name:       normalize.Name(p(in.Name)),
		Email:      normalize.Email(in.Email),
		Phone:      p(in.Phone),
		Department: p(in.Department),
		Address: AddressInput{
			Street:  p(in.Address.Street),
			City:    p(in.Address.City),
			State:   p(in.Address.State),
			ZipCode: p(in.Address.ZipCode),
		},
		EmergencyContact: models.EmergencyContact{
			Name:         p(in.EmergencyContact.Name),
			Phone:        p(in.EmergencyContact.Phone),
			Relationship: p(in.EmergencyContact.Relationship),
		},
		Notes: p(in.Notes),
	}
}

// missing returns the first empty required field, in reporting order.
func (in SubmitInput) missing() string {
	switch {
	case in.Name == "":
		return "name"
	case in.Email == "":
		return "email"
	case in.Phone == "":
		return "phone"
	case in.Department == "":
		return "department"
	}
	return ""
}

// Submit registers a new member through the public form formID.
//
// All checks run before any write. The member insert and the capacity
// update run in one transaction when the deployment supports it; the
// capacity update only succeeds while a slot is free, so the form can
// never exceed max_submissions. If the slot is lost to a concurrent
// submission the new member is removed and the caller gets NOT_ACCEPTING.
func (s *Service) Submit(ctx context.Context, formID string, in SubmitInput, origin Origin) (SubmitResult, error) {
	f, err := s.lookup(ctx, formID)
	if err != nil {
		return SubmitResult{}, err
	}

	now := s.now()
	if reason := f.Acceptance(now).Reason(); reason != "" {
		return SubmitResult{}, NotAccepting(reason)
	}

	in = in.clean()
	if field := in.missing(); field != "" {
		return SubmitResult{}, Validation(field)
	}

	exists, err := s.members.EmailExists(ctx, in.Email)
	if err != nil {
		return SubmitResult{}, s.storage("check member email", err, zap.String("form_id", f.FormID))
	}
	if exists {
		return SubmitResult{}, DuplicateEmail()
	}

	var created models.Member
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		m, err := s.members.Create(ctx, models.Member{
			Name:             in.Name,
			Email:            in.Email,
			Phone:            in.Phone,
			Department:       in.Department,
			Address:          models.Address(in.Address),
			EmergencyContact: in.EmergencyContact,
			Notes:            in.Notes,
			Status:           models.MemberStatusActive,
			JoinDate:         now,
		})
		if err != nil {
			return err
		}
		created = m

		receipt := models.SubmissionReceipt{
			MemberID:    m.ID,
			SubmittedAt: now,
			IPAddress:   origin.RemoteAddr,
			UserAgent:   origin.UserAgent,
		}
		err = s.forms.RecordSubmission(ctx, f.FormID, receipt, now)
		if errors.Is(err, formstore.ErrNotAccepting) {
			// Undo the member when the slot is gone. Inside a transaction
			// the abort discards it as well.
			if derr := s.members.Delete(ctx, m.ID); derr != nil {
				s.log.Error("failed to remove member after lost slot",
					zap.String("form_id", f.FormID),
					zap.String("member_id", m.ID.Hex()),
					zap.Error(derr))
			}
		}
		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, memberstore.ErrDuplicateEmail):
		return SubmitResult{}, DuplicateEmail()
	case errors.Is(err, formstore.ErrNotAccepting):
		return SubmitResult{}, s.lostSlot(ctx, f.FormID)
	default:
		return SubmitResult{}, s.storage("record registration", err, zap.String("form_id", f.FormID))
	}

	s.log.Info("registration submitted",
		zap.String("form_id", f.FormID),
		zap.String("member_id", created.ID.Hex()))
	return SubmitResult{MemberID: created.ID, Name: created.Name, Email: created.Email}, nil
}

// lostSlot re-reads the form after the capacity update matched nothing and
// reports why it no longer accepts submissions.
func (s *Service) lostSlot(ctx context.Context, formID string) error {
	f, err := s.lookup(ctx, formID)
	if err != nil {
		return err
	}
	reason := f.Acceptance(s.now()).Reason()
	if reason == "" {
		reason = models.ReasonFull
	}
	return NotAccepting(reason)
}
