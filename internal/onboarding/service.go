package onboarding

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thelogbook/logbook/internal/foundation/errors"
	"github.com/thelogbook/logbook/internal/members"
	"github.com/thelogbook/logbook/internal/modules"
	"github.com/thelogbook/logbook/internal/observability"
)

// MinNameLength applies to both the organization and the admin name.
const MinNameLength = 2

var orgTypes = map[string]bool{"fire": true, "ems": true, "combined": true}

// Store persists wizard sessions and the organizations they produce.
type Store interface {
	CreateOrganization(ctx context.Context, org *Organization) error
	GetOrganization(ctx context.Context, id string) (*Organization, error)
	SaveOnboarding(ctx context.Context, s *Session) error
	GetOnboarding(ctx context.Context, id string) (*Session, error)
	SetOrgModule(ctx context.Context, orgID, module string, enabled bool) error
}

// ReadyFunc reports whether backing services are ready. Completion is
// gated on it; the health poller provides the real implementation.
type ReadyFunc func(ctx context.Context) bool

// Service runs the wizard.
type Service struct {
	store  Store
	roster *members.Service
	ready  ReadyFunc
}

// NewService creates the wizard service. ready may be nil, in which
// case completion is never gated.
func NewService(store Store, roster *members.Service, ready ReadyFunc) *Service {
	return &Service{store: store, roster: roster, ready: ready}
}

// Start opens a fresh wizard session at the identity step.
func (s *Service) Start(ctx context.Context) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		Step:      StepIdentity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveOnboarding(ctx, sess); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "start onboarding").Build()
	}
	return sess, nil
}

// Get fetches a wizard session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.GetOnboarding(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("onboarding session not found").WithContext("session_id", id).Build()
	}
	return sess, nil
}

// at loads the session and enforces that it sits at the expected step.
func (s *Service) at(ctx context.Context, id string, want Step) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step != want {
		return nil, errors.ConflictError("onboarding step out of order").
			WithContext("at", string(sess.Step)).
			WithContext("expected", string(want)).
			Build()
	}
	return sess, nil
}

func (s *Service) advance(ctx context.Context, sess *Session) (*Session, error) {
	sess.Step = sess.Step.next()
	sess.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveOnboarding(ctx, sess); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "save onboarding").Build()
	}
	return sess, nil
}

// SubmitIdentity records the department's name and type.
func (s *Service) SubmitIdentity(ctx context.Context, id, orgName, orgType string) (*Session, error) {
	sess, err := s.at(ctx, id, StepIdentity)
	if err != nil {
		return nil, err
	}
	orgName = strings.TrimSpace(orgName)
	if len([]rune(orgName)) < MinNameLength {
		return nil, errors.ValidationError("organization name must be at least 2 characters").Build()
	}
	if !orgTypes[orgType] {
		return nil, errors.ValidationError("organization type must be fire, ems or combined").
			WithContext("type", orgType).
			Build()
	}
	sess.OrgName = orgName
	sess.OrgType = orgType
	return s.advance(ctx, sess)
}

// SubmitModules records which functional areas to enable. Unknown
// module names are rejected rather than silently skipped.
func (s *Service) SubmitModules(ctx context.Context, id string, names []string) (*Session, error) {
	sess, err := s.at(ctx, id, StepModules)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(names))
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		kind, err := modules.Parse(name)
		if err != nil {
			return nil, errors.ValidationError("unknown module").WithContext("module", name).Build()
		}
		if !seen[string(kind)] {
			seen[string(kind)] = true
			cleaned = append(cleaned, string(kind))
		}
	}
	sess.Modules = cleaned
	return s.advance(ctx, sess)
}

// SubmitIntegrations stores provider settings (email, SSO, calendar).
// They are opaque to the wizard; nothing is contacted.
func (s *Service) SubmitIntegrations(ctx context.Context, id string, settings map[string]string) (*Session, error) {
	sess, err := s.at(ctx, id, StepIntegrations)
	if err != nil {
		return nil, err
	}
	sess.Integrations = settings
	return s.advance(ctx, sess)
}

// SubmitAdmin records the first administrator.
func (s *Service) SubmitAdmin(ctx context.Context, id, name, email string) (*Session, error) {
	sess, err := s.at(ctx, id, StepAdmin)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if len([]rune(name)) < MinNameLength {
		return nil, errors.ValidationError("admin name must be at least 2 characters").Build()
	}
	if !strings.Contains(email, "@") {
		return nil, errors.ValidationError("a valid admin email address is required").Build()
	}
	sess.AdminName = name
	sess.AdminEmail = email
	return s.advance(ctx, sess)
}

// Complete finalizes the wizard: it verifies backing services are
// ready, creates the organization, enables the chosen modules and
// creates the admin member. Idempotent once completed.
func (s *Service) Complete(ctx context.Context, id string) (*Organization, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.OrgID != "" {
		return s.store.GetOrganization(ctx, sess.OrgID)
	}
	if sess.Step != StepComplete {
		return nil, errors.ConflictError("onboarding is not finished").
			WithContext("at", string(sess.Step)).
			Build()
	}
	if s.ready != nil && !s.ready(ctx) {
		return nil, errors.NewError(errors.CategoryRuntime, "services are not ready yet").
			Retryable().
			Build()
	}

	org := &Organization{
		ID:        uuid.NewString(),
		Name:      sess.OrgName,
		Type:      sess.OrgType,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateOrganization(ctx, org); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "create organization").Build()
	}
	for _, name := range sess.Modules {
		if err := s.store.SetOrgModule(ctx, org.ID, name, true); err != nil {
			return nil, errors.WrapError(err, errors.CategoryDatabase, "enable module").
				WithContext("module", name).
				Build()
		}
	}
	if _, err := s.roster.Create(ctx, org.ID, sess.AdminName, sess.AdminEmail, "admin"); err != nil {
		return nil, err
	}

	sess.OrgID = org.ID
	sess.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveOnboarding(ctx, sess); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "finalize onboarding").Build()
	}

	observability.InfoContext(observability.WithOrgID(ctx, org.ID), "Onboarding complete")
	return org, nil
}
