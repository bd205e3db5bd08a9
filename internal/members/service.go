package members

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thelogbook/logbook/internal/foundation/errors"
)

// MinNameLength is the validation floor for member and organization names.
const MinNameLength = 2

// Store is the persistence surface the service needs.
type Store interface {
	CreateMember(ctx context.Context, m *Member) error
	GetMember(ctx context.Context, id string) (*Member, error)
	GetMemberByEmail(ctx context.Context, orgID, email string) (*Member, error)
	ListMembers(ctx context.Context, orgID string) ([]*Member, error)
	UpdateMember(ctx context.Context, m *Member) error
	DeleteMember(ctx context.Context, id string) error
}

// Service provides roster operations over a Store.
type Service struct {
	store Store
}

// NewService creates a member service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates and persists a new member.
func (s *Service) Create(ctx context.Context, orgID, name, email, role string) (*Member, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.ValidationError("a valid email address is required").Build()
	}
	if existing, err := s.store.GetMemberByEmail(ctx, orgID, email); err == nil && existing != nil {
		return nil, errors.ConflictError("a member with this email already exists").
			WithContext("email", email).Build()
	}
	if role == "" {
		role = "member"
	}

	now := time.Now().UTC()
	m := &Member{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Name:      strings.TrimSpace(name),
		Email:     email,
		Role:      role,
		Status:    StatusActive,
		SearchKey: SearchKey(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateMember(ctx, m); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "create member").Build()
	}
	return m, nil
}

// Get fetches one member.
func (s *Service) Get(ctx context.Context, id string) (*Member, error) {
	m, err := s.store.GetMember(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("member not found").WithContext("member_id", id).Build()
	}
	return m, nil
}

// Update applies name/role/status changes.
func (s *Service) Update(ctx context.Context, id string, name, role string, status Status) (*Member, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		if err := validateName(name); err != nil {
			return nil, err
		}
		m.Name = strings.TrimSpace(name)
		m.SearchKey = SearchKey(name)
	}
	if role != "" {
		m.Role = role
	}
	if status != "" {
		switch status {
		case StatusActive, StatusProbation, StatusInactive:
			m.Status = status
		default:
			return nil, errors.ValidationError("unknown member status").WithContext("status", string(status)).Build()
		}
	}
	m.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateMember(ctx, m); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "update member").Build()
	}
	return m, nil
}

// Delete removes a member from the roster.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteMember(ctx, id); err != nil {
		return errors.WrapError(err, errors.CategoryDatabase, "delete member").Build()
	}
	return nil
}

// Search lists an organization's members whose folded name contains the
// folded query, sorted by search key. An empty query lists everyone.
func (s *Service) Search(ctx context.Context, orgID, query string) ([]*Member, error) {
	all, err := s.store.ListMembers(ctx, orgID)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "list members").Build()
	}
	needle := SearchKey(query)
	out := make([]*Member, 0, len(all))
	for _, m := range all {
		if needle == "" || strings.Contains(m.SearchKey, needle) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SearchKey < out[j].SearchKey })
	return out, nil
}

func validateName(name string) error {
	if len(strings.TrimSpace(name)) < MinNameLength {
		return errors.ValidationError("name must be at least 2 characters").Build()
	}
	return nil
}
