package members

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelogbook/logbook/internal/foundation/errors"
)

type memStore struct {
	byID map[string]*Member
}

func newMemStore() *memStore { return &memStore{byID: map[string]*Member{}} }

func (s *memStore) CreateMember(_ context.Context, m *Member) error {
	cp := *m
	s.byID[m.ID] = &cp
	return nil
}

func (s *memStore) GetMember(_ context.Context, id string) (*Member, error) {
	m, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("no row")
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) GetMemberByEmail(_ context.Context, orgID, email string) (*Member, error) {
	for _, m := range s.byID {
		if m.OrgID == orgID && m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("no row")
}

func (s *memStore) ListMembers(_ context.Context, orgID string) ([]*Member, error) {
	var out []*Member
	for _, m := range s.byID {
		if m.OrgID == orgID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) UpdateMember(_ context.Context, m *Member) error {
	cp := *m
	s.byID[m.ID] = &cp
	return nil
}

func (s *memStore) DeleteMember(_ context.Context, id string) error {
	delete(s.byID, id)
	return nil
}

func TestCreateValidatesName(t *testing.T) {
	svc := NewService(newMemStore())
	_, err := svc.Create(context.Background(), "org-1", "J", "j@example.org", "")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(newMemStore())
	_, err := svc.Create(context.Background(), "org-1", "Jo Ward", "jo@example.org", "")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "org-1", "Jos Ward", "JO@example.org", "")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryAlreadyExists))
}

func TestCreateDefaultsRoleAndStatus(t *testing.T) {
	svc := NewService(newMemStore())
	m, err := svc.Create(context.Background(), "org-1", "Pat Reyes", "pat@example.org", "")
	require.NoError(t, err)
	assert.Equal(t, "member", m.Role)
	assert.Equal(t, StatusActive, m.Status)
	assert.NotEmpty(t, m.ID)
}

func TestSearchFoldsDiacritics(t *testing.T) {
	svc := NewService(newMemStore())
	_, err := svc.Create(context.Background(), "org-1", "Renée Dubois", "renee@example.org", "")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "org-1", "Sam Ortiz", "sam@example.org", "")
	require.NoError(t, err)

	got, err := svc.Search(context.Background(), "org-1", "renee")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Renée Dubois", got[0].Name)
}

func TestSearchEmptyQueryListsAllSorted(t *testing.T) {
	svc := NewService(newMemStore())
	for _, n := range []string{"Zed Ames", "Al Burke"} {
		_, err := svc.Create(context.Background(), "org-1", n, n+"@example.org", "")
		require.NoError(t, err)
	}
	got, err := svc.Search(context.Background(), "org-1", "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Al Burke", got[0].Name)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMemStore())
	m, err := svc.Create(context.Background(), "org-1", "Pat Reyes", "pat@example.org", "")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), m.ID, "", "", Status("retired"))
	assert.Error(t, err)
}

func TestSearchKey(t *testing.T) {
	assert.Equal(t, "renee dubois", SearchKey("  Renée   Dubois "))
	assert.Equal(t, "o connor", SearchKey("Ó Connor"))
}
