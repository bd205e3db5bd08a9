package minutes

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelogbook/logbook/internal/foundation/errors"
)

type memStore struct {
	docs map[string]*Minutes
}

func newMemStore() *memStore { return &memStore{docs: map[string]*Minutes{}} }

func (s *memStore) CreateMinutes(_ context.Context, m *Minutes) error {
	cp := *m
	s.docs[m.ID] = &cp
	return nil
}

func (s *memStore) GetMinutes(_ context.Context, id string) (*Minutes, error) {
	m, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("no row")
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) ListMinutes(_ context.Context, orgID string) ([]*Minutes, error) {
	var out []*Minutes
	for _, m := range s.docs {
		if m.OrgID == orgID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) UpdateMinutes(_ context.Context, m *Minutes) error {
	cp := *m
	s.docs[m.ID] = &cp
	return nil
}

type recordingArchive struct {
	archived []string
	fail     bool
}

func (a *recordingArchive) ArchiveApproved(m *Minutes) error {
	if a.fail {
		return fmt.Errorf("disk full")
	}
	a.archived = append(a.archived, m.ID)
	return nil
}

func meeting() time.Time {
	return time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
}

func TestApproveArchivesOnce(t *testing.T) {
	arch := &recordingArchive{}
	svc := NewService(newMemStore(), arch)

	m, err := svc.Create(context.Background(), "org-1", "March business meeting", "## Old business\n", meeting())
	require.NoError(t, err)
	assert.Equal(t, StateDraft, m.State)

	approved, err := svc.Approve(context.Background(), m.ID, "m-chief")
	require.NoError(t, err)
	assert.Equal(t, StateApproved, approved.State)
	assert.Equal(t, "m-chief", approved.ApprovedBy)

	// Idempotent: approving again neither errors nor re-archives.
	_, err = svc.Approve(context.Background(), m.ID, "m-other")
	require.NoError(t, err)
	assert.Equal(t, []string{m.ID}, arch.archived)
}

func TestApprovalSurvivesArchiveFailure(t *testing.T) {
	arch := &recordingArchive{fail: true}
	svc := NewService(newMemStore(), arch)

	m, err := svc.Create(context.Background(), "org-1", "Special meeting", "", meeting())
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), m.ID, "m-chief")
	require.NoError(t, err)
	assert.Equal(t, StateApproved, approved.State)
}

func TestApprovedMinutesAreImmutable(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	m, err := svc.Create(context.Background(), "org-1", "April meeting", "draft", meeting())
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), m.ID, "m-chief")
	require.NoError(t, err)

	_, err = svc.UpdateBody(context.Background(), m.ID, "", "edited")
	assert.True(t, errors.HasCategory(err, errors.CategoryAlreadyExists))
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("# Roll call\n\n- Chief present\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<li>Chief present</li>")
}

func TestGetRendered(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	m, err := svc.Create(context.Background(), "org-1", "May meeting", "**motion carried**", meeting())
	require.NoError(t, err)

	_, html, err := svc.GetRendered(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>motion carried</strong>")
}

func TestArchiveFilename(t *testing.T) {
	m := &Minutes{Title: "March: Business Meeting!", MeetingDate: meeting()}
	assert.Equal(t, "2026-03-10-march-business-meeting.md", archiveFilename(m))

	m.Title = "???"
	assert.Equal(t, "2026-03-10-minutes.md", archiveFilename(m))
}

func TestGitArchiveCommits(t *testing.T) {
	dir := t.TempDir()
	arch, err := NewGitArchive(dir, "Test", "test@example.org")
	require.NoError(t, err)

	m := &Minutes{
		ID:          "min-1",
		Title:       "March business meeting",
		MeetingDate: meeting(),
		Body:        "## Old business",
		ApprovedBy:  "m-chief",
		State:       StateApproved,
	}
	require.NoError(t, arch.ArchiveApproved(m))

	// Re-opening an existing archive must work, and a second approval of
	// a different document commits alongside the first.
	arch2, err := NewGitArchive(dir, "", "")
	require.NoError(t, err)
	m2 := *m
	m2.ID = "min-2"
	m2.Title = "April business meeting"
	m2.MeetingDate = meeting().AddDate(0, 1, 0)
	require.NoError(t, arch2.ArchiveApproved(&m2))
}
