package minutes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Archiver persists approved minutes somewhere durable. The git archive
// is the production implementation; tests may substitute a recorder.
type Archiver interface {
	ArchiveApproved(m *Minutes) error
}

// GitArchive commits each approved minutes document as a markdown file
// into a local git repository, one commit per approval.
type GitArchive struct {
	path   string
	author string
	email  string
}

// NewGitArchive opens or initializes the archive repository.
func NewGitArchive(path, author, email string) (*GitArchive, error) {
	if author == "" {
		author = "The Logbook"
	}
	if email == "" {
		email = "logbook@localhost"
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	if _, err := gogit.PlainOpen(path); err != nil {
		if err != gogit.ErrRepositoryNotExists {
			return nil, fmt.Errorf("open archive repository: %w", err)
		}
		if _, err := gogit.PlainInit(path, false); err != nil {
			return nil, fmt.Errorf("init archive repository: %w", err)
		}
	}
	return &GitArchive{path: path, author: author, email: email}, nil
}

// ArchiveApproved writes the document under minutes/<year>/ and commits it.
func (a *GitArchive) ArchiveApproved(m *Minutes) error {
	repo, err := gogit.PlainOpen(a.path)
	if err != nil {
		return fmt.Errorf("open archive repository: %w", err)
	}

	relPath := filepath.Join("minutes", m.MeetingDate.Format("2006"), archiveFilename(m))
	absPath := filepath.Join(a.path, relPath)
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return fmt.Errorf("create archive subdirectory: %w", err)
	}

	content := fmt.Sprintf("# %s\n\nMeeting date: %s\nApproved by: %s\n\n%s\n",
		m.Title, m.MeetingDate.Format("2006-01-02"), m.ApprovedBy, m.Body)
	if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write archive file: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open archive worktree: %w", err)
	}
	if _, err := wt.Add(relPath); err != nil {
		return fmt.Errorf("stage archive file: %w", err)
	}
	msg := fmt.Sprintf("Archive minutes: %s (%s)", m.Title, m.MeetingDate.Format("2006-01-02"))
	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: a.author, Email: a.email, When: time.Now()},
	})
	if err != nil {
		return fmt.Errorf("commit archive file: %w", err)
	}
	return nil
}

// archiveFilename builds a stable slug from the meeting date and title.
func archiveFilename(m *Minutes) string {
	slug := strings.ToLower(strings.TrimSpace(m.Title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	slug = strings.Trim(strings.Join(strings.FieldsFunc(slug, func(r rune) bool { return r == '-' }), "-"), "-")
	if slug == "" {
		slug = "minutes"
	}
	return fmt.Sprintf("%s-%s.md", m.MeetingDate.Format("2006-01-02"), slug)
}
