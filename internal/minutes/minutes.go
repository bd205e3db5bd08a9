// Package minutes manages meeting minutes: drafted as markdown, approved
// by an officer, and archived into a git-backed audit trail.
package minutes

import "time"

// State tracks a minutes document through its lifecycle.
type State string

const (
	StateDraft    State = "draft"
	StateApproved State = "approved"
)

// Minutes is one meeting's record.
type Minutes struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	Title       string    `json:"title"`
	MeetingDate time.Time `json:"meeting_date"`
	Body        string    `json:"body"` // markdown source
	State       State     `json:"state"`
	ApprovedBy  string    `json:"approved_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
