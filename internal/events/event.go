// Package events implements department event scheduling and RSVPs.
package events

import "time"

// Event is a scheduled department activity (drill, meeting, fundraiser).
type Event struct {
	ID           string    `json:"id"`
	OrgID        string    `json:"org_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location,omitempty"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	ReminderSent bool      `json:"reminder_sent"`
	CreatedAt    time.Time `json:"created_at"`
}

// RSVPStatus is a member's response to an event invitation.
type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "going"
	RSVPNotGoing RSVPStatus = "not_going"
	RSVPMaybe    RSVPStatus = "maybe"
)

// RSVP records one member's response. A later response replaces an
// earlier one.
type RSVP struct {
	EventID     string     `json:"event_id"`
	MemberID    string     `json:"member_id"`
	Status      RSVPStatus `json:"status"`
	RespondedAt time.Time  `json:"responded_at"`
}
