// Package members implements department roster management.
package members

import (
	"time"
)

// Status tracks a member's standing in the department.
type Status string

const (
	StatusActive    Status = "active"
	StatusProbation Status = "probation"
	StatusInactive  Status = "inactive"
)

// Member is one person on the department roster.
type Member struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"` // admin|officer|member
	Status    Status    `json:"status"`
	SearchKey string    `json:"-"` // folded form of Name, maintained by the service
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
