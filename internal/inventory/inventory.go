// Package inventory tracks department apparatus and equipment. Every
// mutation is audited and announced on the change bus so connected
// clients refresh without polling.
package inventory

import "time"

// Condition describes an item's serviceability.
type Condition string

const (
	ConditionInService    Condition = "in_service"
	ConditionOutOfService Condition = "out_of_service"
	ConditionInRepair     Condition = "in_repair"
)

// Item is one tracked piece of equipment.
type Item struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"` // hose, SCBA, medical, apparatus...
	Quantity  int       `json:"quantity"`
	Location  string    `json:"location,omitempty"`
	Condition Condition `json:"condition"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Change actions carried in the envelope's action field.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)
