// Package onboarding drives the first-run wizard that turns an empty
// installation into a configured department. Wizard state is persisted
// server-side so a browser refresh resumes where it left off.
package onboarding

import "time"

// Step is one stage of the wizard. Steps advance strictly in order.
type Step string

const (
	StepIdentity     Step = "identity"
	StepModules      Step = "modules"
	StepIntegrations Step = "integrations"
	StepAdmin        Step = "admin"
	StepComplete     Step = "complete"
)

// next returns the step that follows s, or StepComplete at the end.
func (s Step) next() Step {
	switch s {
	case StepIdentity:
		return StepModules
	case StepModules:
		return StepIntegrations
	case StepIntegrations:
		return StepAdmin
	case StepAdmin:
		return StepComplete
	}
	return StepComplete
}

// Organization is a configured department.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"` // fire|ems|combined
	CreatedAt time.Time `json:"created_at"`
}

// Session is a persisted wizard run. Integrations hold provider
// settings verbatim; they are stored, never exercised.
type Session struct {
	ID           string            `json:"id"`
	Step         Step              `json:"step"`
	OrgName      string            `json:"org_name,omitempty"`
	OrgType      string            `json:"org_type,omitempty"`
	Modules      []string          `json:"modules,omitempty"`
	Integrations map[string]string `json:"integrations,omitempty"`
	AdminName    string            `json:"admin_name,omitempty"`
	AdminEmail   string            `json:"admin_email,omitempty"`
	OrgID        string            `json:"org_id,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
