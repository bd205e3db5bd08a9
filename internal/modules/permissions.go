package modules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thelogbook/logbook/internal/util/sets"
)

// Action is what a role may do within a module.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionManage Action = "manage"
)

// Actions lists every action in escalation order.
func Actions() []Action {
	return []Action{ActionView, ActionEdit, ActionManage}
}

// Permission pairs a module with an action, e.g. "inventory:edit".
type Permission struct {
	Module Kind   `json:"module"`
	Action Action `json:"action"`
}

// String renders the canonical module:action form.
func (p Permission) String() string {
	return fmt.Sprintf("%s:%s", p.Module, p.Action)
}

// ParsePermission parses the module:action form.
func ParsePermission(raw string) (Permission, error) {
	mod, act, ok := strings.Cut(raw, ":")
	if !ok || mod == "" || act == "" {
		return Permission{}, fmt.Errorf("permission %q: want module:action", raw)
	}
	kind, err := Parse(mod)
	if err != nil {
		return Permission{}, err
	}
	switch Action(act) {
	case ActionView, ActionEdit, ActionManage:
		return Permission{Module: kind, Action: Action(act)}, nil
	}
	return Permission{}, fmt.Errorf("unknown action %q", act)
}

// Matrix maps role names to their granted permissions for the modules a
// registry has enabled. Disabled modules contribute no rows.
type Matrix map[string]sets.Set[Permission]

// DefaultRoles lists the built-in roles of a department.
func DefaultRoles() []string {
	return []string{"admin", "officer", "member"}
}

// BuildMatrix derives the permission matrix from the registry. Admins get
// every action on every enabled module, officers get view+edit, members
// get view only.
func BuildMatrix(r *Registry) Matrix {
	m := Matrix{
		"admin":   sets.New[Permission](),
		"officer": sets.New[Permission](),
		"member":  sets.New[Permission](),
	}
	for _, kind := range All() {
		if !r.Enabled(kind) {
			continue
		}
		for _, action := range Actions() {
			m["admin"].Add(Permission{Module: kind, Action: action})
		}
		m["officer"].Add(Permission{Module: kind, Action: ActionView})
		m["officer"].Add(Permission{Module: kind, Action: ActionEdit})
		m["member"].Add(Permission{Module: kind, Action: ActionView})
	}
	return m
}

// Allows reports whether a role holds a permission. Unknown roles hold
// nothing.
func (m Matrix) Allows(role string, p Permission) bool {
	perms, ok := m[role]
	if !ok {
		return false
	}
	return perms.Has(p)
}

// Grants returns a role's permissions in stable order for API responses.
func (m Matrix) Grants(role string) []string {
	perms, ok := m[role]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(perms))
	for p := range perms {
		out = append(out, p.String())
	}
	sort.Strings(out)
	return out
}
