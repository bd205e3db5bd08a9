// Package modules defines the closed set of optional functional areas a
// department can enable, and derives the role/permission matrix from it.
package modules

import (
	"fmt"
	"strings"
	"sync"
)

// Kind identifies one functional area. The set is closed: every Kind in
// existence is listed in All, and Icon is exhaustive over it.
type Kind string

const (
	KindMembers    Kind = "members"
	KindEvents     Kind = "events"
	KindInventory  Kind = "inventory"
	KindMinutes    Kind = "minutes"
	KindTraining   Kind = "training"
	KindScheduling Kind = "scheduling"
)

// All lists every module kind in display order.
func All() []Kind {
	return []Kind{KindMembers, KindEvents, KindInventory, KindMinutes, KindTraining, KindScheduling}
}

// Parse converts raw user input into a Kind.
func Parse(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range All() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown module %q", raw)
}

// Title returns the human-readable module name.
func (k Kind) Title() string {
	switch k {
	case KindMembers:
		return "Members"
	case KindEvents:
		return "Events"
	case KindInventory:
		return "Inventory"
	case KindMinutes:
		return "Meeting Minutes"
	case KindTraining:
		return "Training"
	case KindScheduling:
		return "Shift Scheduling"
	}
	panic(fmt.Sprintf("modules: no title for kind %q", k))
}

// Icon returns the glyph name for a module. The mapping is exhaustive:
// a Kind without an icon is a programming error, not a fallback case.
func (k Kind) Icon() string {
	switch k {
	case KindMembers:
		return "users"
	case KindEvents:
		return "calendar"
	case KindInventory:
		return "clipboard-list"
	case KindMinutes:
		return "file-text"
	case KindTraining:
		return "graduation-cap"
	case KindScheduling:
		return "clock"
	}
	panic(fmt.Sprintf("modules: no icon for kind %q", k))
}

// Descriptor is the wire representation of one registry entry.
type Descriptor struct {
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`
	Icon    string `json:"icon"`
	Enabled bool   `json:"enabled"`
}

// Registry tracks which modules are enabled for one organization. It is
// safe for concurrent use: the config watcher toggles modules while
// request handlers read them.
type Registry struct {
	mu      sync.RWMutex
	enabled map[Kind]bool
}

// NewRegistry creates a registry with the given kinds enabled.
func NewRegistry(enabled ...Kind) *Registry {
	r := &Registry{enabled: make(map[Kind]bool, len(enabled))}
	for _, k := range enabled {
		r.enabled[k] = true
	}
	return r
}

// Enabled reports whether a module is switched on.
func (r *Registry) Enabled(k Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[k]
}

// SetEnabled toggles a module.
func (r *Registry) SetEnabled(k Kind, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if on {
		r.enabled[k] = true
		return
	}
	delete(r.enabled, k)
}

// Descriptors returns the full registry in display order, including
// disabled modules so clients can render the configuration screen.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(All()))
	for _, k := range All() {
		out = append(out, Descriptor{Kind: k, Title: k.Title(), Icon: k.Icon(), Enabled: r.enabled[k]})
	}
	return out
}
