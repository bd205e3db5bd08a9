package modules

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIconMappingExhaustive guards the closed enumeration: every kind must
// resolve to an icon and a title without falling through.
func TestIconMappingExhaustive(t *testing.T) {
	for _, k := range All() {
		assert.NotPanics(t, func() { _ = k.Icon() }, "icon for %s", k)
		assert.NotPanics(t, func() { _ = k.Title() }, "title for %s", k)
		assert.NotEmpty(t, k.Icon())
	}
}

func TestUnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() { _ = Kind("sauna").Icon() })
}

func TestParse(t *testing.T) {
	k, err := Parse("  Inventory ")
	require.NoError(t, err)
	assert.Equal(t, KindInventory, k)

	_, err = Parse("sauna")
	assert.Error(t, err)
}

func TestRegistryDescriptors(t *testing.T) {
	r := NewRegistry(KindMembers, KindInventory)
	descs := r.Descriptors()
	require.Len(t, descs, len(All()))

	byKind := map[Kind]Descriptor{}
	for _, d := range descs {
		byKind[d.Kind] = d
	}
	assert.True(t, byKind[KindInventory].Enabled)
	assert.False(t, byKind[KindMinutes].Enabled)
	assert.Equal(t, "clipboard-list", byKind[KindInventory].Icon)
}

// TestRegistryConcurrentToggle exercises the registry under the race
// detector: the config watcher flips modules while request handlers read
// descriptors and derive the permission matrix.
func TestRegistryConcurrentToggle(t *testing.T) {
	r := NewRegistry(KindMembers)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			r.SetEnabled(KindInventory, i%2 == 0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = r.Descriptors()
			_ = BuildMatrix(r)
		}
	}()
	wg.Wait()

	assert.True(t, r.Enabled(KindMembers))
}

func TestMatrixDerivation(t *testing.T) {
	r := NewRegistry(KindInventory, KindEvents)
	m := BuildMatrix(r)

	assert.True(t, m.Allows("admin", Permission{KindInventory, ActionManage}))
	assert.True(t, m.Allows("officer", Permission{KindInventory, ActionEdit}))
	assert.False(t, m.Allows("officer", Permission{KindInventory, ActionManage}))
	assert.True(t, m.Allows("member", Permission{KindEvents, ActionView}))
	assert.False(t, m.Allows("member", Permission{KindEvents, ActionEdit}))

	// Disabled modules contribute nothing, for any role.
	assert.False(t, m.Allows("admin", Permission{KindMinutes, ActionView}))
	// Unknown roles hold nothing.
	assert.False(t, m.Allows("chief", Permission{KindEvents, ActionView}))
}

func TestMatrixGrantsStableOrder(t *testing.T) {
	r := NewRegistry(KindMembers)
	m := BuildMatrix(r)
	grants := m.Grants("officer")
	assert.Equal(t, []string{"members:edit", "members:view"}, grants)
}

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission("inventory:edit")
	require.NoError(t, err)
	assert.Equal(t, KindInventory, p.Module)
	assert.Equal(t, ActionEdit, p.Action)

	_, err = ParsePermission("inventory")
	assert.Error(t, err)
	_, err = ParsePermission("inventory:fly")
	assert.Error(t, err)
}
