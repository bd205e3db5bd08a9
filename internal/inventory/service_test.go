package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelogbook/logbook/internal/foundation/errors"
	"github.com/thelogbook/logbook/internal/stream"
)

type memStore struct {
	items map[string]*Item
}

func newMemStore() *memStore { return &memStore{items: map[string]*Item{}} }

func (s *memStore) CreateItem(_ context.Context, item *Item) error {
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *memStore) GetItem(_ context.Context, id string) (*Item, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("no row")
	}
	cp := *item
	return &cp, nil
}

func (s *memStore) ListItems(_ context.Context, orgID string) ([]*Item, error) {
	var out []*Item
	for _, item := range s.items {
		if item.OrgID == orgID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) UpdateItem(_ context.Context, item *Item) error {
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *memStore) DeleteItem(_ context.Context, id string) error {
	delete(s.items, id)
	return nil
}

type recordingBus struct {
	published [][]byte
}

func (b *recordingBus) Publish(_ context.Context, data []byte) error {
	b.published = append(b.published, data)
	return nil
}

type recordingAudit struct {
	actions []string
}

func (a *recordingAudit) AppendAudit(_ context.Context, _, _, _, _, action string, _ []byte) error {
	a.actions = append(a.actions, action)
	return nil
}

func TestCreatePublishesInventoryChanged(t *testing.T) {
	b := &recordingBus{}
	audit := &recordingAudit{}
	svc := NewService(newMemStore(), audit, b)

	item, err := svc.Create(context.Background(), "org-1", "m-1", "Attack hose 50ft", "hose", "Engine 1", 6)
	require.NoError(t, err)

	require.Len(t, b.published, 1)
	var env stream.Envelope
	require.NoError(t, json.Unmarshal(b.published[0], &env))
	assert.Equal(t, stream.EventInventoryChanged, env.Type)
	assert.Equal(t, ActionCreated, env.Action)

	var got Item
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, []string{ActionCreated}, audit.actions)
}

func TestUpdateAndDeleteAnnounce(t *testing.T) {
	b := &recordingBus{}
	svc := NewService(newMemStore(), &recordingAudit{}, b)

	item, err := svc.Create(context.Background(), "org-1", "m-1", "SCBA pack", "SCBA", "", 4)
	require.NoError(t, err)

	qty := 3
	_, err = svc.Update(context.Background(), item.ID, "m-1", "", "", "", &qty, ConditionInRepair)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), item.ID, "m-1"))

	require.Len(t, b.published, 3)
	var env stream.Envelope
	require.NoError(t, json.Unmarshal(b.published[1], &env))
	assert.Equal(t, ActionUpdated, env.Action)
	require.NoError(t, json.Unmarshal(b.published[2], &env))
	assert.Equal(t, ActionDeleted, env.Action)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)

	_, err := svc.Create(context.Background(), "org-1", "m-1", "  ", "", "", 1)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = svc.Create(context.Background(), "org-1", "m-1", "Halligan", "", "", -1)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestUpdateRejectsUnknownCondition(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	item, err := svc.Create(context.Background(), "org-1", "m-1", "Halligan", "tools", "", 2)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), item.ID, "m-1", "", "", "", nil, Condition("rusty"))
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestNilBusIsTolerated(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	_, err := svc.Create(context.Background(), "org-1", "m-1", "Nozzle", "hose", "", 2)
	assert.NoError(t, err)
}
