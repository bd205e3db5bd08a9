package inventory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thelogbook/logbook/internal/bus"
	"github.com/thelogbook/logbook/internal/foundation/errors"
	"github.com/thelogbook/logbook/internal/stream"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, id string) (*Item, error)
	ListItems(ctx context.Context, orgID string) ([]*Item, error)
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, id string) error
}

// Auditor records the append-only trail of inventory mutations.
type Auditor interface {
	AppendAudit(ctx context.Context, orgID, actorID, entityType, entityID, action string, payload []byte) error
}

// Service provides inventory operations.
type Service struct {
	store   Store
	audit   Auditor
	publish bus.Publisher
}

// NewService creates an inventory service. publish may be nil in tools
// that have no bus; changes are then only persisted and audited.
func NewService(store Store, audit Auditor, publish bus.Publisher) *Service {
	return &Service{store: store, audit: audit, publish: publish}
}

// Create validates and persists a new item, then announces it.
func (s *Service) Create(ctx context.Context, orgID, actorID, name, category, location string, quantity int) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ValidationError("item name is required").Build()
	}
	if quantity < 0 {
		return nil, errors.ValidationError("quantity cannot be negative").Build()
	}

	now := time.Now().UTC()
	item := &Item{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Name:      name,
		Category:  category,
		Quantity:  quantity,
		Location:  location,
		Condition: ConditionInService,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "create item").Build()
	}
	s.announce(ctx, orgID, actorID, ActionCreated, item)
	return item, nil
}

// Get fetches one item.
func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("inventory item not found").WithContext("item_id", id).Build()
	}
	return item, nil
}

// List returns all items for one organization.
func (s *Service) List(ctx context.Context, orgID string) ([]*Item, error) {
	items, err := s.store.ListItems(ctx, orgID)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "list items").Build()
	}
	return items, nil
}

// Update applies field changes and announces the result.
func (s *Service) Update(ctx context.Context, id, actorID string, name, category, location string, quantity *int, condition Condition) (*Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		item.Name = strings.TrimSpace(name)
	}
	if category != "" {
		item.Category = category
	}
	if location != "" {
		item.Location = location
	}
	if quantity != nil {
		if *quantity < 0 {
			return nil, errors.ValidationError("quantity cannot be negative").Build()
		}
		item.Quantity = *quantity
	}
	if condition != "" {
		switch condition {
		case ConditionInService, ConditionOutOfService, ConditionInRepair:
			item.Condition = condition
		default:
			return nil, errors.ValidationError("unknown item condition").WithContext("condition", string(condition)).Build()
		}
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "update item").Build()
	}
	s.announce(ctx, item.OrgID, actorID, ActionUpdated, item)
	return item, nil
}

// Delete removes an item and announces the removal.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return errors.WrapError(err, errors.CategoryDatabase, "delete item").Build()
	}
	s.announce(ctx, item.OrgID, actorID, ActionDeleted, item)
	return nil
}

// announce appends the audit record and publishes the change envelope.
// Neither failure rolls the mutation back: the store is the source of
// truth, the trail and the stream are best-effort observers.
func (s *Service) announce(ctx context.Context, orgID, actorID, action string, item *Item) {
	payload, err := stream.Marshal(stream.EventInventoryChanged, action, item)
	if err != nil {
		slog.Error("Failed to marshal inventory change", "error", err)
		return
	}
	if s.audit != nil {
		if err := s.audit.AppendAudit(ctx, orgID, actorID, "inventory_item", item.ID, action, payload); err != nil {
			slog.Warn("Inventory audit append failed", "item_id", item.ID, "error", err)
		}
	}
	if s.publish != nil {
		if err := s.publish.Publish(ctx, payload); err != nil {
			slog.Warn("Inventory change publish failed", "item_id", item.ID, "error", err)
		}
	}
}
