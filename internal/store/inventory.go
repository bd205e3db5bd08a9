package store

import (
	"context"
	"fmt"
	"time"

	"github.com/thelogbook/logbook/internal/inventory"
)

const itemColumns = "id, org_id, name, category, quantity, location, condition, created_at, updated_at"

func (s *Store) CreateItem(ctx context.Context, item *inventory.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO inventory_items ("+itemColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		item.ID, item.OrgID, item.Name, item.Category, item.Quantity, item.Location,
		string(item.Condition), item.CreatedAt.Unix(), item.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM inventory_items WHERE id = ?", id)
	return scanItem(row)
}

func (s *Store) ListItems(ctx context.Context, orgID string) ([]*inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM inventory_items WHERE org_id = ? ORDER BY name", orgID)
	if err != nil {
		return nil, fmt.Errorf("query inventory items: %w", err)
	}
	defer rows.Close()

	var out []*inventory.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) UpdateItem(ctx context.Context, item *inventory.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items SET name = ?, category = ?, quantity = ?, location = ?, condition = ?, updated_at = ?
		WHERE id = ?`,
		item.Name, item.Category, item.Quantity, item.Location,
		string(item.Condition), item.UpdatedAt.Unix(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	return requireRow(res, "inventory item")
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM inventory_items WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return nil
}

func scanItem(row rowScanner) (*inventory.Item, error) {
	var item inventory.Item
	var condition string
	var created, updated int64
	err := row.Scan(&item.ID, &item.OrgID, &item.Name, &item.Category, &item.Quantity,
		&item.Location, &condition, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("scan inventory item: %w", err)
	}
	item.Condition = inventory.Condition(condition)
	item.CreatedAt = time.Unix(created, 0).UTC()
	item.UpdatedAt = time.Unix(updated, 0).UTC()
	return &item, nil
}
