package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aman-CERP/kbmcp/internal/kbconfig"
	"github.com/Aman-CERP/kbmcp/internal/kberrors"
)

// SaveItem inserts or replaces an item's own row. Category/tag links are
// managed separately via SetCategories/SetTags.
func (s *Store) SaveItem(item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := marshalMetadata(item.Metadata)
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.Before(item.CreatedAt) {
		item.UpdatedAt = item.CreatedAt
	}

	_, err = s.db.Exec(`
		INSERT INTO items (id, title, content, source_type, source_path, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			source_type = excluded.source_type,
			source_path = excluded.source_path,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		item.ID, item.Title, item.Content, string(item.SourceType), item.SourcePath,
		meta, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("saveItem: %w", err))
	}
	return nil
}

// UpdateItem applies a partial mutation and bumps updated_at; it never
// moves updated_at backward relative to the stored value.
func (s *Store) UpdateItem(id string, mutate func(*Item)) (*Item, error) {
	item, err := s.GetItem(id)
	if err != nil {
		return nil, err
	}
	prevUpdated := item.UpdatedAt

	mutate(item)
	item.UpdatedAt = time.Now()
	if item.UpdatedAt.Before(prevUpdated) {
		item.UpdatedAt = prevUpdated
	}

	if err := s.SaveItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item; foreign-key cascade removes its chunks,
// category/tag links, and relationship endpoints.
func (s *Store) DeleteItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunkCache.Remove(id)

	res, err := s.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("deleteItem: %w", err))
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return kberrors.New(kberrors.ErrCodeItemNotFound, "item not found: "+id, nil)
	}
	return nil
}

// GetItem loads a single item by id, including its category/tag names.
func (s *Store) GetItem(id string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, title, content, source_type, source_path, metadata, created_at, updated_at
		FROM items WHERE id = ?`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, kberrors.New(kberrors.ErrCodeItemNotFound, "item not found: "+id, nil)
	}
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}

	item.Categories, err = s.categoriesForItem(id)
	if err != nil {
		return nil, err
	}
	item.Tags, err = s.tagsForItem(id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func scanItem(row *sql.Row) (*Item, error) {
	var item Item
	var sourceType, metaJSON string
	if err := row.Scan(&item.ID, &item.Title, &item.Content, &sourceType, &item.SourcePath,
		&metaJSON, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.SourceType = SourceType(sourceType)
	meta, err := unmarshalMetadata(metaJSON)
	if err != nil {
		return nil, err
	}
	item.Metadata = meta
	return &item, nil
}

func marshalMetadata(m map[string]kbconfig.Value) (string, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalMetadata(s string) (map[string]kbconfig.Value, error) {
	if s == "" {
		return map[string]kbconfig.Value{}, nil
	}
	var m map[string]kbconfig.Value
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// QueryItems filters and paginates at the database layer.
func (s *Store) QueryItems(q ItemQuery) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT DISTINCT i.id, i.title, i.content, i.source_type, i.source_path, i.metadata, i.created_at, i.updated_at FROM items i`
	var args []interface{}
	var joins, wheres []string

	if q.Category != "" {
		joins = append(joins, "JOIN category_items ci ON ci.item_id = i.id JOIN categories c ON c.id = ci.category_id")
		wheres = append(wheres, "c.name = ?")
		args = append(args, q.Category)
	}
	if q.Tag != "" {
		joins = append(joins, "JOIN tag_items ti ON ti.item_id = i.id JOIN tags t ON t.id = ti.tag_id")
		wheres = append(wheres, "t.name = ?")
		args = append(args, q.Tag)
	}

	for _, j := range joins {
		query += " " + j
	}
	for i, w := range wheres {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY i.updated_at DESC"

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
		if q.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, q.Offset)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("queryItems: %w", err))
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var item Item
		var sourceType, metaJSON string
		if err := rows.Scan(&item.ID, &item.Title, &item.Content, &sourceType, &item.SourcePath,
			&metaJSON, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
		item.SourceType = SourceType(sourceType)
		meta, err := unmarshalMetadata(metaJSON)
		if err != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
		item.Metadata = meta
		items = append(items, &item)
	}
	return items, rows.Err()
}

// GetAllItemsEager loads every item along with its category and tag
// names using at most three statements total: items, then a category-link
// join, then a tag-link join — never a per-item loop query.
func (s *Store) GetAllItemsEager() ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, title, content, source_type, source_path, metadata, created_at, updated_at FROM items`)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("getAllItemsEager(items): %w", err))
	}

	byID := make(map[string]*Item)
	var ordered []*Item
	for rows.Next() {
		var item Item
		var sourceType, metaJSON string
		if err := rows.Scan(&item.ID, &item.Title, &item.Content, &sourceType, &item.SourcePath,
			&metaJSON, &item.CreatedAt, &item.UpdatedAt); err != nil {
			rows.Close()
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
		item.SourceType = SourceType(sourceType)
		meta, err := unmarshalMetadata(metaJSON)
		if err != nil {
			rows.Close()
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
		item.Metadata = meta
		byID[item.ID] = &item
		ordered = append(ordered, &item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}

	catRows, err := s.db.Query(`SELECT ci.item_id, c.name FROM category_items ci JOIN categories c ON c.id = ci.category_id`)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("getAllItemsEager(categories): %w", err))
	}
	for catRows.Next() {
		var itemID, name string
		if err := catRows.Scan(&itemID, &name); err != nil {
			catRows.Close()
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
		if item, ok := byID[itemID]; ok {
			item.Categories = append(item.Categories, name)
		}
	}
	catRows.Close()

	tagRows, err := s.db.Query(`SELECT ti.item_id, t.name FROM tag_items ti JOIN tags t ON t.id = ti.tag_id`)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("getAllItemsEager(tags): %w", err))
	}
	for tagRows.Next() {
		var itemID, name string
		if err := tagRows.Scan(&itemID, &name); err != nil {
			tagRows.Close()
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
		if item, ok := byID[itemID]; ok {
			item.Tags = append(item.Tags, name)
		}
	}
	tagRows.Close()

	return ordered, nil
}

func (s *Store) categoriesForItem(itemID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT c.name FROM category_items ci JOIN categories c ON c.id = ci.category_id WHERE ci.item_id = ?`, itemID)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) tagsForItem(itemID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT t.name FROM tag_items ti JOIN tags t ON t.id = ti.tag_id WHERE ti.item_id = ?`, itemID)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetStats returns COUNT aggregates per table.
func (s *Store) GetStats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	queries := []struct {
		sql string
		dst *int
	}{
		{"SELECT COUNT(*) FROM items", &st.Items},
		{"SELECT COUNT(*) FROM chunks", &st.Chunks},
		{"SELECT COUNT(*) FROM categories", &st.Categories},
		{"SELECT COUNT(*) FROM tags", &st.Tags},
		{"SELECT COUNT(*) FROM relationships", &st.Relationships},
	}
	for _, q := range queries {
		if err := s.db.QueryRow(q.sql).Scan(q.dst); err != nil {
			return Stats{}, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
	}
	return st, nil
}
