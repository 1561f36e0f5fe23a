package store

import (
	"fmt"

	"github.com/Aman-CERP/kbmcp/internal/kberrors"
)

// SetCategories replaces an item's category links with the named set,
// creating any category rows that don't yet exist.
func (s *Store) SetCategories(itemID string, names []string) error {
	return s.setLinks(itemID, names, "categories", "category_items", "category_id")
}

// SetTags replaces an item's tag links with the named set, creating any
// tag rows that don't yet exist.
func (s *Store) SetTags(itemID string, names []string) error {
	return s.setLinks(itemID, names, "tags", "tag_items", "tag_id")
}

func (s *Store) setLinks(itemID string, names []string, entityTable, linkTable, linkCol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE item_id = ?`, linkTable), itemID); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}

	for _, name := range names {
		var id string
		err := tx.QueryRow(fmt.Sprintf(`SELECT id FROM %s WHERE name = ?`, entityTable), name).Scan(&id)
		if err != nil {
			id = generateLinkID(entityTable, name)
			if _, err := tx.Exec(fmt.Sprintf(`INSERT INTO %s (id, name) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`, entityTable), id, name); err != nil {
				return kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
			}
			if err := tx.QueryRow(fmt.Sprintf(`SELECT id FROM %s WHERE name = ?`, entityTable), name).Scan(&id); err != nil {
				return kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
			}
		}
		if _, err := tx.Exec(fmt.Sprintf(`INSERT INTO %s (item_id, %s) VALUES (?, ?) ON CONFLICT DO NOTHING`, linkTable, linkCol), itemID, id); err != nil {
			return kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
	}

	return tx.Commit()
}

func generateLinkID(namespace, name string) string {
	return namespace + ":" + name
}

// SaveRelationship inserts a directed edge between two items.
func (s *Store) SaveRelationship(rel Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO relationships (source_id, target_id, type) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING`, rel.SourceID, rel.TargetID, rel.Type)
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}
	return nil
}

// WalkRelationships traverses outgoing relationships breadth-first from
// startID, capped at maxDepth hops, to prevent unbounded graph walks.
func (s *Store) WalkRelationships(startID string, maxDepth int) ([]Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Relationship
	frontier := []string{startID}
	visited := map[string]bool{startID: true}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		rows, err := s.queryOutgoing(frontier)
		if err != nil {
			return nil, err
		}

		var next []string
		for _, rel := range rows {
			result = append(result, rel)
			if !visited[rel.TargetID] {
				visited[rel.TargetID] = true
				next = append(next, rel.TargetID)
			}
		}
		frontier = next
	}

	return result, nil
}

func (s *Store) queryOutgoing(ids []string) ([]Relationship, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT source_id, target_id, type FROM relationships WHERE source_id IN (%s)`,
		joinPlaceholders(placeholders))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}
	defer rows.Close()

	var rels []Relationship
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.SourceID, &r.TargetID, &r.Type); err != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
		rels = append(rels, r)
	}
	return rels, rows.Err()
}

func joinPlaceholders(ph []string) string {
	out := ph[0]
	for _, p := range ph[1:] {
		out += "," + p
	}
	return out
}
