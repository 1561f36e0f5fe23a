package store

import (
	"database/sql"
	"fmt"

	"github.com/Aman-CERP/kbmcp/internal/kberrors"
)

// SaveChunks atomically replaces item_id's chunk set: delete-then-insert
// in one transaction, no differential diffing.
func (s *Store) SaveChunks(itemID string, chunks []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("saveChunks: begin: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM chunks WHERE item_id = ?`, itemID); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("saveChunks: delete: %w", err))
	}

	stmt, err := tx.Prepare(`
		INSERT INTO chunks (id, item_id, chunk_index, content, heading, start_position, end_position, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		meta, err := marshalMetadata(c.Metadata)
		if err != nil {
			return kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
		if _, err := stmt.Exec(c.ID, itemID, i, c.Content, c.Heading, c.StartPosition, c.EndPosition, meta); err != nil {
			return kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("saveChunks: insert: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("saveChunks: commit: %w", err))
	}

	s.chunkCache.Remove(itemID)
	s.adjacentCache.Purge()
	return nil
}

// GetChunksForItem returns chunks ordered by chunk_index.
func (s *Store) GetChunksForItem(itemID string) ([]Chunk, error) {
	if cached, ok := s.chunkCache.Get(itemID); ok {
		return cached, nil
	}

	s.mu.RLock()
	rows, err := s.db.Query(`
		SELECT id, item_id, chunk_index, content, heading, start_position, end_position, metadata
		FROM chunks WHERE item_id = ? ORDER BY chunk_index ASC`, itemID)
	s.mu.RUnlock()
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("getChunksForItem: %w", err))
	}
	defer rows.Close()

	chunks, err := scanChunks(rows)
	if err != nil {
		return nil, err
	}

	s.chunkCache.Add(itemID, chunks)
	return chunks, nil
}

// GetChunkByID fetches a single chunk.
func (s *Store) GetChunkByID(chunkID string) (*Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, item_id, chunk_index, content, heading, start_position, end_position, metadata
		FROM chunks WHERE id = ?`, chunkID)

	var c Chunk
	var metaJSON string
	if err := row.Scan(&c.ID, &c.ItemID, &c.ChunkIndex, &c.Content, &c.Heading, &c.StartPosition, &c.EndPosition, &metaJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, kberrors.New(kberrors.ErrCodeChunkNotFound, "chunk not found: "+chunkID, nil)
		}
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}
	meta, err := unmarshalMetadata(metaJSON)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
	}
	c.Metadata = meta
	return &c, nil
}

// GetAdjacentChunks returns the chunks at chunkIndex-1 and chunkIndex+1
// when they exist: zero, one, or two chunks.
func (s *Store) GetAdjacentChunks(itemID string, chunkIndex int) ([]Chunk, error) {
	cacheKey := fmt.Sprintf("%s:%d", itemID, chunkIndex)
	if cached, ok := s.adjacentCache.Get(cacheKey); ok {
		return cached, nil
	}

	s.mu.RLock()
	rows, err := s.db.Query(`
		SELECT id, item_id, chunk_index, content, heading, start_position, end_position, metadata
		FROM chunks WHERE item_id = ? AND chunk_index IN (?, ?) ORDER BY chunk_index ASC`,
		itemID, chunkIndex-1, chunkIndex+1)
	s.mu.RUnlock()
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, fmt.Errorf("getAdjacentChunks: %w", err))
	}
	defer rows.Close()

	chunks, err := scanChunks(rows)
	if err != nil {
		return nil, err
	}

	s.adjacentCache.Add(cacheKey, chunks)
	return chunks, nil
}

func scanChunks(rows *sql.Rows) ([]Chunk, error) {
	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var metaJSON string
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ChunkIndex, &c.Content, &c.Heading, &c.StartPosition, &c.EndPosition, &metaJSON); err != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
		meta, err := unmarshalMetadata(metaJSON)
		if err != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageFailure, err)
		}
		c.Metadata = meta
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
