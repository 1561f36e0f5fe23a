package invindex

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/Aman-CERP/kbmcp/internal/kberrors"
)

// ChunksDirName is the fixed subdirectory of the configured index root that
// holds this package's Bleve index.
const ChunksDirName = "chunks"

// Index is the chunk-level inverted index: Bleve under the hood, scoped to
// the {chunk_id, item_id, chunk_index, heading, content} document shape.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

// Open opens (or creates) the chunk index rooted at <indexDir>/chunks. A
// corrupted on-disk index is detected and wiped before recreation, so an
// unclean shutdown self-heals on the next open rather than failing forever.
func Open(indexDir string) (*Index, error) {
	path := filepath.Join(indexDir, ChunksDirName)

	mapping, err := buildIndexMapping()
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeIndexUnavailable, fmt.Errorf("build chunk index mapping: %w", err))
	}

	if validateErr := validateIndexIntegrity(path); validateErr != nil {
		slog.Warn("chunk_index_corrupted", slog.String("path", path), slog.String("error", validateErr.Error()))
		if removeErr := os.RemoveAll(path); removeErr != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeIndexCorrupt,
				fmt.Errorf("chunk index corrupted at %s and cannot remove: %w (original: %v)", path, removeErr, validateErr))
		}
		slog.Info("chunk_index_cleared", slog.String("path", path), slog.String("reason", "corruption detected, reindex required"))
	}

	idx, err := bleve.Open(path)
	switch {
	case err == bleve.ErrorIndexPathDoesNotExist:
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeIndexUnavailable, mkErr)
		}
		idx, err = bleve.New(path, mapping)
	case err != nil && isCorruptionError(err):
		slog.Warn("chunk_index_open_failed", slog.String("path", path), slog.String("error", err.Error()))
		if removeErr := os.RemoveAll(path); removeErr != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeIndexCorrupt, fmt.Errorf("cannot clear corrupt index: %w", removeErr))
		}
		idx, err = bleve.New(path, mapping)
	}
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeIndexUnavailable, fmt.Errorf("open chunk index: %w", err))
	}

	return &Index{index: idx, path: path}, nil
}

// Close releases the underlying Bleve index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return nil
	}
	x.closed = true
	return x.index.Close()
}

// Path returns the on-disk directory backing this index.
func (x *Index) Path() string {
	return x.path
}

// validateIndexIntegrity checks the on-disk layout before Bleve tries to
// open it, recovering from the case where a prior process died mid-write
// and left an index_meta.json that is missing, empty, or unparsable.
func validateIndexIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("index_meta.json missing (corrupted index)")
	}
	if err != nil {
		return fmt.Errorf("cannot stat index_meta.json: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("index_meta.json is empty (corrupted)")
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}
	return nil
}

func isCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "unexpected end of JSON") ||
		strings.Contains(s, "error parsing mapping JSON") ||
		strings.Contains(s, "failed to load segment") ||
		strings.Contains(s, "error opening bolt") ||
		strings.Contains(s, "no such file or directory") ||
		err == bleve.ErrorIndexMetaCorrupt
}
