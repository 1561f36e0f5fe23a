package searchcore

import (
	"context"
	"log/slog"

	"github.com/Aman-CERP/kbmcp/internal/store"
)

// OnItemUpserted persists chunks and propagates them to both indices. A
// failure partway through is logged but does not roll back earlier steps;
// RebuildAll is the recovery mechanism for a partially-applied update.
func (c *Core) OnItemUpserted(ctx context.Context, item *store.Item, chunks []store.Chunk) {
	if err := c.store.SaveChunks(item.ID, chunks); err != nil {
		c.log.Error("onItemUpserted: save chunks failed", slog.String("item_id", item.ID), slog.String("error", err.Error()))
		return
	}
	if err := c.inv.AddChunks(ctx, toInvChunks(chunks)); err != nil {
		c.log.Error("onItemUpserted: inverted index update failed", slog.String("item_id", item.ID), slog.String("error", err.Error()))
	}
	if c.vec != nil {
		if err := c.vec.UpdateChunksForItem(item.ID, toVecChunks(chunks)); err != nil {
			c.log.Error("onItemUpserted: vector index update failed", slog.String("item_id", item.ID), slog.String("error", err.Error()))
		}
	}
}

// OnItemDeleted removes an item's chunks from both indices; the store's own
// cascade delete handles the row data.
func (c *Core) OnItemDeleted(ctx context.Context, itemID string) {
	if err := c.inv.RemoveChunksForItem(ctx, itemID); err != nil {
		c.log.Error("onItemDeleted: inverted index removal failed", slog.String("item_id", itemID), slog.String("error", err.Error()))
	}
	if c.vec != nil {
		if err := c.vec.RemoveChunksForItem(itemID); err != nil {
			c.log.Error("onItemDeleted: vector index removal failed", slog.String("item_id", itemID), slog.String("error", err.Error()))
		}
	}
}

// RebuildAll reloads every chunk from the store and repopulates both
// indices from scratch: the recovery path after onItemUpserted partial
// failures or detected index corruption.
func (c *Core) RebuildAll(ctx context.Context) error {
	items, err := c.store.GetAllItemsEager()
	if err != nil {
		return err
	}

	var all []store.Chunk
	for _, item := range items {
		chunks, err := c.store.GetChunksForItem(item.ID)
		if err != nil {
			c.log.Warn("rebuildAll: load chunks failed", slog.String("item_id", item.ID), slog.String("error", err.Error()))
			continue
		}
		all = append(all, chunks...)
	}

	if err := c.inv.RebuildChunkIndex(ctx, toInvChunks(all)); err != nil {
		return err
	}
	if c.vec != nil {
		if err := c.vec.FitChunks(toVecChunks(all)); err != nil {
			return err
		}
	}
	return nil
}
