package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/kbmcp/internal/kbui"
	"github.com/Aman-CERP/kbmcp/internal/store"
)

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactively browse the knowledge base",
		Long: `Browse opens a full-screen, filterable list of every item in the
knowledge base; press enter to view an item's full content.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse()
		},
	}
	return cmd
}

func runBrowse() error {
	kc, err := openContext()
	if err != nil {
		return err
	}
	defer func() { _ = kc.Close() }()

	items, err := kc.Store.GetAllItemsEager()
	if err != nil {
		return fmt.Errorf("failed to load items: %w", err)
	}

	return kbui.RunBrowser(toBrowseItems(items), kbui.DetectNoColor())
}

func toBrowseItems(items []*store.Item) []kbui.BrowseItem {
	browseItems := make([]kbui.BrowseItem, len(items))
	for i, it := range items {
		browseItems[i] = kbui.BrowseItem{
			ID:         it.ID,
			Title:      it.Title,
			SourceType: string(it.SourceType),
			SourcePath: it.SourcePath,
			Categories: it.Categories,
			Tags:       it.Tags,
			Content:    it.Content,
		}
	}
	return browseItems
}
