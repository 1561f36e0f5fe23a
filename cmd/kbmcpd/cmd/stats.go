package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/kbmcp/internal/kbcontext"
	"github.com/Aman-CERP/kbmcp/internal/kbui"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base health and statistics",
		Long: `Display information about the knowledge base including:
  - Number of items, chunks, categories, and tags
  - Storage sizes (store, inverted index)
  - Inverted and vector index health`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStats(cmd *cobra.Command, jsonOutput bool) error {
	kc, err := openContext()
	if err != nil {
		return err
	}
	defer func() { _ = kc.Close() }()

	info, err := collectStats(kc)
	if err != nil {
		return fmt.Errorf("failed to collect stats: %w", err)
	}

	noColor := kbui.DetectNoColor()
	renderer := kbui.NewStatusRenderer(cmd.OutOrStdout(), noColor)

	if jsonOutput {
		return renderer.RenderJSON(info)
	}
	return renderer.Render(info)
}

func collectStats(kc *kbcontext.Context) (kbui.StatusInfo, error) {
	info := kbui.StatusInfo{KBName: filepath.Base(configDir)}

	stats, err := kc.Store.GetStats()
	if err != nil {
		return info, err
	}
	info.TotalItems = stats.Items
	info.TotalChunks = stats.Chunks
	info.TotalCategories = stats.Categories
	info.TotalTags = stats.Tags

	info.StoreSize = getFileSize(kc.Config.Storage.Path)
	info.InvIndexSize = getDirSize(kc.Inv.Path())
	info.TotalSize = info.StoreSize + info.InvIndexSize

	info.InvIndexStatus = "ready"
	if info.TotalChunks == 0 {
		info.InvIndexStatus = "empty"
	}
	info.VecIndexStatus = "ready"
	if kc.Vec.Len() == 0 {
		info.VecIndexStatus = "empty"
	}

	return info, nil
}

func getFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func getDirSize(path string) int64 {
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}
