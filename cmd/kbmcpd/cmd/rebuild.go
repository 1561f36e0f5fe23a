package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/kbmcp/internal/kbui"
)

func newRebuildCmd() *cobra.Command {
	var forcePlain bool

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild both search indices from the store",
		Long: `Rebuild rebuilds the inverted and vector indices from the store's
current chunks. Use after detected index corruption or bulk external
changes that bypassed ingest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRebuild(cmd, forcePlain)
		},
	}

	cmd.Flags().BoolVar(&forcePlain, "plain", false, "Force plain-text progress output, skipping the TUI")

	return cmd
}

func runRebuild(cmd *cobra.Command, forcePlain bool) error {
	kc, err := openContext()
	if err != nil {
		return err
	}
	defer func() { _ = kc.Close() }()
	defer saveVectorIndex(kc)

	cfg := kbui.NewConfig(cmd.OutOrStdout(), kbui.WithForcePlain(forcePlain))
	renderer := kbui.NewRenderer(cfg)

	ctx := cmd.Context()
	if err := renderer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start progress renderer: %w", err)
	}
	defer func() { _ = renderer.Stop() }()

	start := time.Now()
	renderer.UpdateProgress(kbui.ProgressEvent{Stage: kbui.StageIndexing, Message: "rebuilding indices"})

	if err := kc.Core.RebuildAll(ctx); err != nil {
		renderer.AddError(kbui.ErrorEvent{Err: err})
		_ = renderer.Stop()
		return fmt.Errorf("rebuild failed: %w", err)
	}

	stats, err := kc.Store.GetStats()
	if err != nil {
		return fmt.Errorf("failed to read stats after rebuild: %w", err)
	}

	renderer.Complete(kbui.CompletionStats{
		Items:    stats.Items,
		Chunks:   stats.Chunks,
		Duration: time.Since(start),
	})

	return nil
}
