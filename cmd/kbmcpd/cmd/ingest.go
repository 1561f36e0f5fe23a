package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/kbmcp/internal/kbcontext"
	"github.com/Aman-CERP/kbmcp/internal/kbui"
	"github.com/Aman-CERP/kbmcp/internal/scanner"
	"github.com/Aman-CERP/kbmcp/internal/store"
)

func newIngestCmd() *cobra.Command {
	var forcePlain, noGitignore bool

	cmd := &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Ingest files or directories into the knowledge base",
		Long: `Ingest reads each path, chunks its content, persists it to the
store, and updates both search indices. A directory argument is scanned
recursively for recognized file types, honoring .gitignore unless
--no-gitignore is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args, forcePlain, noGitignore)
		},
	}

	cmd.Flags().BoolVar(&forcePlain, "plain", false, "Force plain-text progress output, skipping the TUI")
	cmd.Flags().BoolVar(&noGitignore, "no-gitignore", false, "Do not skip files excluded by .gitignore when ingesting a directory")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string, forcePlain, noGitignore bool) error {
	kc, err := openContext()
	if err != nil {
		return err
	}
	defer func() { _ = kc.Close() }()
	defer saveVectorIndex(kc)

	paths, err := expandIngestPaths(args, !noGitignore)
	if err != nil {
		return err
	}

	cfg := kbui.NewConfig(cmd.OutOrStdout(), kbui.WithForcePlain(forcePlain))
	renderer := kbui.NewRenderer(cfg)

	ctx := cmd.Context()
	if err := renderer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start progress renderer: %w", err)
	}
	defer func() { _ = renderer.Stop() }()

	start := time.Now()
	var chunkTotal int
	var errCount, warnCount int

	renderer.UpdateProgress(kbui.ProgressEvent{Stage: kbui.StageScanning, Total: len(paths)})

	for i, p := range paths {
		renderer.UpdateProgress(kbui.ProgressEvent{
			Stage: kbui.StageChunking, Current: i + 1, Total: len(paths), Item: p.path,
		})

		n, err := ingestFile(ctx, kc, p.path, p.sourceType)
		if err != nil {
			renderer.AddError(kbui.ErrorEvent{Item: p.path, Err: err})
			errCount++
			continue
		}
		chunkTotal += n

		renderer.UpdateProgress(kbui.ProgressEvent{
			Stage: kbui.StageIndexing, Current: i + 1, Total: len(paths), Item: p.path,
		})
	}

	renderer.Complete(kbui.CompletionStats{
		Items:    len(paths) - errCount,
		Chunks:   chunkTotal,
		Duration: time.Since(start),
		Errors:   errCount,
		Warnings: warnCount,
	})

	if errCount > 0 {
		return fmt.Errorf("ingest completed with %d error(s)", errCount)
	}
	return nil
}

// ingestPath pairs a resolved file path with its detected source type.
type ingestPath struct {
	path       string
	sourceType store.SourceType
}

// expandIngestPaths resolves CLI arguments into a flat list of files,
// recursively scanning any argument that names a directory.
func expandIngestPaths(args []string, respectGitignore bool) ([]ingestPath, error) {
	s := scanner.New()
	var paths []ingestPath

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			paths = append(paths, ingestPath{path: arg, sourceType: detectSourceType(arg)})
			continue
		}

		files, err := s.Walk(arg, scanner.Options{RespectGitignore: respectGitignore})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", arg, err)
		}
		for _, f := range files {
			paths = append(paths, ingestPath{path: f.AbsPath, sourceType: store.SourceType(f.SourceType)})
		}
	}

	return paths, nil
}

// detectSourceType maps a file extension to a store.SourceType, defaulting
// to store.SourceDocument for unrecognized extensions since an explicitly
// named file is ingested regardless.
func detectSourceType(path string) store.SourceType {
	if st := scanner.DetectSourceType(filepath.Ext(path)); st != "" {
		return store.SourceType(st)
	}
	return store.SourceDocument
}

func ingestFile(ctx context.Context, kc *kbcontext.Context, path string, sourceType store.SourceType) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	chunks := kc.Chunker.Chunk(string(content), title)

	itemID := generateItemID()
	item := &store.Item{
		ID:         itemID,
		Title:      title,
		Content:    string(content),
		SourceType: sourceType,
		SourcePath: path,
	}

	if err := kc.Store.SaveItem(item); err != nil {
		return 0, fmt.Errorf("save %s: %w", path, err)
	}

	storeChunks := make([]store.Chunk, len(chunks))
	for i, c := range chunks {
		storeChunks[i] = store.Chunk{
			ID:            c.ID,
			ItemID:        itemID,
			ChunkIndex:    i,
			Content:       c.Content,
			Heading:       c.Heading,
			StartPosition: c.StartPosition,
			EndPosition:   c.EndPosition,
		}
	}
	if err := kc.Store.SaveChunks(itemID, storeChunks); err != nil {
		return 0, fmt.Errorf("save chunks for %s: %w", path, err)
	}

	kc.Core.OnItemUpserted(ctx, item, storeChunks)

	return len(chunks), nil
}

func generateItemID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
