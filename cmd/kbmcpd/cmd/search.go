package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/kbmcp/internal/searchcore"
)

type searchOptions struct {
	limit      int
	categories []string
	tags       []string
	format     string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long: `Search the knowledge base using two-phase chunk-aware search:
keyword and semantic chunk matches are found first, then aggregated by
item with adjacent context and a relevance score.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().StringSliceVarP(&opts.categories, "category", "c", nil, "Filter by category (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.tags, "tag", "t", nil, "Filter by tag (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	kc, err := openContext()
	if err != nil {
		return err
	}
	defer func() { _ = kc.Close() }()

	result, err := kc.Core.Search(cmd.Context(), query, searchcore.Options{
		MaxResults:        opts.limit,
		IncludeCategories: opts.categories,
		IncludeTags:       opts.tags,
		IncludeHighlights: true,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return printSearchResults(cmd, result)
}

func printSearchResults(cmd *cobra.Command, result searchcore.QueryResult) error {
	w := cmd.OutOrStdout()

	if result.Total == 0 {
		fmt.Fprintf(w, "No results for %q\n", result.Query)
		return nil
	}

	fmt.Fprintf(w, "%d result(s) for %q\n\n", result.Total, result.Query)
	for i, r := range result.Results {
		fmt.Fprintf(w, "%d. %s (%.3f)\n", i+1, r.Item.Title, r.RelevanceScore)
		if r.Item.SourcePath != "" {
			fmt.Fprintf(w, "   %s\n", r.Item.SourcePath)
		}
		for _, h := range r.Highlights {
			fmt.Fprintf(w, "   > %s\n", h)
		}
		fmt.Fprintln(w)
	}

	return nil
}
