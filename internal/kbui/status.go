package kbui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// StatusInfo is a snapshot of knowledge base health for `kbmcpd stats`.
type StatusInfo struct {
	KBName        string    `json:"kb_name"`
	TotalItems    int       `json:"total_items"`
	TotalChunks   int       `json:"total_chunks"`
	TotalCategories int     `json:"total_categories"`
	TotalTags     int       `json:"total_tags"`
	LastIndexed   time.Time `json:"last_indexed"`

	StoreSize    int64 `json:"store_size"`
	InvIndexSize int64 `json:"inv_index_size"`
	TotalSize    int64 `json:"total_size"`

	InvIndexStatus string `json:"inv_index_status"` // "ready", "missing", "corrupt"
	VecIndexStatus string `json:"vec_index_status"` // "ready", "empty"
}

// StatusRenderer renders StatusInfo to a terminal or as JSON.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer builds a StatusRenderer writing to out.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{out: out, styles: GetStyles(noColor)}
}

// Render prints a human-readable status report.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Knowledge Base Status: "+info.KBName))

	_, _ = fmt.Fprintf(r.out, "  Items:      %d\n", info.TotalItems)
	_, _ = fmt.Fprintf(r.out, "  Chunks:     %d\n", info.TotalChunks)
	_, _ = fmt.Fprintf(r.out, "  Categories: %d\n", info.TotalCategories)
	_, _ = fmt.Fprintf(r.out, "  Tags:       %d\n", info.TotalTags)
	if !info.LastIndexed.IsZero() {
		_, _ = fmt.Fprintf(r.out, "  Last ingested: %s\n", formatTime(info.LastIndexed))
	}
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  Storage:")
	_, _ = fmt.Fprintf(r.out, "    Store:       %s\n", FormatBytes(info.StoreSize))
	_, _ = fmt.Fprintf(r.out, "    Inv. index:  %s\n", FormatBytes(info.InvIndexSize))
	_, _ = fmt.Fprintf(r.out, "    Total:       %s\n", FormatBytes(info.TotalSize))
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  Indices:")
	_, _ = fmt.Fprintf(r.out, "    Inverted: %s\n", r.renderStatus(info.InvIndexStatus))
	_, _ = fmt.Fprintf(r.out, "    Vector:   %s\n", r.renderStatus(info.VecIndexStatus))

	return nil
}

// RenderJSON writes info as indented JSON, for scripting.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "ready":
		return r.styles.Success.Render(status)
	case "empty", "missing":
		return r.styles.Warning.Render(status)
	case "corrupt":
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes renders a byte count in human-readable units.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
