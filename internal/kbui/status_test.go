package kbui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusRenderer_Render_IncludesCounts(t *testing.T) {
	var buf bytes.Buffer
	r := NewStatusRenderer(&buf, true)

	err := r.Render(StatusInfo{
		KBName:         "vault",
		TotalItems:     10,
		TotalChunks:    42,
		TotalCategories: 3,
		TotalTags:      5,
		InvIndexStatus: "ready",
		VecIndexStatus: "empty",
	})

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "vault")
	assert.Contains(t, out, "10")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "empty")
}

func TestStatusRenderer_RenderJSON_ProducesValidJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewStatusRenderer(&buf, true)

	err := r.RenderJSON(StatusInfo{KBName: "vault", TotalItems: 1})
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"kb_name": "vault"`)
}

func TestFormatTime_RelativeBuckets(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "just now", formatTime(now.Add(-10*time.Second)))
	assert.Equal(t, "1 minute ago", formatTime(now.Add(-90*time.Second)))
	assert.Equal(t, "1 hour ago", formatTime(now.Add(-90*time.Minute)))
	assert.Equal(t, "1 day ago", formatTime(now.Add(-30*time.Hour)))
}

func TestFormatBytes_Units(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{500, "500 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.bytes))
		})
	}
}
