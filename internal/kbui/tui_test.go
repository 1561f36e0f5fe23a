package kbui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration_Buckets(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 30*time.Second, "2m 30s"},
		{90 * time.Minute, "1h 30m"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.d))
		})
	}
}

func TestTruncateLabel_ShortLabelUnchanged(t *testing.T) {
	assert.Equal(t, "short.md", truncateLabel("short.md", 20))
}

func TestTruncateLabel_LongLabelTruncatedWithEllipsis(t *testing.T) {
	out := truncateLabel("a-very-long-item-name-that-overflows.md", 10)
	assert.Len(t, out, 10)
	assert.Contains(t, out, "...")
}

func TestTruncateLabel_EmptyLabel(t *testing.T) {
	assert.Equal(t, "", truncateLabel("", 10))
}

func TestNewTUIRenderer_RejectsNonTTYOutput(t *testing.T) {
	cfg := NewConfig(nil)
	r, err := NewTUIRenderer(cfg)
	assert.Error(t, err)
	assert.Nil(t, r)
}
