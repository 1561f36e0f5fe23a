package kbui

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_String(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageScanning, "Scanning"},
		{StageChunking, "Chunking"},
		{StageIndexing, "Indexing"},
		{StageComplete, "Complete"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stage.String())
		})
	}
}

func TestStage_Icon(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageScanning, "SCAN"},
		{StageChunking, "CHUNK"},
		{StageIndexing, "INDEX"},
		{StageComplete, "DONE"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stage.Icon())
		})
	}
}

func TestIsTTY_WithBuffer_ReturnsFalse(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTTY(&buf))
}

func TestIsTTY_WithNil_ReturnsFalse(t *testing.T) {
	assert.False(t, IsTTY(nil))
}

func TestDetectCI_HonorsCIEnvVar(t *testing.T) {
	old, had := os.LookupEnv("CI")
	t.Cleanup(func() {
		if had {
			os.Setenv("CI", old)
		} else {
			os.Unsetenv("CI")
		}
	})

	os.Unsetenv("CI")
	assert.False(t, DetectCI())

	os.Setenv("CI", "true")
	assert.True(t, DetectCI())
}

func TestNewRenderer_NonTTYReturnsPlain(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewConfig(&buf)
	r := NewRenderer(cfg)

	_, ok := r.(*PlainRenderer)
	assert.True(t, ok, "expected PlainRenderer for non-TTY output")
}

func TestNewRenderer_ForcePlainReturnsPlain(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewConfig(&buf, WithForcePlain(true))
	r := NewRenderer(cfg)

	_, ok := r.(*PlainRenderer)
	assert.True(t, ok)
}
