package kbui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlainRenderer_UpdateProgress_WithTotal(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))
	assert.NoError(t, r.Start(context.Background()))

	r.UpdateProgress(ProgressEvent{Stage: StageChunking, Current: 3, Total: 10, Item: "notes.md"})

	out := buf.String()
	assert.Contains(t, out, "3/10")
	assert.Contains(t, out, "notes.md")
}

func TestPlainRenderer_UpdateProgress_WithoutTotal(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))

	r.UpdateProgress(ProgressEvent{Stage: StageScanning, Message: "scanning vault"})

	assert.Contains(t, buf.String(), "scanning vault")
}

func TestPlainRenderer_AddError_FormatsWarnAndError(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))

	r.AddError(ErrorEvent{Item: "a.md", Err: errors.New("boom")})
	r.AddError(ErrorEvent{Item: "b.md", Err: errors.New("careful"), IsWarn: true})

	out := buf.String()
	assert.Contains(t, out, "ERROR: a.md: boom")
	assert.Contains(t, out, "WARN: b.md: careful")
}

func TestPlainRenderer_Complete_IncludesCountsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))

	r.Complete(CompletionStats{
		Items: 5, Chunks: 20, Duration: 2 * time.Second, Errors: 1, Warnings: 2,
	})

	out := buf.String()
	assert.True(t, strings.Contains(out, "5 items"))
	assert.True(t, strings.Contains(out, "20 chunks"))
	assert.True(t, strings.Contains(out, "1 errors, 2 warnings"))
}

func TestPlainRenderer_Complete_WithStageBreakdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))

	r.Complete(CompletionStats{
		Items: 1, Chunks: 1, Duration: time.Second,
		Stages: StageTimings{Scan: time.Second, Chunk: time.Second, Index: time.Second},
	})

	assert.Contains(t, buf.String(), "Stage breakdown:")
}

func TestPlainRenderer_Stop_ReturnsNil(t *testing.T) {
	r := NewPlainRenderer(NewConfig(&bytes.Buffer{}))
	assert.NoError(t, r.Stop())
}
