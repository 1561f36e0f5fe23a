package kbui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProgressTracker_StartsAtScanning(t *testing.T) {
	tracker := newProgressTracker()

	stats := tracker.stats()
	assert.Equal(t, StageScanning, stats.Stage)
	assert.Equal(t, 0, stats.Current)
	assert.Equal(t, 0, stats.Total)
}

func TestProgressTracker_SetStage_ResetsCurrent(t *testing.T) {
	tracker := newProgressTracker()
	tracker.setStage(StageChunking, 100)

	stats := tracker.stats()
	assert.Equal(t, StageChunking, stats.Stage)
	assert.Equal(t, 100, stats.Total)
	assert.Equal(t, 0, stats.Current)
}

func TestProgressTracker_Update_SetsCurrentItem(t *testing.T) {
	tracker := newProgressTracker()
	tracker.setStage(StageChunking, 100)
	tracker.update(50, "item-42")

	stats := tracker.stats()
	assert.Equal(t, 50, stats.Current)
	assert.Equal(t, "item-42", stats.CurrentItem)
}

func TestProgressTracker_Progress_Percentage(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		expected float64
	}{
		{"zero total", 0, 0, 0.0},
		{"zero current", 0, 100, 0.0},
		{"half done", 50, 100, 0.5},
		{"complete", 100, 100, 1.0},
		{"over 100%", 150, 100, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newProgressTracker()
			tracker.setStage(StageScanning, tt.total)
			tracker.update(tt.current, "")

			assert.InDelta(t, tt.expected, tracker.stats().Progress, 0.001)
		})
	}
}

func TestProgressTracker_AddError_CountsErrorsAndWarnings(t *testing.T) {
	tracker := newProgressTracker()
	tracker.addError(ErrorEvent{Item: "a", Err: assertError("boom")})
	tracker.addError(ErrorEvent{Item: "b", Err: assertError("careful"), IsWarn: true})

	stats := tracker.stats()
	assert.Equal(t, 1, stats.ErrorCount)
	assert.Equal(t, 1, stats.WarnCount)
}

func TestSparkline_RenderWidth_PadsWhenEmpty(t *testing.T) {
	s := newSparkline(10)
	out := s.renderWidth(5)
	assert.Len(t, out, 5)
}

func TestSparkline_Add_TracksMax(t *testing.T) {
	s := newSparkline(4)
	s.add(1)
	s.add(5)
	s.add(2)

	assert.Equal(t, float64(5), s.max)
}

type simpleError string

func (e simpleError) Error() string { return string(e) }

func assertError(msg string) error { return simpleError(msg) }
