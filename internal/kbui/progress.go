package kbui

import (
	"sync"
	"time"
)

// etaSmoothingFactor weights new ETA samples against the previous smoothed
// value: 0.3 means 30% new + 70% old, damping batch-to-batch variance.
const etaSmoothingFactor = 0.3

// speedSampleInterval is the minimum gap between throughput samples.
const speedSampleInterval = 500 * time.Millisecond

// speedSmoothingFactor weights new speed samples into the rolling average.
const speedSmoothingFactor = 0.2

// SpeedStats summarizes ingest throughput.
type SpeedStats struct {
	Current float64 // items/sec over the last sample window
	Avg     float64 // exponentially smoothed rolling average
	Peak    float64 // maximum observed
}

// ProgressStats is a point-in-time snapshot of tracker state.
type ProgressStats struct {
	Stage      Stage
	Current    int
	Total      int
	Progress   float64
	ETA        time.Duration
	CurrentItem string
	ErrorCount int
	WarnCount  int
	Speed      SpeedStats
}

// progressTracker accumulates ingest progress across stages; safe for
// concurrent use since UpdateProgress/AddError may be called from a
// background ingest goroutine while the TUI reads Stats() on its own tick.
type progressTracker struct {
	mu          sync.RWMutex
	stage       Stage
	current     int
	total       int
	currentItem string
	startTime   time.Time
	stageStart  time.Time
	errors      []ErrorEvent
	warnings    []ErrorEvent

	lastETA time.Duration

	lastCurrent   int
	lastSpeedCalc time.Time
	currentSpeed  float64
	avgSpeed      float64
	peakSpeed     float64
	speedSamples  int
	spark         *sparkline
}

func newProgressTracker() *progressTracker {
	now := time.Now()
	return &progressTracker{
		stage:         StageScanning,
		startTime:     now,
		stageStart:    now,
		lastSpeedCalc: now,
		spark:         newSparkline(60),
	}
}

func (p *progressTracker) setStage(stage Stage, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stage = stage
	p.total = total
	p.current = 0
	p.currentItem = ""
	p.stageStart = time.Now()
	p.lastETA = 0

	p.lastCurrent = 0
	p.lastSpeedCalc = time.Now()
	p.currentSpeed = 0
	p.avgSpeed = 0
	p.peakSpeed = 0
	p.speedSamples = 0
	p.spark.clear()
}

func (p *progressTracker) update(current int, item string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	if item != "" {
		p.currentItem = item
	}

	now := time.Now()
	elapsed := now.Sub(p.lastSpeedCalc)
	if elapsed < speedSampleInterval {
		return
	}

	delta := current - p.lastCurrent
	if delta > 0 {
		speed := float64(delta) / elapsed.Seconds()
		p.currentSpeed = speed

		p.speedSamples++
		if p.speedSamples == 1 {
			p.avgSpeed = speed
		} else {
			p.avgSpeed = speedSmoothingFactor*speed + (1-speedSmoothingFactor)*p.avgSpeed
		}
		if speed > p.peakSpeed {
			p.peakSpeed = speed
		}
		p.spark.add(speed)
	}
	p.lastCurrent = current
	p.lastSpeedCalc = now
}

func (p *progressTracker) addError(event ErrorEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.IsWarn {
		p.warnings = append(p.warnings, event)
	} else {
		p.errors = append(p.errors, event)
	}
}

func (p *progressTracker) elapsed() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return time.Since(p.startTime)
}

func (p *progressTracker) stats() ProgressStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	progress := 0.0
	if p.total > 0 {
		progress = float64(p.current) / float64(p.total)
		if progress > 1.0 {
			progress = 1.0
		}
	}

	return ProgressStats{
		Stage:       p.stage,
		Current:     p.current,
		Total:       p.total,
		Progress:    progress,
		ETA:         p.calculateETA(),
		CurrentItem: p.currentItem,
		ErrorCount:  len(p.errors),
		WarnCount:   len(p.warnings),
		Speed:       SpeedStats{Current: p.currentSpeed, Avg: p.avgSpeed, Peak: p.peakSpeed},
	}
}

// calculateETA must be called with p.mu held; it smooths ETA across calls
// so the estimate doesn't jump around between unevenly sized ingest batches.
func (p *progressTracker) calculateETA() time.Duration {
	if p.current == 0 || p.total == 0 {
		return 0
	}

	elapsed := time.Since(p.stageStart)
	progress := float64(p.current) / float64(p.total)
	if progress <= 0 || progress >= 1.0 {
		return 0
	}

	totalEstimate := time.Duration(float64(elapsed) / progress)
	rawRemaining := totalEstimate - elapsed
	if rawRemaining < 0 {
		return 0
	}

	if p.lastETA == 0 {
		p.lastETA = rawRemaining
		return rawRemaining
	}

	smoothed := time.Duration(
		etaSmoothingFactor*float64(rawRemaining) + (1-etaSmoothingFactor)*float64(p.lastETA),
	)
	p.lastETA = smoothed
	return smoothed
}

func (p *progressTracker) renderSparkline(width int) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.spark == nil {
		return ""
	}
	return p.spark.renderWidth(width)
}
