package kbui

import "strings"

// sparkline renders a text throughput chart using Unicode block characters,
// a ring buffer of recent samples scaled against their own running max.
type sparkline struct {
	samples []float64
	width   int
	head    int
	count   int
	max     float64
}

var sparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// newSparkline creates a sparkline holding the given number of samples.
func newSparkline(width int) *sparkline {
	if width <= 0 {
		width = 60
	}
	return &sparkline{samples: make([]float64, width), width: width}
}

// add records one sample, e.g. items/sec for the current 500ms window.
func (s *sparkline) add(value float64) {
	s.samples[s.head] = value
	s.head = (s.head + 1) % s.width
	s.count++

	if value > s.max {
		s.max = value
	}
	if s.count%s.width == 0 {
		s.recalculateMax()
	}
}

func (s *sparkline) recalculateMax() {
	s.max = 0
	for _, v := range s.samples {
		if v > s.max {
			s.max = v
		}
	}
	if s.max < 1 {
		s.max = 1
	}
}

// render returns the sparkline at its native width.
func (s *sparkline) render() string {
	return s.renderWidth(s.width)
}

// renderWidth returns the sparkline's most recent `width` samples, or all
// of them padded with spaces if fewer than width samples exist yet.
func (s *sparkline) renderWidth(width int) string {
	if width <= 0 {
		width = s.width
	}
	if s.count == 0 {
		return strings.Repeat(" ", width)
	}
	if s.max <= 0 {
		s.recalculateMax()
	}

	numSamples := min(s.count, s.width)
	start := 0
	if s.count >= s.width {
		start = s.head
	}
	skip := 0
	if numSamples > width {
		skip = numSamples - width
	}

	var sb strings.Builder
	sb.Grow(width * 3)
	rendered := 0
	for i := 0; i < s.width && rendered < width; i++ {
		if i < skip {
			continue
		}
		idx := (start + i) % s.width
		value := s.samples[idx]

		if i >= numSamples && s.count < s.width {
			sb.WriteRune(' ')
		} else {
			scaled := value / s.max
			charIdx := int(scaled * float64(len(sparklineChars)-1))
			if charIdx < 0 {
				charIdx = 0
			}
			if charIdx >= len(sparklineChars) {
				charIdx = len(sparklineChars) - 1
			}
			sb.WriteRune(sparklineChars[charIdx])
		}
		rendered++
	}
	for rendered < width {
		sb.WriteRune(' ')
		rendered++
	}
	return sb.String()
}

// clear resets the sparkline to empty, used when a new stage starts.
func (s *sparkline) clear() {
	for i := range s.samples {
		s.samples[i] = 0
	}
	s.head, s.count, s.max = 0, 0, 0
}
