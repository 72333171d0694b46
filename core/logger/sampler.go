package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler admits the first n events out of every window of d, keeping
// high-volume debug output (browsing callbacks, send traces) affordable.
type ratioSampler struct {
	mu     sync.Mutex
	admit  int
	window int
	seen   int
}

func newRatioSampler(admit, window int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(admit, window)
	return s
}

// Set reconfigures the ratio; non-positive values disable sampling entirely.
func (s *ratioSampler) Set(admit, window int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if admit <= 0 || window <= 0 {
		s.admit, s.window, s.seen = 0, 0, 0
		return
	}
	if admit > window {
		admit = window
	}
	s.admit = admit
	s.window = window
	s.seen = 0
}

// Allow reports whether this event falls inside the admitted slice of the
// current window. With sampling disabled every event passes.
func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window <= 0 || s.admit <= 0 {
		return true
	}
	s.seen++
	if s.seen > s.window {
		s.seen = 1
	}
	return s.seen <= s.admit
}

// parseRatio understands "n/d" and the shorthand "d" (meaning 1/d).
// Zero pairs mean "no sampling configured".
func parseRatio(raw string) (int, int) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0
	}
	if num, den, found := strings.Cut(raw, "/"); found {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 == nil && err2 == nil {
			return n, d
		}
		return 0, 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, 0
	}
	return 1, v
}
