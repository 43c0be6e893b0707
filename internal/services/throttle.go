package services

import (
	"sync"
	"time"
)

// RequestThrottle is a fixed-window request counter keyed by client id. An
// entry is created on a client's first request and reset in place once its
// window elapses; entries are never removed, which is accepted for the
// process lifetime. Around a window boundary up to 2x max requests can be
// admitted; that approximation is deliberate.
type RequestThrottle struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string]*throttleEntry
	nowFn   func() time.Time
}

type throttleEntry struct {
	count   int
	resetAt time.Time
}

func NewRequestThrottle(window time.Duration, max int) *RequestThrottle {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 8
	}
	return &RequestThrottle{
		window:  window,
		max:     max,
		entries: make(map[string]*throttleEntry),
		nowFn:   time.Now,
	}
}

// Allow records one request for the client and reports whether it is within
// the window budget.
func (t *RequestThrottle) Allow(clientID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.nowFn()
	e, ok := t.entries[clientID]
	if !ok || now.After(e.resetAt) {
		t.entries[clientID] = &throttleEntry{count: 1, resetAt: now.Add(t.window)}
		return true
	}
	if e.count >= t.max {
		return false
	}
	e.count++
	return true
}
