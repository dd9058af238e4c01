package RateLimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

type window struct {
	hits  int
	endAt time.Time
}

// MemoryCounter keeps counters in process memory. It is enough for a single
// instance deployment.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryCounter creates an empty in-process counter
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (m *MemoryCounter) Increment(_ context.Context, key string, d time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.endAt) {
		w = &window{endAt: now.Add(d)}
		m.windows[strings.Clone(key)] = w
	}
	w.hits++
	return w.hits, nil
}

func (m *MemoryCounter) Sweep(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var removed int64
	for key, w := range m.windows {
		if !now.Before(w.endAt) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tracked keys.
func (m *MemoryCounter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
