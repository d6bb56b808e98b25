// Package analytics records user-facing events emitted while resolving
// scanned data.
package analytics

import (
	"sync"
	"time"
)

// Well-known event names.
const (
	EventClickedBuyCrypto   = "Clicked Buy Crypto"
	EventPurchasedBuyCrypto = "Purchased Buy Crypto"
)

// Tracker receives analytics events.
type Tracker interface {
	Track(event string, props map[string]string)
	ObserveResolution(kind string, d time.Duration)
}

// NoopTracker drops all events.
type NoopTracker struct{}

func (NoopTracker) Track(string, map[string]string)         {}
func (NoopTracker) ObserveResolution(string, time.Duration) {}

// Event is a tracked event captured by MemoryTracker.
type Event struct {
	Name  string
	Props map[string]string
}

// MemoryTracker keeps events in memory. Safe for concurrent use.
type MemoryTracker struct {
	mu     sync.Mutex
	events []Event
	kinds  []string
}

// Track appends the event.
func (m *MemoryTracker) Track(event string, props map[string]string) {
	cp := make(map[string]string, len(props))
	for k, v := range props {
		cp[k] = v
	}
	m.mu.Lock()
	m.events = append(m.events, Event{Name: event, Props: cp})
	m.mu.Unlock()
}

// ObserveResolution records the kind only.
func (m *MemoryTracker) ObserveResolution(kind string, _ time.Duration) {
	m.mu.Lock()
	m.kinds = append(m.kinds, kind)
	m.mu.Unlock()
}

// Events returns a copy of the tracked events.
func (m *MemoryTracker) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Resolutions returns the observed kinds in order.
func (m *MemoryTracker) Resolutions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.kinds...)
}

var (
	_ Tracker = NoopTracker{}
	_ Tracker = (*MemoryTracker)(nil)
)
