// Package event provides a simple synchronous/async event dispatcher.
//
// MapStack uses it to broadcast cross-cutting signals, most importantly
// "auth.expired", fired by the backend client whenever a response carries an
// invalid-token error, so every view reacts with the same forced logout.
package event

import (
	"sync"
)

// Names of the events the application fires.
const (
	AuthExpired      = "auth.expired"      // payload: error message string
	CatalogRefreshed = "catalog.refreshed" // payload: product count int
	TicketDeducted   = "ticket.deducted"   // payload: ticket id string
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
)

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

// Fire dispatches an event synchronously to all registered listeners.
func Fire(event string, payload interface{}) {
	mu.RLock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	mu.RUnlock()

	for _, h := range hs {
		h(payload)
	}
}

// FireAsync dispatches the event to all listeners concurrently.
// It returns immediately without waiting for handlers to complete.
func FireAsync(event string, payload interface{}) {
	mu.RLock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	mu.RUnlock()

	for _, h := range hs {
		go h(payload)
	}
}

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
