// Package notify provides MapStack's transient user notification center.
//
// Every operation outcome, success confirmations and caught errors alike,
// becomes a short-lived message that auto-dismisses after a fixed TTL,
// mirroring a UI toast. Subscribers (the CLI renderer, tests) receive each
// message as it is shown:
//
//	notify.Subscribe(func(msg string) { fmt.Println("•", msg) })
//	notify.Show("Product added")
//	notify.Showf("Not enough stock for %s. Available: %d", p.Title, avail)
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/mapstack/pkg/logger"
)

// TTL is how long a message stays current before auto-dismissing.
const TTL = 3 * time.Second

// Subscriber receives every shown message.
type Subscriber func(message string)

var (
	mu          sync.Mutex
	current     string
	dismiss     *time.Timer
	subscribers []Subscriber
)

// Subscribe registers a subscriber for all future messages.
func Subscribe(fn Subscriber) {
	mu.Lock()
	defer mu.Unlock()
	subscribers = append(subscribers, fn)
}

// Show displays a transient message, replacing any current one. The message
// auto-dismisses after TTL.
func Show(message string) {
	mu.Lock()
	current = message
	if dismiss != nil {
		dismiss.Stop()
	}
	dismiss = time.AfterFunc(TTL, clear)
	subs := make([]Subscriber, len(subscribers))
	copy(subs, subscribers)
	mu.Unlock()

	logger.Debug("notify", "message", message)
	for _, fn := range subs {
		fn(message)
	}
}

// Showf formats and displays a transient message.
func Showf(format string, args ...any) {
	Show(fmt.Sprintf(format, args...))
}

// Current returns the message being shown, or "" after dismissal.
func Current() string {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Reset clears the current message and all subscribers (useful in tests).
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	if dismiss != nil {
		dismiss.Stop()
		dismiss = nil
	}
	current = ""
	subscribers = nil
}

func clear() {
	mu.Lock()
	defer mu.Unlock()
	current = ""
}
