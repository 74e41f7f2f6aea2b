// Package live fans cart changes out to connected storefront tabs, over
// WebSocket and over SSE. A single event-bus listener feeds both paths.
package live

import (
	"encoding/json"
	"sync"

	"github.com/emberwick/storefront/app/services"
	"github.com/emberwick/storefront/pkg/event"
	"github.com/emberwick/storefront/pkg/workerpool"
	"github.com/emberwick/storefront/pkg/ws"
)

// CartHub broadcasts cart-change frames to every WebSocket client.
// Clients filter by the owner key in the frame.
var CartHub = ws.NewHub()

var (
	mu   sync.Mutex
	subs = map[chan services.CartChanged]struct{}{}
	once sync.Once

	// Fan-out runs off the request goroutine; cart mutations must not
	// wait on slow listeners.
	pool = workerpool.New(4)
)

// Start runs the hub and hooks the feed into the event bus. Safe to call
// more than once.
func Start() {
	once.Do(func() {
		go CartHub.Run()
		event.Listen(services.EventCartChanged, onCartChanged)
	})
}

// Subscribe returns a channel receiving every cart change. The caller must
// Unsubscribe when done; slow subscribers drop frames rather than block
// the bus.
func Subscribe() chan services.CartChanged {
	ch := make(chan services.CartChanged, 16)
	mu.Lock()
	subs[ch] = struct{}{}
	mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func Unsubscribe(ch chan services.CartChanged) {
	mu.Lock()
	if _, ok := subs[ch]; ok {
		delete(subs, ch)
		close(ch)
	}
	mu.Unlock()
}

func onCartChanged(payload interface{}) {
	change, ok := payload.(services.CartChanged)
	if !ok {
		return
	}
	if err := pool.Submit(func() { fanOut(change) }); err != nil {
		// Pool saturated; a dropped badge update is harmless.
		return
	}
}

func fanOut(change services.CartChanged) {
	if raw, err := json.Marshal(change); err == nil {
		select {
		case CartHub.Broadcast <- raw:
		default:
		}
	}

	mu.Lock()
	for ch := range subs {
		select {
		case ch <- change:
		default:
		}
	}
	mu.Unlock()
}
