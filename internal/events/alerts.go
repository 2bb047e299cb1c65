// Package events fans operator alerts out to subscribers.
package events

import (
	"sync"
	"time"
)

// AlertKind what the alert is about.
type AlertKind string

const (
	// AlertRejection the venue rejected an auth, subscription or trading request.
	AlertRejection AlertKind = "rejection"
	// AlertOrderRejected the venue reported one of our orders as rejected.
	AlertOrderRejected AlertKind = "order_rejected"
)

// Alert operator-facing event.
type Alert struct {
	Time    time.Time `json:"ts"`
	Kind    AlertKind `json:"kind"`
	Channel string    `json:"channel"`
	Text    string    `json:"text"`
	OrderID string    `json:"order_id,omitempty"`
}

// Broadcaster fans out alerts to all subscribers via buffered channels.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[chan Alert]struct{}
	buffer int
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer < 1 {
		buffer = 64
	}
	return &Broadcaster{
		subs:   make(map[chan Alert]struct{}),
		buffer: buffer,
	}
}

// Publish sends the alert to all subscribers, dropping it for a reader that is slow.
func (b *Broadcaster) Publish(a Alert) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- a:
		default:
		}
	}
}

// Subscribe returns a channel that receives alerts until Unsubscribe is called.
func (b *Broadcaster) Subscribe() chan Alert {
	ch := make(chan Alert, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *Broadcaster) Unsubscribe(ch chan Alert) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
