package events

import (
	"encoding/json"
	"sync"
)

// Event is a change notification: the table that changed and the action
// performed. Clients reload the affected list; no incremental patching.
type Event struct {
	Table  string `json:"table"`
	Action string `json:"action"` // "insert", "update" or "delete"
}

// JSON renders the event for the SSE data field.
func (e Event) JSON() string {
	b, err := json.Marshal(e)
	if err != nil {
		return `{"table":"unknown","action":"update"}`
	}
	return string(b)
}

// Broadcaster fans change events out to per-user SSE subscriber channels.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[string]map[chan string]struct{} // user id -> subscriber channels
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]map[chan string]struct{}),
	}
}

// Subscribe registers a channel to receive events addressed to userID.
func (b *Broadcaster) Subscribe(userID string) chan string {
	ch := make(chan string, 8)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clients[userID] == nil {
		b.clients[userID] = make(map[chan string]struct{})
	}
	b.clients[userID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a previously subscribed channel.
func (b *Broadcaster) Unsubscribe(userID string, ch chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.clients[userID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(b.clients, userID)
	}
}

// Publish delivers an event to every subscriber of the given users.
// A subscriber whose buffer is full has stopped draining its stream; it is
// dropped on the spot so a stuck client never stalls other publishers.
func (b *Broadcaster) Publish(event Event, userIDs ...string) {
	message := event.JSON()
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, userID := range userIDs {
		for ch := range b.clients[userID] {
			select {
			case ch <- message:
			default:
				delete(b.clients[userID], ch)
				close(ch)
			}
		}
		if len(b.clients[userID]) == 0 {
			delete(b.clients, userID)
		}
	}
}
