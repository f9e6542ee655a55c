package pipeline

import (
	"sync"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/viewport"
)

// EventType names an event emitted to the host UI.
type EventType string

const (
	EventNodeTapped          EventType = "node-tapped"
	EventLinkTapped          EventType = "link-tapped"
	EventFullscreenRequested EventType = "fullscreen-requested"
	EventViewResetRequested  EventType = "view-reset-requested"
	EventSettingsChanged     EventType = "settings-changed"
	EventCenterNodeChanged   EventType = "center-node-changed"
)

// Event is one notification for the host. Only the fields relevant to Type
// are set.
type Event struct {
	Type EventType `json:"type"`

	Node *graph.Node `json:"node,omitempty"`
	Link *graph.Link `json:"link,omitempty"`
	// Point is the canvas-space position of a tap.
	Point viewport.Point `json:"point"`

	Settings     Settings `json:"settings"`
	CenterNodeID string   `json:"center_node_id,omitempty"`
}

// Handler receives events.
type Handler func(Event)

// Bus delivers events synchronously to its subscribers, in subscription
// order. Handlers may subscribe or unsubscribe from inside a handler; the
// change applies from the next Emit.
type Bus struct {
	mu       sync.Mutex
	next     int
	handlers []subscription
}

type subscription struct {
	id int
	fn Handler
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.handlers = append(b.handlers, subscription{id: id, fn: h})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.handlers {
			if s.id == id {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Emit calls every subscribed handler with ev.
func (b *Bus) Emit(ev Event) {
	b.mu.Lock()
	handlers := make([]Handler, len(b.handlers))
	for i, s := range b.handlers {
		handlers[i] = s.fn
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
