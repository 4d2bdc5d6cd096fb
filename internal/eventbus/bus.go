package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type EventType string

const (
	DocumentSorted  EventType = "document.sorted"
	DocumentChanged EventType = "document.changed"
	TaskAdded       EventType = "task.added"
	TaskToggled     EventType = "task.toggled"
	PriorityChanged EventType = "task.priority_changed"
)

// Event describes a change to a todo document. Line is the 0-based line
// the change applied to, or -1 for whole-document events.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Document  string    `json:"document"`
	Line      int       `json:"line"`
	Task      string    `json:"task,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Bus fans events out to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan *Event
}

func New() *Bus {
	return &Bus{
		subscribers: make(map[string]chan *Event),
	}
}

func (b *Bus) Subscribe(bufSize int) (string, <-chan *Event) {
	id := ulid.Make().String()
	ch := make(chan *Event, bufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishNew stamps a new event with an ID and the current time and
// publishes it.
func (b *Bus) PublishNew(typ EventType, document string, line int, task string) *Event {
	event := &Event{
		ID:        ulid.Make().String(),
		Type:      typ,
		Document:  document,
		Line:      line,
		Task:      task,
		CreatedAt: time.Now(),
	}
	b.Publish(event)
	return event
}

// Listen calls fn for every event published until ctx is done. Events are
// handled one at a time in publish order.
func (b *Bus) Listen(ctx context.Context, bufSize int, fn func(context.Context, *Event)) error {
	id, events := b.Subscribe(bufSize)
	defer b.Unsubscribe(id)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			fn(ctx, event)
		}
	}
}
