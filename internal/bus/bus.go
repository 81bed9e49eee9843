// Package bus provides the typed, synchronous change notifications exchanged
// between assessment rows and the completion aggregator.
//
// A Bus is owned by one aggregator and shared by its rows. Publish runs every
// handler to completion, in subscription order, before returning.
package bus

import (
	"sync"

	"github.com/harrison/bulkcomplete/internal/models"
)

// AttributeModified is published after an attribute of a row was edited and
// the row's readiness recomputed.
type AttributeModified struct {
	AssessmentID   int64
	Slug           string
	Ready          bool
	AttributeIndex int // position of Attribute within Row.Attributes
	Row            models.Row
	Attribute      models.Attribute
}

// ReadyToComplete is published when a row is ready on its first load.
type ReadyToComplete struct {
	AssessmentID int64
	Slug         string
}

// RequiredInfoSave carries edited supplemental info for one attribute.
// Only the row owning AttributeID applies it.
type RequiredInfoSave struct {
	AttributeID int64
	Changes     models.Attachments
}

// Topic is a list of handlers for one event type.
type Topic[T any] struct {
	mu       sync.Mutex
	nextID   int
	handlers []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function removing it again.
// The returned function is safe to call more than once.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	id := t.nextID
	t.handlers = append(t.handlers, subscription[T]{id: id, fn: fn})

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, s := range t.handlers {
			if s.id == id {
				t.handlers = append(t.handlers[:i:i], t.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every handler registered at the time of the call.
// Handlers may subscribe or unsubscribe while being dispatched.
func (t *Topic[T]) Publish(ev T) {
	t.mu.Lock()
	handlers := make([]subscription[T], len(t.handlers))
	copy(handlers, t.handlers)
	t.mu.Unlock()

	for _, s := range handlers {
		s.fn(ev)
	}
}

// Len returns the number of registered handlers.
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handlers)
}

// Bus groups the three topics of a bulk-complete session.
type Bus struct {
	AttributeModified Topic[AttributeModified]
	ReadyToComplete   Topic[ReadyToComplete]
	RequiredInfoSave  Topic[RequiredInfoSave]
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{}
}
