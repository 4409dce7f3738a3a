// Package broadcast fans values out to any number of observers.
//
// Publish never blocks. When an observer's buffer is full its oldest pending
// value is dropped, so a slow observer always catches up to the latest value.
package broadcast

import "sync"

// DefaultBuffer is the per-subscriber buffer used when Subscribe gets n <= 0.
const DefaultBuffer = 8

type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	nextID int
	closed bool
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[int]chan T)}
}

// Subscribe registers an observer with a buffer of n values. The returned
// cancel func unregisters it and closes the channel; it is safe to call more
// than once.
func (h *Hub[T]) Subscribe(n int) (<-chan T, func()) {
	if n <= 0 {
		n = DefaultBuffer
	}
	ch := make(chan T, n)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers v to every observer.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		for {
			select {
			case ch <- v:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// Len returns the number of current observers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close unregisters and closes every observer. Later Subscribe calls get a
// closed channel.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
