package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Bus defines what publishers and subscribers need from a broadcast
// transport.
type Bus interface {
	// Publish announces an event to sibling tabs. The publisher's own
	// subscribers do not receive it.
	Publish(ctx context.Context, ev Event) error
	// Subscribe registers a handler for incoming events. Handlers run on the
	// bus's delivery goroutine and must return quickly. The returned stop
	// function removes the handler.
	Subscribe(fn func(Event)) (stop func())
}

// subscribers is a handler registry shared by the bus implementations.
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Event)
}

func (s *subscribers) add(fn func(Event)) (stop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(Event))
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *subscribers) dispatch(ev Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func encodeEvent(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode broadcast event: %w", err)
	}
	return data, nil
}

func decodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode broadcast event: %w", err)
	}
	return ev, nil
}
