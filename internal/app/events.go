package app

import "sync"

// Event notifies subscribers that cached content changed. Clients use it to
// refresh the listing without polling.
type Event struct {
	Type string `json:"type"` // "invalidated" or "cleared"
	ID   string `json:"id,omitempty"`
}

// events fans cache-invalidation notifications out to subscribers. Sends
// never block: when a subscriber's buffer is full the oldest pending event is
// dropped so a slow client cannot stall the watcher.
type events struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

func newEvents() *events {
	return &events{subscribers: make(map[chan Event]struct{})}
}

func (e *events) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	e.mu.Lock()
	e.subscribers[ch] = struct{}{}
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		if _, ok := e.subscribers[ch]; ok {
			delete(e.subscribers, ch)
			close(ch)
		}
		e.mu.Unlock()
	}
	return ch, cancel
}

func (e *events) publish(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for ch := range e.subscribers {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
