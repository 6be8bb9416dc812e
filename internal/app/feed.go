package app

import (
	"sync"

	"quiz-authoring-service/internal/domain"
)

const feedBuffer = 8

// ChangeFeed fans quiz events out to in-process subscribers.
type ChangeFeed struct {
	mu          sync.Mutex
	subscribers map[chan domain.QuizEvent]struct{}
}

func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{subscribers: make(map[chan domain.QuizEvent]struct{})}
}

// Subscribe returns a channel of events published after the call.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *ChangeFeed) Subscribe() (<-chan domain.QuizEvent, func()) {
	ch := make(chan domain.QuizEvent, feedBuffer)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking.
// A subscriber whose buffer is full loses its oldest pending event.
func (f *ChangeFeed) Publish(event domain.QuizEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

// Subscribers reports how many subscribers are attached.
func (f *ChangeFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
