package app

import (
	"sync"

	"quizgen-service/internal/domain"
)

// Session fans leaderboard snapshots out to live subscribers of one quiz.
type Session struct {
	id          string
	mu          sync.Mutex
	last        domain.Leaderboard
	subscribers map[chan domain.Leaderboard]struct{}
}

// NewSession is exported for infrastructure layers that keep session registries.
func NewSession(id string) *Session {
	return &Session{
		id:          id,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// ID returns the quiz id of the session.
func (s *Session) ID() string {
	return s.id
}

// IsEmpty reports whether nobody is listening.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) == 0
}

// Subscribers returns the number of live listeners.
func (s *Session) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

func (s *Session) subscribe(initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	if !initial.UpdatedAt.Before(s.last.UpdatedAt) {
		s.last = initial
	}
	ch <- s.last
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.subscribers[ch]; ok {
				delete(s.subscribers, ch)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// publish delivers lb to every subscriber. Snapshots older than the last one
// published are ignored so concurrent writers cannot roll the board back.
func (s *Session) publish(lb domain.Leaderboard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lb.UpdatedAt.Before(s.last.UpdatedAt) {
		return
	}
	s.last = lb
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// slow reader: drop its oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
