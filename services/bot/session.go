package bot

import "sync"

// session state of the multi-turn exchanges. Held in memory only: a
// restart drops every pending exchange back to idle, which is the
// documented behavior.
type sessionState int

const (
	stateIdle sessionState = iota
	stateAwaitingSubscriptionName
	stateAwaitingHistoryWindow
)

type sessions struct {
	mu sync.Mutex
	m  map[int64]sessionState
}

func newSessions() *sessions {
	return &sessions{m: map[int64]sessionState{}}
}

func (s *sessions) get(userID int64) sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[userID]
}

func (s *sessions) set(userID int64, state sessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == stateIdle {
		delete(s.m, userID)
		return
	}
	s.m[userID] = state
}
