package candle

import (
	"github.com/rxtech-lab/athena-backtest/internal/types"
)

// Session is one calendar day of candles in chronological order.
type Session struct {
	Date    string
	Candles []types.Candle
}

// Sessions is an ordered date to session association.
// Iteration follows the order in which dates were first seen.
type Sessions struct {
	order []string
	index map[string]*Session
}

func NewSessions() *Sessions {
	return &Sessions{
		order: nil,
		index: make(map[string]*Session),
	}
}

// Add appends the candle to the session of its date, creating the session on first sight.
func (s *Sessions) Add(candle types.Candle) {
	key := candle.SessionKey()

	session, ok := s.index[key]
	if !ok {
		session = &Session{Date: key}
		s.index[key] = session
		s.order = append(s.order, key)
	}

	session.Candles = append(session.Candles, candle)
}

func (s *Sessions) Len() int {
	return len(s.order)
}

// Keys returns the session dates in insertion order.
func (s *Sessions) Keys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)

	return keys
}

func (s *Sessions) Get(date string) (*Session, bool) {
	session, ok := s.index[date]

	return session, ok
}

// All returns the sessions in insertion order.
func (s *Sessions) All() []*Session {
	all := make([]*Session, 0, len(s.order))
	for _, key := range s.order {
		all = append(all, s.index[key])
	}

	return all
}

// Filter returns new sessions holding only the candles keep accepts.
// Sessions left without candles are dropped.
func (s *Sessions) Filter(keep func(types.Candle) bool) *Sessions {
	filtered := NewSessions()

	for _, session := range s.All() {
		for _, candle := range session.Candles {
			if keep(candle) {
				filtered.Add(candle)
			}
		}
	}

	return filtered
}

// Flatten concatenates all sessions back into one chronological slice.
func (s *Sessions) Flatten() []types.Candle {
	total := 0
	for _, session := range s.index {
		total += len(session.Candles)
	}

	candles := make([]types.Candle, 0, total)
	for _, session := range s.All() {
		candles = append(candles, session.Candles...)
	}

	return candles
}

// SplitSessions partitions candles by calendar date, preserving encounter order.
func SplitSessions(candles []types.Candle) *Sessions {
	sessions := NewSessions()
	for _, candle := range candles {
		sessions.Add(candle)
	}

	return sessions
}
