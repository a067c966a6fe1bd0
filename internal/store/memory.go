// internal/store/memory.go
//
// In-memory implementation of the Gateway interface.
// This is a lightweight persistence layer used in tests or when durability
// is not required.
//
// Characteristics:
//   - Stores Progress snapshots keyed by user|event in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - FailReads/FailWrites let tests exercise ambiguous-failure paths.

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cronoindovina/go-server/internal/datekey"
	"github.com/cronoindovina/go-server/internal/game"
)

// ErrStoreDown simulates an unavailable backing store in tests.
var ErrStoreDown = errors.New("store unavailable")

// Memory is a map-based Gateway implementation.
type Memory struct {
	mu   sync.RWMutex
	rows map[string]Progress

	// When true, the corresponding operations return ErrStoreDown.
	FailReads  bool
	FailWrites bool
	// FailLoadOnly breaks LoadProgress but leaves HasCompleted working,
	// which is the positively-confirmable fallback path.
	FailLoadOnly bool
}

func NewMemory() *Memory {
	return &Memory{rows: make(map[string]Progress)}
}

func key(userID, eventID string) string { return userID + "|" + eventID }

func (m *Memory) HasCompleted(ctx context.Context, userID, eventID string) (bool, error) {
	if m.FailReads {
		return false, ErrStoreDown
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.rows[key(userID, eventID)]
	return ok && p.DayGuess != nil, nil
}

func (m *Memory) LoadProgress(ctx context.Context, userID, eventID string) (*Progress, error) {
	if m.FailReads || m.FailLoadOnly {
		return nil, ErrStoreDown
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.rows[key(userID, eventID)]
	if !ok {
		return nil, nil
	}
	cp := p
	cp.YearGuess = copyInt(p.YearGuess)
	cp.MonthGuess = copyInt(p.MonthGuess)
	cp.DayGuess = copyInt(p.DayGuess)
	return &cp, nil
}

func (m *Memory) SaveProgress(ctx context.Context, p Progress) error {
	if m.FailWrites {
		return ErrStoreDown
	}
	if p.PlayedAt.IsZero() {
		p.PlayedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[key(p.UserID, p.EventID)] = p
	return nil
}

func (m *Memory) CumulativeScore(ctx context.Context, userID string) (game.Score, int, error) {
	if m.FailReads {
		return game.Score{}, 0, ErrStoreDown
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total game.Score
	played := 0
	for _, p := range m.rows {
		if p.UserID != userID {
			continue
		}
		total = total.Add(game.Score{
			ExactGuesses: p.ExactGuesses,
			CloseGuesses: p.CloseGuesses,
			TotalPoints:  p.TotalPoints,
		})
		if p.TotalPoints > 0 {
			played++
		}
	}
	return total, played, nil
}

func (m *Memory) LastPlayedDate(ctx context.Context, userID string) (string, error) {
	if m.FailReads {
		return "", ErrStoreDown
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var stamps []time.Time
	for _, p := range m.rows {
		if p.UserID == userID {
			stamps = append(stamps, p.PlayedAt)
		}
	}
	if len(stamps) == 0 {
		return "", nil
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].After(stamps[j]) })
	return datekey.Key(stamps[0]), nil
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
