// internal/store/store.go
//
// Persistence contracts for daily session progress.
//
// Progress is keyed by (user, event) with upsert semantics. Reads must
// distinguish definite absence (nil, nil) from failure (err != nil): a
// failed read during reconciliation is ambiguous and must never be treated
// as "no progress", or a completed day could be replayed and double-counted.

package store

import (
	"context"
	"time"

	"github.com/cronoindovina/go-server/internal/game"
)

// Progress is one persisted session snapshot: the guesses made so far,
// their verdicts, and the session's running totals at time of write.
type Progress struct {
	UserID  string
	EventID string

	YearGuess  *int
	MonthGuess *int
	DayGuess   *int

	YearAccuracy  game.Verdict
	MonthAccuracy game.Verdict
	DayAccuracy   game.Verdict

	TotalPoints  float64
	ExactGuesses int
	CloseGuesses int

	PlayedAt time.Time
}

// Completed reports whether the snapshot represents a finished session.
// A session counts as played only once the day guess landed.
func (p *Progress) Completed() bool { return p != nil && p.DayGuess != nil }

// Gateway is the durable store for session progress and cumulative scores.
type Gateway interface {
	// HasCompleted reports whether the user finished the given event.
	HasCompleted(ctx context.Context, userID, eventID string) (bool, error)

	// LoadProgress returns the stored snapshot, or (nil, nil) when the user
	// has no record for the event.
	LoadProgress(ctx context.Context, userID, eventID string) (*Progress, error)

	// SaveProgress upserts the snapshot keyed by (user, event).
	SaveProgress(ctx context.Context, p Progress) error

	// CumulativeScore sums all of the user's session rows. gamesPlayed is
	// the count of distinct events with points scored.
	CumulativeScore(ctx context.Context, userID string) (game.Score, int, error)

	// LastPlayedDate returns the newest played_at as YYYY-MM-DD, or ""
	// when the user has never played.
	LastPlayedDate(ctx context.Context, userID string) (string, error)
}
