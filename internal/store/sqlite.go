// internal/store/sqlite.go
//
// SQLite-backed Gateway over the user_scores table.
// Schema: three nullable guesses, three nullable accuracy tags, running
// totals, played_at timestamp, UNIQUE(user_id, event_id).

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cronoindovina/go-server/internal/datekey"
	"github.com/cronoindovina/go-server/internal/game"
)

// SQLite implements Gateway on a *sql.DB.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

func (s *SQLite) HasCompleted(ctx context.Context, userID, eventID string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM user_scores
		WHERE user_id=? AND event_id=? AND day_guess IS NOT NULL`,
		userID, eventID,
	).Scan(&cnt)
	if err != nil {
		return false, fmt.Errorf("has completed: %w", err)
	}
	return cnt > 0, nil
}

func (s *SQLite) LoadProgress(ctx context.Context, userID, eventID string) (*Progress, error) {
	var (
		p           Progress
		yg, mg, dg  sql.NullInt64
		ya, ma, da  sql.NullString
		playedAtStr string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, event_id, year_guess, month_guess, day_guess,
		       year_accuracy, month_accuracy, day_accuracy,
		       total_points, exact_guesses, close_guesses, played_at
		FROM user_scores WHERE user_id=? AND event_id=?`,
		userID, eventID,
	).Scan(&p.UserID, &p.EventID, &yg, &mg, &dg, &ya, &ma, &da,
		&p.TotalPoints, &p.ExactGuesses, &p.CloseGuesses, &playedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	p.YearGuess, p.MonthGuess, p.DayGuess = fromNull(yg), fromNull(mg), fromNull(dg)
	p.YearAccuracy = game.Verdict(ya.String)
	p.MonthAccuracy = game.Verdict(ma.String)
	p.DayAccuracy = game.Verdict(da.String)
	if t, perr := time.Parse(time.RFC3339, playedAtStr); perr == nil {
		p.PlayedAt = t
	}
	return &p, nil
}

func (s *SQLite) SaveProgress(ctx context.Context, p Progress) error {
	playedAt := p.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_scores
			(user_id, event_id, year_guess, month_guess, day_guess,
			 year_accuracy, month_accuracy, day_accuracy,
			 total_points, exact_guesses, close_guesses, played_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(user_id, event_id) DO UPDATE SET
			year_guess=excluded.year_guess,
			month_guess=excluded.month_guess,
			day_guess=excluded.day_guess,
			year_accuracy=excluded.year_accuracy,
			month_accuracy=excluded.month_accuracy,
			day_accuracy=excluded.day_accuracy,
			total_points=excluded.total_points,
			exact_guesses=excluded.exact_guesses,
			close_guesses=excluded.close_guesses,
			played_at=excluded.played_at`,
		p.UserID, p.EventID, toNull(p.YearGuess), toNull(p.MonthGuess), toNull(p.DayGuess),
		verdictNull(p.YearAccuracy), verdictNull(p.MonthAccuracy), verdictNull(p.DayAccuracy),
		p.TotalPoints, p.ExactGuesses, p.CloseGuesses, playedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (s *SQLite) CumulativeScore(ctx context.Context, userID string) (game.Score, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, total_points, exact_guesses, close_guesses
		FROM user_scores WHERE user_id=?`, userID,
	)
	if err != nil {
		return game.Score{}, 0, fmt.Errorf("cumulative score: %w", err)
	}
	defer rows.Close()

	var total game.Score
	played := map[string]struct{}{}
	for rows.Next() {
		var (
			eventID string
			row     game.Score
		)
		if err := rows.Scan(&eventID, &row.TotalPoints, &row.ExactGuesses, &row.CloseGuesses); err != nil {
			return game.Score{}, 0, fmt.Errorf("cumulative score: %w", err)
		}
		total = total.Add(row)
		if row.TotalPoints > 0 {
			played[eventID] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return game.Score{}, 0, fmt.Errorf("cumulative score: %w", err)
	}
	return total, len(played), nil
}

func (s *SQLite) LastPlayedDate(ctx context.Context, userID string) (string, error) {
	var playedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT played_at FROM user_scores
		WHERE user_id=?
		ORDER BY played_at DESC LIMIT 1`, userID,
	).Scan(&playedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last played date: %w", err)
	}
	t, perr := time.Parse(time.RFC3339, playedAt)
	if perr != nil {
		return "", fmt.Errorf("last played date: bad timestamp %q: %w", playedAt, perr)
	}
	return datekey.Key(t), nil
}

// LeaderboardRow is one entry of the per-day standings.
type LeaderboardRow struct {
	UserID       string  `json:"userId"`
	TotalPoints  float64 `json:"totalPoints"`
	ExactGuesses int     `json:"exactGuesses"`
	CloseGuesses int     `json:"closeGuesses"`
}

// Leaderboard returns the top completed sessions played on the given day,
// best points first, earlier finishers breaking ties.
func (s *SQLite) Leaderboard(ctx context.Context, day string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, total_points, exact_guesses, close_guesses
		FROM user_scores
		WHERE substr(played_at, 1, 10)=? AND day_guess IS NOT NULL
		ORDER BY total_points DESC, played_at ASC
		LIMIT ?`, day, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]LeaderboardRow, 0, limit)
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.UserID, &r.TotalPoints, &r.ExactGuesses, &r.CloseGuesses); err != nil {
			return nil, fmt.Errorf("leaderboard: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnonScores transfers a guest's score rows to a user account after
// signup/login. Rows that would collide with an existing (user, event) row
// are left behind.
func (s *SQLite) ClaimAnonScores(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE OR IGNORE user_scores SET user_id=? WHERE user_id=?`, userID, anonID,
	)
	return err
}

func toNull(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func fromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func verdictNull(v game.Verdict) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(v), Valid: true}
}
