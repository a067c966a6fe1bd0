package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cronoindovina/go-server/internal/game"
)

// testSchema mirrors sql/003_user_scores.sql.
const testSchema = `
CREATE TABLE user_scores (
    user_id        TEXT NOT NULL,
    event_id       TEXT NOT NULL,
    year_guess     INTEGER,
    month_guess    INTEGER,
    day_guess      INTEGER,
    year_accuracy  TEXT,
    month_accuracy TEXT,
    day_accuracy   TEXT,
    total_points   REAL NOT NULL DEFAULT 0,
    exact_guesses  INTEGER NOT NULL DEFAULT 0,
    close_guesses  INTEGER NOT NULL DEFAULT 0,
    played_at      TEXT NOT NULL,
    UNIQUE (user_id, event_id)
);`

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func intp(v int) *int { return &v }

func TestSaveProgressUpserts(t *testing.T) {
	ctx := context.Background()
	s := NewSQLite(testDB(t))

	p := Progress{
		UserID:       "alice",
		EventID:      "moon",
		YearGuess:    intp(1969),
		YearAccuracy: game.VerdictExact,
		TotalPoints:  1,
		ExactGuesses: 1,
		PlayedAt:     time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveProgress(ctx, p))

	// Second write for the same (user, event) updates in place.
	p.MonthGuess = intp(6)
	p.MonthAccuracy = game.VerdictClose
	p.TotalPoints = 1.5
	p.CloseGuesses = 1
	require.NoError(t, s.SaveProgress(ctx, p))

	got, err := s.LoadProgress(ctx, "alice", "moon")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1969, *got.YearGuess)
	assert.Equal(t, 6, *got.MonthGuess)
	assert.Nil(t, got.DayGuess)
	assert.Equal(t, game.VerdictExact, got.YearAccuracy)
	assert.Equal(t, game.VerdictClose, got.MonthAccuracy)
	assert.Equal(t, game.Verdict(""), got.DayAccuracy)
	assert.InDelta(t, 1.5, got.TotalPoints, 1e-9)

	var rows int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(1) FROM user_scores`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestLoadProgressAbsentIsNilNil(t *testing.T) {
	s := NewSQLite(testDB(t))
	got, err := s.LoadProgress(context.Background(), "nobody", "moon")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHasCompletedRequiresDayGuess(t *testing.T) {
	ctx := context.Background()
	s := NewSQLite(testDB(t))

	p := Progress{
		UserID:    "alice",
		EventID:   "moon",
		YearGuess: intp(1969),
		PlayedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.SaveProgress(ctx, p))

	done, err := s.HasCompleted(ctx, "alice", "moon")
	require.NoError(t, err)
	assert.False(t, done, "partial progress is not completion")

	p.MonthGuess = intp(7)
	p.DayGuess = intp(20)
	require.NoError(t, s.SaveProgress(ctx, p))

	done, err = s.HasCompleted(ctx, "alice", "moon")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestCumulativeScoreSumsDistinctEvents(t *testing.T) {
	ctx := context.Background()
	s := NewSQLite(testDB(t))

	save := func(event string, points float64, exact, close int, at time.Time) {
		require.NoError(t, s.SaveProgress(ctx, Progress{
			UserID: "alice", EventID: event,
			YearGuess: intp(1900), MonthGuess: intp(1), DayGuess: intp(1),
			TotalPoints: points, ExactGuesses: exact, CloseGuesses: close,
			PlayedAt: at,
		}))
	}
	save("moon", 2, 1, 2, time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC))
	save("berlin", 1.5, 1, 1, time.Date(2024, 5, 11, 10, 0, 0, 0, time.UTC))
	save("pompeii", 0, 0, 0, time.Date(2024, 5, 12, 10, 0, 0, 0, time.UTC))

	score, played, err := s.CumulativeScore(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, score.TotalPoints, 1e-9)
	assert.Equal(t, 2, score.ExactGuesses)
	assert.Equal(t, 3, score.CloseGuesses)
	// Zero-point sessions do not count as games played.
	assert.Equal(t, 2, played)

	score, played, err = s.CumulativeScore(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, game.Score{}, score)
	assert.Equal(t, 0, played)
}

func TestLastPlayedDate(t *testing.T) {
	ctx := context.Background()
	s := NewSQLite(testDB(t))

	got, err := s.LastPlayedDate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, s.SaveProgress(ctx, Progress{
		UserID: "alice", EventID: "moon", YearGuess: intp(1969),
		PlayedAt: time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC),
	}))
	require.NoError(t, s.SaveProgress(ctx, Progress{
		UserID: "alice", EventID: "berlin", YearGuess: intp(1989),
		PlayedAt: time.Date(2024, 5, 11, 8, 0, 0, 0, time.UTC),
	}))

	got, err = s.LastPlayedDate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-11", got)
}

func TestLeaderboardOrdersByPoints(t *testing.T) {
	ctx := context.Background()
	s := NewSQLite(testDB(t))

	at := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
	users := []struct {
		id     string
		points float64
		offset time.Duration
	}{
		{"carol", 1.5, 2 * time.Hour},
		{"alice", 3, time.Hour},
		{"bob", 3, 30 * time.Minute}, // same points, finished earlier
	}
	for _, u := range users {
		require.NoError(t, s.SaveProgress(ctx, Progress{
			UserID: u.id, EventID: "moon",
			YearGuess: intp(1969), MonthGuess: intp(7), DayGuess: intp(20),
			TotalPoints: u.points, PlayedAt: at.Add(u.offset),
		}))
	}
	// Incomplete sessions stay off the board.
	require.NoError(t, s.SaveProgress(ctx, Progress{
		UserID: "dave", EventID: "moon", YearGuess: intp(1969),
		TotalPoints: 1, PlayedAt: at,
	}))

	rows, err := s.Leaderboard(ctx, "2024-05-10", 20)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "bob", rows[0].UserID)
	assert.Equal(t, "alice", rows[1].UserID)
	assert.Equal(t, "carol", rows[2].UserID)
}

func TestClaimAnonScores(t *testing.T) {
	ctx := context.Background()
	s := NewSQLite(testDB(t))

	require.NoError(t, s.SaveProgress(ctx, Progress{
		UserID: "anon-1", EventID: "moon", YearGuess: intp(1969),
		TotalPoints: 1, ExactGuesses: 1, PlayedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.ClaimAnonScores(ctx, "anon-1", "alice"))

	got, err := s.LoadProgress(ctx, "alice", "moon")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.UserID)

	gone, err := s.LoadProgress(ctx, "anon-1", "moon")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
