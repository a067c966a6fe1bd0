// internal/events/resolver.go
//
// Daily event resolution.
//
// Exactly one canonical event exists per UTC calendar day. Resolution order:
//   1. The daily_events table: a previously pinned event for today.
//   2. Deterministic fallback: HMAC(salt, YYYY-MM-DD) indexes into the
//      catalog; the chosen event is pinned in the DB so every process
//      agrees for the rest of the day.
//   3. If the DB is down, the deterministic fallback is served unpinned;
//      the HMAC index keeps repeated calls on the same day stable anyway.
//
// Repeated calls within one day are idempotent: the same event comes back.

package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cronoindovina/go-server/internal/datekey"
)

// ErrUnavailable is returned when no event can be supplied for today.
// Callers may retry; no session state is created on this path.
var ErrUnavailable = errors.New("daily event unavailable")

// Resolver supplies the canonical event for today.
type Resolver interface {
	TodaysEvent(ctx context.Context) (Event, error)
}

// DBResolver resolves against the events/daily_events tables with a
// deterministic catalog fallback.
type DBResolver struct {
	db      *sql.DB
	salt    string
	catalog []Event
	now     func() time.Time

	mu        sync.Mutex
	cachedDay string
	cached    Event
}

// NewDBResolver constructs a resolver. catalog must be non-empty for the
// fallback path to work (pass Catalog() after Init).
func NewDBResolver(db *sql.DB, salt string, catalog []Event) *DBResolver {
	return &DBResolver{db: db, salt: salt, catalog: catalog, now: time.Now}
}

// WithNow overrides the clock. Tests only.
func (r *DBResolver) WithNow(now func() time.Time) *DBResolver {
	r.now = now
	return r
}

// TodaysEvent implements Resolver.
func (r *DBResolver) TodaysEvent(ctx context.Context) (Event, error) {
	today := r.now()
	day := datekey.Key(today)

	r.mu.Lock()
	if r.cachedDay == day {
		ev := r.cached
		r.mu.Unlock()
		return ev, nil
	}
	r.mu.Unlock()

	ev, err := r.lookup(ctx, day)
	if err == nil {
		r.remember(day, ev)
		return ev, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		// DB trouble: serve the deterministic fallback without pinning.
		log.Warn().Err(err).Str("day", day).Msg("daily event lookup failed, using fallback")
		return r.fallback(today, day)
	}

	// Nothing pinned yet: pick, pin, and re-read so racing processes agree.
	fb, err := r.fallback(today, day)
	if err != nil {
		return Event{}, err
	}
	if err := r.pin(ctx, day, fb); err != nil {
		log.Warn().Err(err).Str("day", day).Str("event", fb.ID).Msg("pin daily event failed")
		return fb, nil
	}
	ev, err = r.lookup(ctx, day)
	if err != nil {
		return fb, nil
	}
	r.remember(day, ev)
	return ev, nil
}

func (r *DBResolver) remember(day string, ev Event) {
	r.mu.Lock()
	r.cachedDay, r.cached = day, ev
	r.mu.Unlock()
}

// lookup reads today's pinned event. Returns sql.ErrNoRows when none is set.
func (r *DBResolver) lookup(ctx context.Context, day string) (Event, error) {
	var (
		ev      Event
		dateStr string
		diff    string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT e.id, e.title, e.description, e.event_date, e.category, e.difficulty
		FROM daily_events d
		JOIN events e ON e.id = d.event_id
		WHERE d.day = ?`, day,
	).Scan(&ev.ID, &ev.Title, &ev.Description, &dateStr, &ev.Category, &diff)
	if err != nil {
		return Event{}, err
	}
	d, perr := datekey.Parse(dateStr)
	if perr != nil {
		return Event{}, fmt.Errorf("stored event %s has bad date %q: %w", ev.ID, dateStr, perr)
	}
	ev.Date = d
	ev.Difficulty = Difficulty(diff)
	return ev, nil
}

// fallback picks the deterministic catalog event for the day.
func (r *DBResolver) fallback(today time.Time, day string) (Event, error) {
	if len(r.catalog) == 0 {
		return Event{}, fmt.Errorf("%w: no pinned event and empty catalog for %s", ErrUnavailable, day)
	}
	return r.catalog[datekey.Index(today, r.salt, len(r.catalog))], nil
}

// pin records the event and the day→event assignment. Both inserts are
// idempotent; a concurrent pin by another process simply wins.
func (r *DBResolver) pin(ctx context.Context, day string, ev Event) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO events (id, title, description, event_date, category, difficulty, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		ev.ID, ev.Title, ev.Description, ev.DateKey(), ev.Category, string(ev.Difficulty),
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO daily_events (day, event_id) VALUES (?,?)`, day, ev.ID,
	); err != nil {
		return fmt.Errorf("pin day: %w", err)
	}
	return nil
}

// StaticResolver always returns the same event. Tests only.
type StaticResolver struct {
	Event Event
	Err   error
}

func (s StaticResolver) TodaysEvent(context.Context) (Event, error) {
	return s.Event, s.Err
}
