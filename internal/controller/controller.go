// internal/controller/controller.go
//
// Session orchestration for the daily game.
// Responsibilities:
//   - Reconcile stored progress with today's event on load: completed
//     sessions come back terminal, partial ones resume at the implied
//     stage, otherwise a fresh session starts at the year stage.
//   - Drive the state machine as guesses arrive: transition on a copy,
//     write the snapshot durably, and only then acknowledge. A lost write
//     would re-ask an already-graded field on reload and double-count it.
//   - Enforce one event per day: next-event requests are refused while the
//     last played date is still today.
//
// One guess per user is in flight at a time; a per-user lock holds from
// transition through the persistence write.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cronoindovina/go-server/internal/datekey"
	"github.com/cronoindovina/go-server/internal/events"
	"github.com/cronoindovina/go-server/internal/game"
	"github.com/cronoindovina/go-server/internal/store"
)

var (
	// ErrAlreadyPlayedToday refuses a next-event request on a day the user
	// already finished. Informational: nothing changed, come back tomorrow.
	ErrAlreadyPlayedToday = errors.New("today's event already played")

	// ErrUnavailable wraps collaborator failures (resolver or store).
	// Callers may retry; no partial state was committed.
	ErrUnavailable = errors.New("collaborator unavailable")
)

// Controller drives sessions against the resolver and the gateway.
type Controller struct {
	resolver events.Resolver
	gateway  store.Gateway
	now      func() time.Time

	mu    sync.Mutex
	users map[string]*sync.Mutex // per-user guess serialization
}

func New(resolver events.Resolver, gateway store.Gateway) *Controller {
	return &Controller{
		resolver: resolver,
		gateway:  gateway,
		now:      time.Now,
		users:    make(map[string]*sync.Mutex),
	}
}

// WithNow overrides the clock. Tests only.
func (c *Controller) WithNow(now func() time.Time) *Controller {
	c.now = now
	return c
}

// View is the reconciled state handed to callers after a load.
type View struct {
	Event         events.Event
	Session       *game.Session
	AlreadyPlayed bool
	Cumulative    game.Score
	GamesPlayed   int
}

// GuessResult reports one acknowledged guess.
type GuessResult struct {
	Verdict game.Verdict
	Stage   game.Stage
	Session *game.Session
	// Settled and Summary are meaningful once the session reached result.
	Settled bool
	Summary game.Score
}

// Load reconciles the user's state with today's event (§reconciliation):
// resolve the event, check for a completed record, rebuild any stored
// progress by regrading it, and fall back to a fresh session only when the
// store positively confirms there is nothing to resume.
func (c *Controller) Load(ctx context.Context, userID string) (*View, error) {
	unlock := c.lockUser(userID)
	defer unlock()
	return c.loadLocked(ctx, userID)
}

func (c *Controller) loadLocked(ctx context.Context, userID string) (*View, error) {
	ev, err := c.resolver.TodaysEvent(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve today's event: %v", ErrUnavailable, err)
	}

	completed, err := c.gateway.HasCompleted(ctx, userID, ev.ID)
	if err != nil {
		// Cannot tell "never played" from "record lost"; surfacing beats
		// silently replaying a finished day.
		return nil, fmt.Errorf("%w: completion check: %v", ErrUnavailable, err)
	}

	var sess *game.Session
	prog, err := c.gateway.LoadProgress(ctx, userID, ev.ID)
	switch {
	case err != nil && completed:
		return nil, fmt.Errorf("%w: load completed progress: %v", ErrUnavailable, err)
	case err != nil:
		// The existence check above confirmed no completed record, so a
		// fresh session risks at most a lost partial answer.
		log.Warn().Err(err).Str("user", userID).Str("event", ev.ID).
			Msg("progress unreadable, starting fresh after existence check")
		sess = game.New(ev.ID, ev.Parts())
	case prog == nil:
		sess = game.New(ev.ID, ev.Parts())
	default:
		sess, err = game.Restore(ev.ID, ev.Parts(), prog.YearGuess, prog.MonthGuess, prog.DayGuess)
		if err != nil {
			return nil, fmt.Errorf("restore session for user %s event %s: %w", userID, ev.ID, err)
		}
	}

	cumulative, gamesPlayed, err := c.gateway.CumulativeScore(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: cumulative score: %v", ErrUnavailable, err)
	}

	return &View{
		Event:         ev,
		Session:       sess,
		AlreadyPlayed: completed || sess.Finished(),
		Cumulative:    cumulative,
		GamesPlayed:   gamesPlayed,
	}, nil
}

// SubmitGuess processes one guess: reconcile, transition a copy of the
// session, persist the snapshot, then acknowledge. On a write failure the
// copy is discarded and the stored state is untouched, so a retry replays
// the same transition.
func (c *Controller) SubmitGuess(ctx context.Context, userID string, field game.Field, value int) (*GuessResult, error) {
	unlock := c.lockUser(userID)
	defer unlock()

	view, err := c.loadLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := view.Session.Clone()
	verdict, err := next.Submit(field, value)
	if err != nil {
		return nil, err
	}

	if err := c.gateway.SaveProgress(ctx, snapshot(userID, next, c.now())); err != nil {
		return nil, fmt.Errorf("%w: persist guess: %v", ErrUnavailable, err)
	}

	res := &GuessResult{Verdict: verdict, Stage: next.Stage, Session: next}
	res.Summary, res.Settled = next.Summary()
	return res, nil
}

// NextEvent serves a "give me another one" request. While the last played
// date is still today it is refused without touching any state; on a new
// day it behaves like Load.
func (c *Controller) NextEvent(ctx context.Context, userID string) (*View, error) {
	unlock := c.lockUser(userID)
	defer unlock()

	last, err := c.gateway.LastPlayedDate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: last played date: %v", ErrUnavailable, err)
	}
	if last != "" && last == datekey.Key(c.now()) {
		return nil, ErrAlreadyPlayedToday
	}
	return c.loadLocked(ctx, userID)
}

// snapshot converts the session into its persisted form.
func snapshot(userID string, s *game.Session, now time.Time) store.Progress {
	return store.Progress{
		UserID:        userID,
		EventID:       s.EventID,
		YearGuess:     s.YearGuess,
		MonthGuess:    s.MonthGuess,
		DayGuess:      s.DayGuess,
		YearAccuracy:  s.YearVerdict,
		MonthAccuracy: s.MonthVerdict,
		DayAccuracy:   s.DayVerdict,
		TotalPoints:   s.Score.TotalPoints,
		ExactGuesses:  s.Score.ExactGuesses,
		CloseGuesses:  s.Score.CloseGuesses,
		PlayedAt:      now.UTC(),
	}
}

// lockUser serializes guess processing per user.
func (c *Controller) lockUser(userID string) func() {
	c.mu.Lock()
	l, ok := c.users[userID]
	if !ok {
		l = &sync.Mutex{}
		c.users[userID] = l
	}
	c.mu.Unlock()
	l.Lock()
	return l.Unlock
}
