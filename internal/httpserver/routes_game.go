// internal/httpserver/routes_game.go
//
// HTTP routes for the daily date-guessing game.
//   - GET  /game/today       → reconcile and return today's session view
//   - POST /game/guess       → submit a year/month/day guess
//   - POST /game/next        → request another event (refused until tomorrow)
//   - GET  /game/leaderboard → top completed sessions for a date
//
// Each user plays one event per day. The controller owns all game rules;
// these handlers only translate between HTTP and controller calls. The
// event's actual date is withheld from responses until the session is
// settled so clients cannot peek at the answer.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cronoindovina/go-server/internal/controller"
	"github.com/cronoindovina/go-server/internal/datekey"
	"github.com/cronoindovina/go-server/internal/events"
	"github.com/cronoindovina/go-server/internal/game"
	"github.com/cronoindovina/go-server/internal/store"
)

// eventJSON is the client-safe event shape (no date until settled).
type eventJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
}

// viewRes is the response for /game/today and /game/next.
type viewRes struct {
	Event         eventJSON    `json:"event"`
	Stage         game.Stage   `json:"stage"`
	YearGuess     *int         `json:"yearGuess,omitempty"`
	MonthGuess    *int         `json:"monthGuess,omitempty"`
	DayGuess      *int         `json:"dayGuess,omitempty"`
	YearVerdict   game.Verdict `json:"yearVerdict,omitempty"`
	MonthVerdict  game.Verdict `json:"monthVerdict,omitempty"`
	DayVerdict    game.Verdict `json:"dayVerdict,omitempty"`
	SessionScore  game.Score   `json:"sessionScore"`
	AlreadyPlayed bool         `json:"alreadyPlayed"`
	ActualDate    string       `json:"actualDate,omitempty"`
	Cumulative    game.Score   `json:"cumulative"`
	GamesPlayed   int          `json:"gamesPlayed"`
}

func toViewRes(v *controller.View) viewRes {
	res := viewRes{
		Event: eventJSON{
			ID:          v.Event.ID,
			Title:       v.Event.Title,
			Description: v.Event.Description,
			Category:    v.Event.Category,
			Difficulty:  string(v.Event.Difficulty),
		},
		Stage:         v.Session.Stage,
		YearGuess:     v.Session.YearGuess,
		MonthGuess:    v.Session.MonthGuess,
		DayGuess:      v.Session.DayGuess,
		YearVerdict:   v.Session.YearVerdict,
		MonthVerdict:  v.Session.MonthVerdict,
		DayVerdict:    v.Session.DayVerdict,
		SessionScore:  v.Session.Score,
		AlreadyPlayed: v.AlreadyPlayed,
		Cumulative:    v.Cumulative,
		GamesPlayed:   v.GamesPlayed,
	}
	if v.Session.Finished() {
		res.ActualDate = v.Event.DateKey()
	}
	return res
}

// handleToday reconciles the caller's state with today's event.
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	uid := s.userIDWithAnon(w, r)
	view, err := s.ctrl.Load(r.Context(), uid)
	if err != nil {
		s.gameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toViewRes(view))
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	Field game.Field `json:"field"` // "year" | "month" | "day"
	Value int        `json:"value"`
}
type guessRes struct {
	Verdict game.Verdict `json:"verdict"`
	Stage   game.Stage   `json:"stage"`
	Score   game.Score   `json:"score"` // session running total
	// Present once the session is settled.
	Settled    bool        `json:"settled"`
	Summary    *game.Score `json:"summary,omitempty"`
	ActualDate string      `json:"actualDate,omitempty"`
}

// handleGuess submits one guess. The controller persists before this
// handler acknowledges; a 503 means nothing was committed and the same
// guess can be retried.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	uid := s.userIDWithAnon(w, r)

	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	switch req.Field {
	case game.FieldYear, game.FieldMonth, game.FieldDay:
	default:
		http.Error(w, `{"error":"bad_field"}`, http.StatusBadRequest)
		return
	}
	if !inNaturalRange(req.Field, req.Value) {
		http.Error(w, `{"error":"out_of_range"}`, http.StatusBadRequest)
		return
	}

	res, err := s.ctrl.SubmitGuess(r.Context(), uid, req.Field, req.Value)
	if err != nil {
		s.gameError(w, err)
		return
	}

	out := guessRes{Verdict: res.Verdict, Stage: res.Stage, Score: res.Session.Score, Settled: res.Settled}
	if res.Settled {
		sum := res.Summary
		out.Summary = &sum
		out.ActualDate = res.Session.Actual.Key()
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleNext serves a next-event request. While today's event is already
// played the request is refused without state changes.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	uid := s.userIDWithAnon(w, r)
	view, err := s.ctrl.NextEvent(r.Context(), uid)
	if errors.Is(err, controller.ErrAlreadyPlayedToday) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"alreadyPlayed": true,
			"message":       "already played today, come back tomorrow",
		})
		return
	}
	if err != nil {
		s.gameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(toViewRes(view))
}

// lbRes is returned by /game/leaderboard.
type lbRes struct {
	Date string                 `json:"date"`
	Top  []store.LeaderboardRow `json:"top"`
}

// handleLeaderboard returns the standings for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = datekey.Key(time.Now())
	}
	rows, err := s.st.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}

// gameError maps controller errors onto HTTP statuses.
func (s *Server) gameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrWrongStage):
		http.Error(w, `{"error":"wrong_stage"}`, http.StatusConflict)
	case errors.Is(err, controller.ErrAlreadyPlayedToday):
		http.Error(w, `{"error":"already_played"}`, http.StatusConflict)
	case errors.Is(err, controller.ErrUnavailable), errors.Is(err, events.ErrUnavailable):
		log.Error().Err(err).Msg("collaborator unavailable")
		http.Error(w, `{"error":"unavailable","retryable":true}`, http.StatusServiceUnavailable)
	default:
		log.Error().Err(err).Msg("game handler")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	}
}

// inNaturalRange validates guess ranges at the input boundary; the grading
// function itself is tolerant of anything.
func inNaturalRange(f game.Field, v int) bool {
	switch f {
	case game.FieldMonth:
		return v >= 1 && v <= 12
	case game.FieldDay:
		return v >= 1 && v <= 31
	default: // year: any integer, BC years excluded by the catalog anyway
		return v > 0 && v <= 9999
	}
}
