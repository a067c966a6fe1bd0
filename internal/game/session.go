// internal/game/session.go
//
// State machine for a single daily session.
// Responsibilities:
//   - Track the year → month → day → result guess progression.
//   - Validate that guesses arrive for the current stage only.
//   - Grade each guess against the event's actual date and accumulate
//     the session score.
//   - Rebuild a session deterministically from previously stored guesses
//     (grading is pure, so verdicts are re-derivable on resume).
//
// Notes:
//   - The session holds only the decomposed actual date, not the full
//     event; event metadata stays with the events package.
//   - StageResult is terminal: further submissions are rejected.
package game

import (
	"errors"
	"fmt"

	"github.com/cronoindovina/go-server/internal/datekey"
)

// ErrWrongStage is returned when a guess targets a stage other than the
// current one. The caller violated protocol; session state is not touched.
var ErrWrongStage = errors.New("guess does not match current stage")

// ErrCorruptProgress is returned by Restore when stored guesses do not form
// a valid prefix of the year/month/day sequence.
var ErrCorruptProgress = errors.New("stored guesses violate stage ordering")

// Session is the state of one user's attempt at one day's event.
type Session struct {
	EventID string
	Actual  datekey.Parts

	Stage Stage

	YearGuess  *int
	MonthGuess *int
	DayGuess   *int

	YearVerdict  Verdict
	MonthVerdict Verdict
	DayVerdict   Verdict

	// Score is the session's own running total (the three fields of this
	// event), distinct from a user's cumulative score.
	Score Score
}

// New constructs a fresh session at StageYear for the given event date.
func New(eventID string, actual datekey.Parts) *Session {
	return &Session{EventID: eventID, Actual: actual, Stage: StageYear}
}

// Submit grades a guess for the given field, records it, and advances the
// stage. The field must match the current stage, otherwise ErrWrongStage is
// returned and nothing is mutated. Submitting at StageResult always fails.
func (s *Session) Submit(field Field, value int) (Verdict, error) {
	if s.Stage == StageResult {
		return "", fmt.Errorf("%w: session finished", ErrWrongStage)
	}
	if Field(s.Stage) != field {
		return "", fmt.Errorf("%w: stage is %q, got %q guess", ErrWrongStage, s.Stage, field)
	}

	var v Verdict
	switch field {
	case FieldYear:
		v = Grade(value, s.Actual.Year, FieldYear)
		s.YearGuess, s.YearVerdict = &value, v
		s.Stage = StageMonth
	case FieldMonth:
		v = Grade(value, s.Actual.Month, FieldMonth)
		s.MonthGuess, s.MonthVerdict = &value, v
		s.Stage = StageDay
	case FieldDay:
		v = Grade(value, s.Actual.Day, FieldDay)
		s.DayGuess, s.DayVerdict = &value, v
		s.Stage = StageResult
	default:
		return "", fmt.Errorf("%w: unknown field %q", ErrWrongStage, field)
	}
	s.Score = s.Score.Apply(v)
	return v, nil
}

// Finished reports whether the session reached the terminal stage.
func (s *Session) Finished() bool { return s.Stage == StageResult }

// Summary returns the settled session score. ok is false until StageResult.
func (s *Session) Summary() (Score, bool) {
	return s.Score, s.Stage == StageResult
}

// Restore rebuilds a session from stored guesses by regrading each populated
// field in order. Guesses must form a prefix (a month guess without a year
// guess is a corrupt snapshot). The resulting stage is the successor of the
// highest populated field, matching what Submit would have produced.
func Restore(eventID string, actual datekey.Parts, yearGuess, monthGuess, dayGuess *int) (*Session, error) {
	if (monthGuess != nil && yearGuess == nil) || (dayGuess != nil && monthGuess == nil) {
		return nil, ErrCorruptProgress
	}
	s := New(eventID, actual)
	for _, g := range []struct {
		field Field
		value *int
	}{
		{FieldYear, yearGuess},
		{FieldMonth, monthGuess},
		{FieldDay, dayGuess},
	} {
		if g.value == nil {
			break
		}
		if _, err := s.Submit(g.field, *g.value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Clone returns a deep copy. The controller transitions a copy and only
// adopts it once the persistence write lands.
func (s *Session) Clone() *Session {
	c := *s
	c.YearGuess = copyInt(s.YearGuess)
	c.MonthGuess = copyInt(s.MonthGuess)
	c.DayGuess = copyInt(s.DayGuess)
	return &c
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
