// internal/game/types.go
//
// Core type definitions for the date-guessing engine.
// Defines:
//   - Field: which part of the date a guess targets (year/month/day).
//   - Verdict: per-field result of a guess (exact/close/wrong).
//   - Stage: position in the year → month → day → result sequence.
//   - Score: accumulated point totals for one or more sessions.

package game

// Field identifies the date component a guess targets.
type Field string

const (
	FieldYear  Field = "year"
	FieldMonth Field = "month"
	FieldDay   Field = "day"
)

// Verdict is the evaluation result for a single guess.
// Possible values:
//   - "exact": the guess matches the actual value.
//   - "close": the guess is within the field's tolerance.
//   - "wrong": the guess is outside the tolerance.
type Verdict string

const (
	VerdictExact Verdict = "exact"
	VerdictClose Verdict = "close"
	VerdictWrong Verdict = "wrong"
)

// Stage is the current position in the guess sequence.
// A session starts at StageYear and ends, terminally, at StageResult.
type Stage string

const (
	StageYear   Stage = "year"
	StageMonth  Stage = "month"
	StageDay    Stage = "day"
	StageResult Stage = "result"
)

// Score holds accumulated guessing totals. It is used both for a single
// session's running total and for a user's cumulative total across sessions.
type Score struct {
	ExactGuesses int     `json:"exactGuesses"`
	CloseGuesses int     `json:"closeGuesses"`
	TotalPoints  float64 `json:"totalPoints"`
}

// Apply folds one verdict into the score, returning a new Score.
// Exact is worth 1 point, close 0.5, wrong nothing. Pure: the receiver is
// not mutated, and applying a session's three verdicts in any order yields
// the same result.
func (s Score) Apply(v Verdict) Score {
	switch v {
	case VerdictExact:
		s.ExactGuesses++
		s.TotalPoints += 1
	case VerdictClose:
		s.CloseGuesses++
		s.TotalPoints += 0.5
	}
	return s
}

// Add merges two scores. Used when summing per-session rows into a
// cumulative total.
func (s Score) Add(o Score) Score {
	return Score{
		ExactGuesses: s.ExactGuesses + o.ExactGuesses,
		CloseGuesses: s.CloseGuesses + o.CloseGuesses,
		TotalPoints:  s.TotalPoints + o.TotalPoints,
	}
}
