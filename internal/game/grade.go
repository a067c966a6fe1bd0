// internal/game/grade.go
//
// Guess grading for the date engine.
//
// Each field has a fixed tolerance: a guess equal to the actual value is
// "exact", within the tolerance "close", otherwise "wrong". Grading is a
// total function over integers; out-of-range inputs (month 13, day 40) are
// graded with the same arithmetic. Range validation belongs to the input
// layer, not here.

package game

// tolerances is the maximum absolute deviation still graded as close.
var tolerances = map[Field]int{
	FieldYear:  2,
	FieldMonth: 1,
	FieldDay:   5,
}

// Tolerance reports the close-guess tolerance for a field.
func Tolerance(f Field) int { return tolerances[f] }

// Grade evaluates a guess against the actual value for a field.
func Grade(guess, actual int, field Field) Verdict {
	if guess == actual {
		return VerdictExact
	}
	if abs(guess-actual) <= tolerances[field] {
		return VerdictClose
	}
	return VerdictWrong
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
