package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreApply(t *testing.T) {
	var s Score
	s = s.Apply(VerdictExact)
	assert.Equal(t, Score{ExactGuesses: 1, TotalPoints: 1}, s)
	s = s.Apply(VerdictClose)
	assert.Equal(t, Score{ExactGuesses: 1, CloseGuesses: 1, TotalPoints: 1.5}, s)
	s = s.Apply(VerdictWrong)
	assert.Equal(t, Score{ExactGuesses: 1, CloseGuesses: 1, TotalPoints: 1.5}, s)
}

func TestScoreApplyOrderIndependent(t *testing.T) {
	verdicts := []Verdict{VerdictExact, VerdictClose, VerdictWrong}
	perms := [][3]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	var want Score
	for i, p := range perms {
		var s Score
		for _, idx := range p {
			s = s.Apply(verdicts[idx])
		}
		if i == 0 {
			want = s
			continue
		}
		require.Equal(t, want, s, "permutation %v", p)
	}
	assert.Equal(t, Score{ExactGuesses: 1, CloseGuesses: 1, TotalPoints: 1.5}, want)
}

func TestScorePointsInvariant(t *testing.T) {
	var s Score
	for _, v := range []Verdict{VerdictClose, VerdictExact, VerdictClose, VerdictWrong, VerdictExact} {
		s = s.Apply(v)
		assert.InDelta(t, float64(s.ExactGuesses)+0.5*float64(s.CloseGuesses), s.TotalPoints, 1e-9)
	}
}

func TestScoreAdd(t *testing.T) {
	a := Score{ExactGuesses: 2, CloseGuesses: 1, TotalPoints: 2.5}
	b := Score{ExactGuesses: 1, CloseGuesses: 2, TotalPoints: 2}
	assert.Equal(t, Score{ExactGuesses: 3, CloseGuesses: 3, TotalPoints: 4.5}, a.Add(b))
}
