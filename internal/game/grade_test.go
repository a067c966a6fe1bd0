package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeExactOnlyOnEquality(t *testing.T) {
	for _, f := range []Field{FieldYear, FieldMonth, FieldDay} {
		for guess := -10; guess <= 60; guess++ {
			for actual := -10; actual <= 60; actual += 7 {
				v := Grade(guess, actual, f)
				if guess == actual {
					assert.Equal(t, VerdictExact, v, "field %s guess %d actual %d", f, guess, actual)
					continue
				}
				diff := guess - actual
				if diff < 0 {
					diff = -diff
				}
				if diff <= Tolerance(f) {
					assert.Equal(t, VerdictClose, v, "field %s guess %d actual %d", f, guess, actual)
				} else {
					assert.Equal(t, VerdictWrong, v, "field %s guess %d actual %d", f, guess, actual)
				}
			}
		}
	}
}

func TestGradeTolerances(t *testing.T) {
	cases := []struct {
		name   string
		field  Field
		guess  int
		actual int
		want   Verdict
	}{
		{"year exact", FieldYear, 1969, 1969, VerdictExact},
		{"year close at boundary", FieldYear, 1971, 1969, VerdictClose},
		{"year wrong past boundary", FieldYear, 1972, 1969, VerdictWrong},
		{"month close one off", FieldMonth, 6, 7, VerdictClose},
		{"month wrong two off", FieldMonth, 5, 7, VerdictWrong},
		{"day close at boundary", FieldDay, 25, 20, VerdictClose},
		{"day wrong past boundary", FieldDay, 23, 17, VerdictWrong},
		{"out-of-range month graded arithmetically", FieldMonth, 13, 12, VerdictClose},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Grade(c.guess, c.actual, c.field))
		})
	}
}
