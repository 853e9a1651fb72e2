package stats

import (
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		lengths []int
		mean    float64
		stdev   float64
	}
	cases := []tc{
		{[]int{9, 7, 8, 9, 5, 9, 6, 7}, 7.5, 1.5118578920369},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{5}, 5, 0},
		{[]int{}, 0, 0},
		{[]int{9, 9}, 9, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, length := range c.lengths {
			s.Push(float64(length))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
	}
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(FuzzyEqual(ZVal(0), 0))
	// Familiar constants to a couple of decimal places.
	is.True(Z95 > 1.959 && Z95 < 1.961)
	is.True(Z99 > 2.575 && Z99 < 2.577)
}
