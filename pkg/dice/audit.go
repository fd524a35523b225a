package dice

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Tally counts how often each face came up.
type Tally [Faces]float64

// Add records one roll. Values outside 1..6 are ignored.
func (t *Tally) Add(v int) {
	if v >= 1 && v <= Faces {
		t[v-1]++
	}
}

// Total returns the number of rolls recorded.
func (t *Tally) Total() int {
	return int(floats.Sum(t[:]))
}

// Fairness runs Pearson's chi-squared test against a fair die and returns
// the statistic and its p-value. A small p-value means the rolls are
// unlikely to come from a fair die.
func (t *Tally) Fairness() (chi2, p float64) {
	total := floats.Sum(t[:])
	if total == 0 {
		return 0, 1
	}
	expected := make([]float64, Faces)
	for i := range expected {
		expected[i] = total / Faces
	}
	chi2 = stat.ChiSquare(t[:], expected)
	p = distuv.ChiSquared{K: Faces - 1}.Survival(chi2)
	return chi2, p
}

// Audit rolls src n times and tallies the results.
func Audit(src Source, n int) Tally {
	var t Tally
	for i := 0; i < n; i++ {
		t.Add(src.Roll())
	}
	return t
}
