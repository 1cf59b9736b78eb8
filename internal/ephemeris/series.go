// Package ephemeris approximates the Sun and Moon as seen from Earth using
// fitted sum-of-sines series instead of a perturbation theory.
//
// Time is a continuous day count since 1899-12-30 00:00 UT (the spreadsheet
// serial date); the fractional part is the time of day. Lunar coordinates are
// given in a Sun-referenced ecliptic frame (GSE-like): the Sun sits on +X,
// Z points to the ecliptic north pole.
//
// The model is deliberately not-so-accurate. Errors of a few hundredths of a
// degree in the lunar position are expected and accepted.
package ephemeris

import "math"

// Term is one sinusoid Amplitude·sin(Omega·t + Phase), with Omega in
// radians per day and Phase in radians.
type Term struct {
	Amplitude float64
	Omega     float64
	Phase     float64
}

// HarmonicSeries is an immutable, ordered list of terms. The zero value is
// an empty series that evaluates to 0.
type HarmonicSeries struct {
	terms []Term
}

// NewHarmonicSeries copies terms into a new series.
func NewHarmonicSeries(terms []Term) HarmonicSeries {
	cp := make([]Term, len(terms))
	copy(cp, terms)
	return HarmonicSeries{terms: cp}
}

// Len returns the number of terms.
func (s HarmonicSeries) Len() int {
	return len(s.terms)
}

// Terms returns a copy of the terms.
func (s HarmonicSeries) Terms() []Term {
	cp := make([]Term, len(s.terms))
	copy(cp, s.terms)
	return cp
}

// Eval returns Σ Amplitude·sin(Omega·t + Phase).
func (s HarmonicSeries) Eval(t float64) float64 {
	var sum float64
	for _, term := range s.terms {
		sum += term.Amplitude * math.Sin(t*term.Omega+term.Phase)
	}
	return sum
}
