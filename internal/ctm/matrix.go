// Package ctm builds colour transform matrices for the compositor's
// per-output CTM control.
package ctm

import (
	"fmt"
	"strings"
)

const (
	// MinSaturation is the lowest accepted saturation (fully grey).
	MinSaturation = 0.0
	// MaxSaturation is the highest accepted saturation.
	MaxSaturation = 4.0
)

// Matrix is a row-major 3x3 colour transform.
type Matrix [9]float64

// Identity returns the matrix that leaves colours untouched.
func Identity() Matrix {
	return Matrix{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Saturation returns the linear saturation matrix for s. Every coefficient
// starts at (1-s)/3 and the diagonal additionally gets s, so s=1 yields the
// identity and s=0 averages the three channels.
func Saturation(s float64) Matrix {
	var m Matrix
	coeff := (1 - s) / 3
	for i := range m {
		m[i] = coeff
		if i%4 == 0 {
			m[i] += s
		}
	}
	return m
}

// ValidSaturation reports whether s lies in [MinSaturation, MaxSaturation].
func ValidSaturation(s float64) bool {
	return s >= MinSaturation && s <= MaxSaturation
}

// IsIdentity reports whether m is exactly the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// Rows returns m as three rows.
func (m Matrix) Rows() [3][3]float64 {
	return [3][3]float64{
		{m[0], m[1], m[2]},
		{m[3], m[4], m[5]},
		{m[6], m[7], m[8]},
	}
}

func (m Matrix) String() string {
	var b strings.Builder
	for r, row := range m.Rows() {
		if r > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%.4f %.4f %.4f", row[0], row[1], row[2])
	}
	return b.String()
}
