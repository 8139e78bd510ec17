// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"fmt"
	"math"

	"github.com/curioloop/maxwell/vecfield"
)

// PmlParams controls the stretched-coordinate perfectly matched layers.
//
// # Reference:
//
//   - W. Shin and S. Fan, "Choice of the perfectly matched layer boundary
//     condition for frequency-domain Maxwell's equations solvers", J. Comput.
//     Phys. 231 (2012).
type PmlParams struct {
	// Effective angular frequency of the PML.
	WEff float64
	// Degree of the polynomial grading.
	M float64
	// Natural logarithm of the target reflection coefficient.
	LnR float64
}

// DefaultPmlParams returns w_eff = 1, m = 4 and ln(R) = -16.
func DefaultPmlParams() PmlParams {
	return PmlParams{WEff: 1, M: 4, LnR: -16}
}

// Validate checks that WEff > 0, M ≥ 1 and LnR < 0.
func (p PmlParams) Validate() error {
	switch {
	case !(p.WEff > 0):
		return fmt.Errorf("%w: w_eff must be greater than 0, got %v", ErrInvalidPml, p.WEff)
	case !(p.M >= 1):
		return fmt.Errorf("%w: grading degree must not less than 1, got %v", ErrInvalidPml, p.M)
	case !(p.LnR < 0):
		return fmt.Errorf("%w: ln(R) must be negative, got %v", ErrInvalidPml, p.LnR)
	}
	return nil
}

// Thickness holds the (low, high) PML thickness in cells for each axis.
// A zero entry disables absorption on that side.
type Thickness [3][2]int

// UniformThickness returns th cells on both sides of every axis.
func UniformThickness(th int) Thickness {
	return Thickness{{th, th}, {th, th}, {th, th}}
}

// Validate checks every entry lies within [0, n] of its axis.
func (t Thickness) Validate(shape vecfield.Shape) error {
	for axis, th := range t {
		for side, v := range th {
			if v < 0 || v > shape[axis] {
				return fmt.Errorf("%w: axis %d side %d is %d, extent %d",
					ErrInvalidThickness, axis, side, v, shape[axis])
			}
		}
	}
	return nil
}

// Coeffs returns the stretching coefficients 1/sᵢ along an axis of n cells
// with thickness th. With transpose the coefficients are sampled on the
// staggered grid, half a cell ahead.
func Coeffs(n int, th [2]int, p PmlParams, transpose bool) []complex128 {
	sMax := (p.M + 1) * p.LnR / 2
	coeffs := make([]complex128, n)
	for i := range coeffs {
		pos := float64(i)
		if transpose {
			pos += 0.5
		}
		d := math.Max(lowDist(pos, th[0]), highDist(pos, n, th[1]))
		if d < 0 {
			d = 0
		}
		coeffs[i] = 1 / complex(1, sMax*math.Pow(d, p.M)/p.WEff)
	}
	return coeffs
}

// lowDist is the normalized depth into the low-side layer. Without a layer
// it falls back to -pos, which never becomes positive on the grid.
func lowDist(pos float64, th int) float64 {
	if th > 0 {
		return (float64(th) - pos) / float64(th)
	}
	return -pos
}

// highDist mirrors lowDist for the high side of an n cell axis.
func highDist(pos float64, n, th int) float64 {
	if th > 0 {
		return (pos - (float64(n-th) - 0.5)) / float64(th)
	}
	return pos - float64(n)
}
