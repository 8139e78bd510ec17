// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"golang.org/x/sync/errgroup"

	"github.com/curioloop/maxwell/vecfield"
)

// diff writes into dst the spatial difference of src along axis, scaled by
// coeffs (one value per cell along the axis, nil for unit scaling).
//
// The plain difference is the [-1, 1, 0] stencil,
//
//	yᵢ = xᵢ - xᵢ₋₁   (x₋₁ = 0)
//
// and the transposed difference is the [-1, 1] stencil,
//
//	yᵢ = xᵢ₊₁ - xᵢ   (xₙ = 0)
//
// so that, before stretching, the transposed curl is the matrix transpose
// of the plain curl.
func diff(dst, src []complex128, shape vecfield.Shape, axis int, transpose bool, coeffs []complex128) {
	if len(dst) != len(src) || len(src) != shape.Len() {
		panic("bound check error")
	}
	n := shape[axis]
	if n == 0 {
		clear(dst)
		return
	}
	st := shape.Strides()[axis]
	block := n * st
	for base := 0; base < len(src); base += block {
		for p := 0; p < n; p++ {
			c := complex(1, 0)
			if coeffs != nil {
				c = coeffs[p]
			}
			row := base + p*st
			x := src[row : row+st : row+st]
			y := dst[row : row+st : row+st]
			switch {
			case transpose && p < n-1:
				next := src[row+st : row+2*st : row+2*st]
				for q := range y {
					y[q] = c * (next[q] - x[q])
				}
			case transpose:
				for q := range y {
					y[q] = -c * x[q]
				}
			case p > 0:
				prev := src[row-st : row : row]
				for q := range y {
					y[q] = c * (x[q] - prev[q])
				}
			default:
				for q := range y {
					y[q] = c * x[q]
				}
			}
		}
	}
}

// Diff returns the unstretched difference of x along axis.
func Diff(x []complex128, shape vecfield.Shape, axis int, transpose bool) []complex128 {
	y := make([]complex128, len(x))
	diff(y, x, shape, axis, transpose, nil)
	return y
}

// stretch caches the PML coefficient profiles of a grid.
type stretch struct {
	shape vecfield.Shape
	// coeffs[axis][0] is sampled on the primary grid, coeffs[axis][1] on the staggered one.
	coeffs [3][2][]complex128
}

func newStretch(shape vecfield.Shape, th Thickness, p PmlParams) *stretch {
	s := &stretch{shape: shape}
	for axis := 0; axis < 3; axis++ {
		s.coeffs[axis][0] = Coeffs(shape[axis], th[axis], p, false)
		s.coeffs[axis][1] = Coeffs(shape[axis], th[axis], p, true)
	}
	return s
}

func (s *stretch) profile(axis int, transpose bool) []complex128 {
	if transpose {
		return s.coeffs[axis][1]
	}
	return s.coeffs[axis][0]
}

// diff is the stretched difference sᵢ⁻¹ ∂ᵢ.
func (s *stretch) diff(dst, src []complex128, axis int, transpose bool) {
	diff(dst, src, s.shape, axis, transpose, s.profile(axis, transpose))
}

// curl computes (∇ × f)ᵢ = ∂ⱼfₖ - ∂ₖfⱼ for cyclic (i, j, k).
// Each output component is evaluated on its own goroutine.
func (s *stretch) curl(f vecfield.Field, transpose bool) vecfield.Field {
	if f.Shape != s.shape {
		panic("field shape not match operator")
	}
	out := vecfield.Zeros(s.shape)
	var g errgroup.Group
	for i := 0; i < 3; i++ {
		g.Go(func() error {
			j, k := (i+1)%3, (i+2)%3
			dst := out.Component(i)
			tmp := make([]complex128, len(dst))
			s.diff(dst, f.Component(k), j, transpose)
			s.diff(tmp, f.Component(j), k, transpose)
			for q, v := range tmp {
				dst[q] -= v
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Curl returns the stretched-coordinate curl of f. With transpose it uses the
// transposed stencil and samples the coefficients on the staggered grid.
func Curl(f vecfield.Field, th Thickness, p PmlParams, transpose bool) vecfield.Field {
	return newStretch(f.Shape, th, p).curl(f, transpose)
}
