// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package operator implements the matrix-free FDFD operator
//
//	A(x) = ∇ × ∇ × x - z ⊙ x
//
// on a regular grid truncated by stretched-coordinate PML, symmetrized by a
// diagonal preconditioner so that the resulting map is complex symmetric.
package operator

import (
	"errors"
	"fmt"
	"math/cmplx"

	"golang.org/x/sync/errgroup"

	"github.com/curioloop/maxwell/vecfield"
)

var (
	// ErrInvalidShape is returned for a grid with a negative extent.
	ErrInvalidShape = errors.New("operator: invalid grid shape")

	// ErrInvalidThickness is returned when a PML thickness is negative or exceeds its axis.
	ErrInvalidThickness = errors.New("operator: invalid pml thickness")

	// ErrInvalidPml is returned for out-of-range PML parameters.
	ErrInvalidPml = errors.New("operator: invalid pml parameters")
)

// Preconditioners returns the diagonal scaling pre and its inverse.
//
// For component a the scaling at a grid point is
//
//	preₐ = √( ∏ⱼ sⱼ⁻¹(transpose = j==a) )
//
// which makes invPre ⊙ A(pre ⊙ x) symmetric (not Hermitian), since
// invPre·A·pre == pre·Aᵀ·invPre.
func Preconditioners(shape vecfield.Shape, th Thickness, p PmlParams) (pre, invPre vecfield.Field, err error) {
	if err = validate(shape, th, p); err != nil {
		return
	}
	pre, invPre = newStretch(shape, th, p).preconditioners()
	return
}

func (s *stretch) preconditioners() (pre, invPre vecfield.Field) {
	pre, invPre = vecfield.Zeros(s.shape), vecfield.Zeros(s.shape)
	nx, ny, nz := s.shape[0], s.shape[1], s.shape[2]
	var g errgroup.Group
	for a := 0; a < 3; a++ {
		g.Go(func() error {
			cx := s.profile(0, a == 0)
			cy := s.profile(1, a == 1)
			cz := s.profile(2, a == 2)
			dst, inv := pre.Component(a), invPre.Component(a)
			idx := 0
			for i := 0; i < nx; i++ {
				for j := 0; j < ny; j++ {
					cxy := cx[i] * cy[j]
					for k := 0; k < nz; k++ {
						v := cmplx.Sqrt(cxy * cz[k])
						dst[idx], inv[idx] = v, 1/v
						idx++
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return
}

func validate(shape vecfield.Shape, th Thickness, p PmlParams) error {
	if !shape.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidShape, shape)
	}
	if err := th.Validate(shape); err != nil {
		return err
	}
	return p.Validate()
}

// Operator is the symmetrized curl-curl operator of a fixed grid, PML
// thickness and PML parameters. It is immutable and safe for concurrent use.
type Operator struct {
	shape  vecfield.Shape
	th     Thickness
	params PmlParams
	st     *stretch
	pre    vecfield.Field
	invPre vecfield.Field
}

// New builds the coefficient profiles and preconditioners once so that they
// can be reused for every application and every solve on the same grid.
func New(shape vecfield.Shape, th Thickness, p PmlParams) (*Operator, error) {
	if err := validate(shape, th, p); err != nil {
		return nil, err
	}
	st := newStretch(shape, th, p)
	pre, invPre := st.preconditioners()
	return &Operator{
		shape:  shape,
		th:     th,
		params: p,
		st:     st,
		pre:    pre,
		invPre: invPre,
	}, nil
}

// Apply returns invPre ⊙ (∇ × ∇ᵀ × (pre ⊙ x) - z ⊙ (pre ⊙ x)).
// The map is complex symmetric but not Hermitian.
func (o *Operator) Apply(x, z vecfield.Field) vecfield.Field {
	if x.Shape != o.shape || z.Shape != o.shape {
		panic("field shape not match operator")
	}
	px := vecfield.Mul(o.pre, x)
	cc := o.st.curl(o.st.curl(px, true), false)
	return vecfield.Mul(o.invPre, vecfield.Sub(cc, vecfield.Mul(z, px)))
}

// Shape returns the grid shape of the operator.
func (o *Operator) Shape() vecfield.Shape { return o.shape }

// Thickness returns the PML thickness of the operator.
func (o *Operator) Thickness() Thickness { return o.th }

// Params returns the PML parameters of the operator.
func (o *Operator) Params() PmlParams { return o.params }

// Pre returns the preconditioner scaling. Callers must not modify it.
func (o *Operator) Pre() vecfield.Field { return o.pre }

// InvPre returns the inverse preconditioner scaling. Callers must not modify it.
func (o *Operator) InvPre() vecfield.Field { return o.invPre }
