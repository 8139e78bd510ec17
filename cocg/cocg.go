// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cocg implements the conjugate orthogonal conjugate gradient
// iteration for complex symmetric (non-Hermitian) linear systems A(x, z) = b.
//
// # Reference:
//
//   - H. A. van der Vorst and J. B. M. Melissen, "A Petrov-Galerkin type
//     method for solving Ax = b, where A is symmetric complex", IEEE Trans.
//     Magn. 26 (1990).
package cocg

import "github.com/curioloop/maxwell/vecfield"

// Operator is a complex symmetric linear map of x parameterized by z.
type Operator interface {
	Apply(x, z vecfield.Field) vecfield.Field
}

// OperatorFunc adapts a plain function to Operator.
type OperatorFunc func(x, z vecfield.Field) vecfield.Field

// Apply calls f(x, z).
func (f OperatorFunc) Apply(x, z vecfield.Field) vecfield.Field {
	return f(x, z)
}

// State is the COCG recurrence state after an iteration.
type State struct {
	P vecfield.Field // search direction
	R vecfield.Field // residual
	X vecfield.Field // solution estimate

	Rho   complex128 // rᵀr before the step
	Alpha complex128 // step length
	Beta  complex128 // direction update
	Err   float64    // ‖r‖ after the step
}

// Init returns the initial state for solving a(x, z) = b from x₀ = 0,
// together with the termination threshold eps·‖b‖.
func Init(a Operator, z, b vecfield.Field, eps float64) (s State, termErr float64) {
	termErr = eps * vecfield.Norm(b)
	s.X = vecfield.Zeros(b.Shape)
	s.R = vecfield.Sub(b, a.Apply(s.X, z))
	s.P = s.R
	s.Err = vecfield.Norm(s.R)
	return
}

// Iterate performs one COCG step.
//
//	ρ = rᵀr
//	v = A p
//	α = ρ / pᵀv
//	x = x + α p
//	r = r - α v
//	β = rᵀr / ρ
//	p = r + β p
//
// The products are bilinear. A state whose residual is exactly zero is
// already solved and is returned unchanged; any other breakdown propagates
// NaN or Inf through the state.
func Iterate(a Operator, s State, z vecfield.Field) State {
	rho := vecfield.Dot(s.R, s.R)
	if rho == 0 && vecfield.Norm(s.R) == 0 {
		s.Rho, s.Alpha, s.Beta, s.Err = 0, 0, 0, 0
		return s
	}
	v := a.Apply(s.P, z)
	alpha := rho / vecfield.Dot(s.P, v)
	x := vecfield.AddScaled(s.X, alpha, s.P)
	r := vecfield.AddScaled(s.R, -alpha, v)
	beta := vecfield.Dot(r, r) / rho
	p := vecfield.AddScaled(r, beta, s.P)
	return State{
		P: p, R: r, X: x,
		Rho: rho, Alpha: alpha, Beta: beta,
		Err: vecfield.Norm(r),
	}
}
