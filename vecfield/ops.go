// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vecfield

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/cmplxs"
)

func vec(a []complex128) cblas128.Vector {
	return cblas128.Vector{N: len(a), Inc: 1, Data: a}
}

func mustMatch(a, b Field) {
	if a.Shape != b.Shape {
		panic("vecfield: operand shapes not match")
	}
}

// zip applies fn component-wise into a freshly allocated field.
func zip(a, b Field, fn func(dst, s, t []complex128) []complex128) Field {
	mustMatch(a, b)
	c := Zeros(a.Shape)
	for i := 0; i < 3; i++ {
		fn(c.Component(i), a.Component(i), b.Component(i))
	}
	return c
}

// Add returns a + b.
func Add(a, b Field) Field {
	return zip(a, b, cmplxs.AddTo)
}

// Sub returns a - b.
func Sub(a, b Field) Field {
	return zip(a, b, cmplxs.SubTo)
}

// Mul returns the element-wise product a ⊙ b.
func Mul(a, b Field) Field {
	return zip(a, b, cmplxs.MulTo)
}

// Div returns the element-wise quotient a ⊘ b.
func Div(a, b Field) Field {
	return zip(a, b, cmplxs.DivTo)
}

// Scale returns alpha·a.
func Scale(alpha complex128, a Field) Field {
	c := a.Clone()
	for i := 0; i < 3; i++ {
		cblas128.Scal(alpha, vec(c.Component(i)))
	}
	return c
}

// AddScaled returns a + alpha·b.
func AddScaled(a Field, alpha complex128, b Field) Field {
	mustMatch(a, b)
	c := a.Clone()
	for i := 0; i < 3; i++ {
		cblas128.Axpy(alpha, vec(b.Component(i)), vec(c.Component(i)))
	}
	return c
}

// Reciprocal returns the element-wise inverse 1/a.
func Reciprocal(a Field) Field {
	return mapField(a, func(v complex128) complex128 { return 1 / v })
}

// Sqrt returns the element-wise principal square root of a.
func Sqrt(a Field) Field {
	return mapField(a, cmplx.Sqrt)
}

// Conj returns the element-wise complex conjugate of a.
func Conj(a Field) Field {
	return mapField(a, cmplx.Conj)
}

// Real returns the real part of a, stored with zero imaginary parts.
func Real(a Field) Field {
	return mapField(a, func(v complex128) complex128 { return complex(real(v), 0) })
}

func mapField(a Field, fn func(complex128) complex128) Field {
	c := Zeros(a.Shape)
	for i := 0; i < 3; i++ {
		src, dst := a.Component(i), c.Component(i)
		for j, v := range src {
			dst[j] = fn(v)
		}
	}
	return c
}

// Dot returns the bilinear contraction Σ aᵢbᵢ over all components.
// No operand is conjugated: this is the product COCG needs for complex
// symmetric systems and is not a Hermitian inner product.
func Dot(a, b Field) complex128 {
	mustMatch(a, b)
	var sum complex128
	for i := 0; i < 3; i++ {
		sum += cblas128.Dotu(vec(a.Component(i)), vec(b.Component(i)))
	}
	return sum
}

// Norm returns the Euclidean norm sqrt(Σ |aᵢ|²) over all components.
func Norm(a Field) float64 {
	var ss float64
	for i := 0; i < 3; i++ {
		n := cblas128.Nrm2(vec(a.Component(i)))
		ss += n * n
	}
	return math.Sqrt(ss)
}

// Equal reports whether a and b have the same shape and values.
func Equal(a, b Field) bool {
	if a.Shape != b.Shape {
		return false
	}
	for i := 0; i < 3; i++ {
		x, y := a.Component(i), b.Component(i)
		if len(x) != len(y) {
			return false
		}
		for j, v := range x {
			if v != y[j] {
				return false
			}
		}
	}
	return true
}
