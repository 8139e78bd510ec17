// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cocg

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/curioloop/maxwell/operator"
	"github.com/curioloop/maxwell/vecfield"
)

func TestFirstStep(t *testing.T) {
	shape := vecfield.Shape{10, 10, 10}
	op, err := operator.New(shape, operator.UniformThickness(2), operator.PmlParams{WEff: 0.3, M: 4, LnR: -16})
	if err != nil {
		t.Fatal(err)
	}
	b := vecfield.Delta(shape, 2, 5, 5, 5, 1)
	z := vecfield.Zeros(shape)

	s, termErr := Init(op, z, b, 1e-6)
	switch {
	case !vecfield.Equal(s.P, s.R):
		t.Fatal("initial direction differs from residual")
	case !vecfield.Equal(s.X, vecfield.Zeros(shape)):
		t.Fatal("initial solution is not zero")
	case termErr != 1e-6:
		t.Fatalf("unexpected termination threshold %v", termErr)
	}

	s = Iterate(op, s, z)
	if !scalar.EqualWithinAbs(s.Err, 0.8660254, 1e-7) {
		t.Fatalf("unexpected error after one step %v", s.Err)
	}
}

// dense3 is a complex symmetric 3×3 matrix acting on a single-cell field.
var dense3 = [3][3]complex128{
	{2 + 1i, 1, 0.5i},
	{1, 3, 1 - 1i},
	{0.5i, 1 - 1i, 4 + 2i},
}

func applyDense(x, _ vecfield.Field) vecfield.Field {
	y := vecfield.Zeros(x.Shape)
	for i := 0; i < 3; i++ {
		var v complex128
		for j := 0; j < 3; j++ {
			v += dense3[i][j] * x.Component(j)[0]
		}
		y.Component(i)[0] = v
	}
	return y
}

func TestDenseSymmetric(t *testing.T) {
	a := OperatorFunc(applyDense)
	shape := vecfield.Shape{1, 1, 1}
	b, _ := vecfield.New(shape, []complex128{1}, []complex128{2i}, []complex128{-1})

	s, termErr := Init(a, vecfield.Zeros(shape), b, 1e-12)
	for i := 0; i < 3; i++ {
		s = Iterate(a, s, vecfield.Zeros(shape))
	}
	if s.Err > termErr {
		t.Fatalf("no convergence within dimension: err %v", s.Err)
	}
	res := vecfield.Norm(vecfield.Sub(a.Apply(s.X, vecfield.Zeros(shape)), b))
	if res > 1e-10 {
		t.Fatalf("true residual %v", res)
	}
}

func TestConvergeLossy(t *testing.T) {
	shape := vecfield.Shape{6, 6, 6}
	op, err := operator.New(shape, operator.UniformThickness(1), operator.PmlParams{WEff: 1, M: 4, LnR: -16})
	if err != nil {
		t.Fatal(err)
	}
	z := vecfield.Uniform(shape, -(1 + 1i))
	b := vecfield.Delta(shape, 0, 3, 3, 3, 1)

	s, termErr := Init(op, z, b, 1e-8)
	prev := s.Err
	for i := 0; i < 500 && s.Err > termErr; i++ {
		s = Iterate(op, s, z)
		if math.IsNaN(s.Err) {
			t.Fatal("breakdown")
		}
	}
	if s.Err > termErr {
		t.Fatalf("no convergence: %v > %v (started at %v)", s.Err, termErr, prev)
	}
	res := vecfield.Norm(vecfield.Sub(op.Apply(s.X, z), b))
	if res > 1e-6 {
		t.Fatalf("true residual %v", res)
	}
}

func TestZeroResidual(t *testing.T) {
	a := OperatorFunc(applyDense)
	shape := vecfield.Shape{1, 1, 1}
	s, termErr := Init(a, vecfield.Zeros(shape), vecfield.Zeros(shape), 1e-6)
	s = Iterate(a, s, vecfield.Zeros(shape))
	switch {
	case termErr != 0:
		t.Fatal("unexpected threshold")
	case s.Err != 0:
		t.Fatalf("unexpected error %v", s.Err)
	case !vecfield.Equal(s.X, vecfield.Zeros(shape)):
		t.Fatal("solution moved away from zero")
	}
}
