// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vecfield

import (
	"errors"
	"testing"
)

func constField(shape Shape, x, y, z complex128) Field {
	f := Zeros(shape)
	for i := 0; i < shape.Len(); i++ {
		f.X[i], f.Y[i], f.Z[i] = x, y, z
	}
	return f
}

func TestZeros(t *testing.T) {
	f := Zeros(Shape{10, 20, 30})
	switch {
	case f.Shape != Shape{10, 20, 30}:
		t.Fatal("unexpected shape")
	case len(f.X) != 6000 || len(f.Y) != 6000 || len(f.Z) != 6000:
		t.Fatal("unexpected component length")
	case Norm(f) != 0:
		t.Fatal("zeros is not zero")
	}
}

func TestNewCopies(t *testing.T) {
	x := []complex128{1, 2}
	f, err := New(Shape{1, 1, 2}, x, []complex128{3, 4}, []complex128{5, 6})
	if err != nil {
		t.Fatal(err)
	}
	x[0] = 100
	if f.X[0] != 1 {
		t.Fatal("New aliases caller storage")
	}

	_, err = New(Shape{1, 1, 2}, x, []complex128{3}, []complex128{5, 6})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
}

func TestArithmetic(t *testing.T) {
	s := Shape{1, 1, 1}
	a, b := constField(s, 1, 2, 3), constField(s, 4, 5, 6)

	cases := []struct {
		name string
		got  Field
		want Field
	}{
		{"add", Add(a, b), constField(s, 5, 7, 9)},
		{"sub", Sub(a, b), constField(s, -3, -3, -3)},
		{"mul", Mul(a, b), constField(s, 4, 10, 18)},
		{"div", Div(b, a), constField(s, 4, 2.5, 2)},
		{"scale", Scale(2, a), constField(s, 2, 4, 6)},
		{"axpy", AddScaled(a, 2, b), constField(s, 9, 12, 15)},
		{"conj", Conj(constField(s, 1+1i, 2i, 3)), constField(s, 1-1i, -2i, 3)},
		{"real", Real(constField(s, 1+1i, 2i, 3)), constField(s, 1, 0, 3)},
		{"recip", Reciprocal(constField(s, 2, 4i, 1)), constField(s, 0.5, -0.25i, 1)},
		{"sqrt", Sqrt(constField(s, 4, -1, 1)), constField(s, 2, 1i, 1)},
	}
	for _, c := range cases {
		if !Equal(c.got, c.want) {
			t.Errorf("%s: got %v want %v", c.name, c.got, c.want)
		}
	}

	if !Equal(a, constField(s, 1, 2, 3)) || !Equal(b, constField(s, 4, 5, 6)) {
		t.Fatal("operands were mutated")
	}
}

func TestDotIsBilinear(t *testing.T) {
	a := constField(Shape{1, 1, 5}, 1+1i, 1+1i, 1+1i)
	if d := Dot(a, a); d != 30i {
		t.Fatalf("unexpected dot %v", d)
	}
	// A Hermitian product would give |a|² = 30.
	if d := Dot(Conj(a), a); d != 30 {
		t.Fatalf("unexpected conjugated dot %v", d)
	}
}

func TestNorm(t *testing.T) {
	a := constField(Shape{1, 1, 3}, 3i, 3i, 3i)
	if n := Norm(a); n != 9 {
		t.Fatalf("unexpected norm %v", n)
	}
}

func TestDelta(t *testing.T) {
	s := Shape{3, 4, 5}
	f := Delta(s, 2, 1, 2, 3, 1)
	switch {
	case f.Z[s.Index(1, 2, 3)] != 1:
		t.Fatal("delta value misplaced")
	case Norm(f) != 1:
		t.Fatal("delta has extra values")
	case s.Index(1, 2, 3) != 1*20+2*5+3:
		t.Fatal("unexpected row-major index")
	}
}

func TestMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on mismatched shapes")
		}
	}()
	Add(Zeros(Shape{1, 1, 2}), Zeros(Shape{1, 2, 1}))
}
