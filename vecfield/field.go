// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vecfield implements the three-component complex grid field used by
// the FDFD operator and solver.
//
// A Field is treated as an immutable value: every function in this package
// allocates its result and never writes to its arguments.
package vecfield

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when a component length disagrees with the field shape.
var ErrShapeMismatch = errors.New("vecfield: shape mismatch")

// Shape is the extent (nx, ny, nz) of a regular 3D grid.
// Values are stored row-major with z varying fastest.
type Shape [3]int

// Len returns the number of grid points.
func (s Shape) Len() int {
	return s[0] * s[1] * s[2]
}

// Strides returns the flat index step along each axis.
func (s Shape) Strides() [3]int {
	return [3]int{s[1] * s[2], s[2], 1}
}

// Index returns the flat index of grid point (i, j, k).
func (s Shape) Index(i, j, k int) int {
	return (i*s[1]+j)*s[2] + k
}

// Valid reports whether every extent is non-negative.
func (s Shape) Valid() bool {
	return s[0] >= 0 && s[1] >= 0 && s[2] >= 0
}

// Field holds the x-, y- and z-components of a complex vector field sampled
// on a grid of the given Shape.
type Field struct {
	Shape   Shape
	X, Y, Z []complex128
}

// Zeros returns the zero field of the given shape.
func Zeros(shape Shape) Field {
	n := shape.Len()
	return Field{
		Shape: shape,
		X:     make([]complex128, n),
		Y:     make([]complex128, n),
		Z:     make([]complex128, n),
	}
}

// New builds a field from copies of x, y and z.
func New(shape Shape, x, y, z []complex128) (Field, error) {
	f := Field{Shape: shape, X: x, Y: y, Z: z}
	if err := f.Check(); err != nil {
		return Field{}, err
	}
	return f.Clone(), nil
}

// Delta returns a field that is zero except for value v on component comp at (i, j, k).
func Delta(shape Shape, comp, i, j, k int, v complex128) Field {
	f := Zeros(shape)
	f.Component(comp)[shape.Index(i, j, k)] = v
	return f
}

// Uniform returns a field whose components are all v.
func Uniform(shape Shape, v complex128) Field {
	f := Zeros(shape)
	for c := 0; c < 3; c++ {
		a := f.Component(c)
		for i := range a {
			a[i] = v
		}
	}
	return f
}

// Component returns the i-th component (0, 1, 2 for x, y, z).
// The returned slice aliases the field storage.
func (f Field) Component(i int) []complex128 {
	switch i {
	case 0:
		return f.X
	case 1:
		return f.Y
	case 2:
		return f.Z
	}
	panic("vecfield: component index out of range")
}

// Components returns the three components in order.
func (f Field) Components() [3][]complex128 {
	return [3][]complex128{f.X, f.Y, f.Z}
}

// Check reports ErrShapeMismatch if any component length differs from the shape.
func (f Field) Check() error {
	if !f.Shape.Valid() {
		return fmt.Errorf("%w: negative extent %v", ErrShapeMismatch, f.Shape)
	}
	n := f.Shape.Len()
	for i, c := range f.Components() {
		if len(c) != n {
			return fmt.Errorf("%w: component %d has %d values, shape %v needs %d",
				ErrShapeMismatch, i, len(c), f.Shape, n)
		}
	}
	return nil
}

// Clone returns a deep copy of f.
func (f Field) Clone() Field {
	return Field{
		Shape: f.Shape,
		X:     append([]complex128(nil), f.X...),
		Y:     append([]complex128(nil), f.Y...),
		Z:     append([]complex128(nil), f.Z...),
	}
}
