// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fdfd solves the frequency-domain wave equation
//
//	(∇ × ∇ × - ω²ε) E = -iωJ
//
// for E on a regular grid with stretched-coordinate PML, using a matrix-free
// COCG iteration on the symmetrized operator. The primal and adjoint solves
// share the same operator and preconditioner; only the source scaling and
// the mapping of the result differ.
//
// The fields z = ω²ε and b = -iωJ are passed as vecfield.Field values of
// the problem shape.
package fdfd

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/curioloop/maxwell/operator"
	"github.com/curioloop/maxwell/vecfield"
)

var (
	// ErrInvalidTolerance is returned for a negative or NaN residual tolerance.
	ErrInvalidTolerance = errors.New("fdfd: invalid tolerance")

	// ErrInvalidIterations is returned for a negative iteration limit.
	ErrInvalidIterations = errors.New("fdfd: invalid iteration limit")

	// ErrHalted is returned when the monitor aborts a solve.
	ErrHalted = errors.New("fdfd: solve halted by monitor")
)

const (
	defaultEps          = 1e-6
	defaultMaxIter      = 1000000
	defaultMonitorEvery = 1000
)

// Monitor observes the progress of a solve. It receives the current
// (unpreconditioned) field and the error history so far, and must not retain
// or modify them. Returning a non-nil error aborts the solve.
type Monitor func(x vecfield.Field, errs []float64) error

// Termination specifies the stopping criteria of the iteration.
type Termination struct {
	// The iteration stops when the residual of the preconditioned system satisfied:
	//   ‖ r ‖ ≤ 𝚎𝚙𝚜 × ‖ b ‖
	// Zero means 1e-6.
	Eps float64
	// The iteration stops when the number of iterations reaches the limit.
	// Running out of iterations is not an error. Zero means 10⁶.
	MaxIterations int
}

// Problem specifies the grid and solver configuration of FDFD solves.
type Problem struct {
	Shape     vecfield.Shape      // Grid extents
	Thickness operator.Thickness  // PML thickness per axis side
	Pml       operator.PmlParams  // PML grading, zero value means operator.DefaultPmlParams
	Stop      Termination         // Stop condition
	Monitor   Monitor             // Optional progress hook
	// MonitorEvery is the cadence of Monitor calls, zero means every 1000
	// iterations. The monitor is always called once more when the loop ends.
	MonitorEvery int
}

// New validates the problem and builds the operator and preconditioners,
// which are shared by every solve of the returned Solver.
func (p *Problem) New(logger *Logger) (solver *Solver, err error) {

	stop := p.Stop
	pml := p.Pml
	every := p.MonitorEvery

	if pml == (operator.PmlParams{}) {
		pml = operator.DefaultPmlParams()
	}
	if stop.Eps == 0 {
		stop.Eps = defaultEps
	}
	if stop.MaxIterations == 0 {
		stop.MaxIterations = defaultMaxIter
	}
	if every <= 0 {
		every = defaultMonitorEvery
	}

	switch {
	case math.IsNaN(stop.Eps) || stop.Eps < 0:
		err = fmt.Errorf("%w: eps must be greater than 0, got %v", ErrInvalidTolerance, stop.Eps)
	case stop.MaxIterations < 0:
		err = fmt.Errorf("%w: max iteration must not less than 1, got %d", ErrInvalidIterations, stop.MaxIterations)
	}
	if err != nil {
		return
	}

	op, err := operator.New(p.Shape, p.Thickness, pml)
	if err != nil {
		return
	}

	solver = &Solver{
		solveSpec: solveSpec{
			stop:    stop,
			monitor: p.Monitor,
			every:   every,
			logger:  logger.withDefaults(),
		},
		op: op,
	}
	return
}

type solveSpec struct {
	stop    Termination
	monitor Monitor
	every   int
	logger  Logger
}

// Solver runs primal and adjoint solves of one Problem.
// It holds no per-solve state and is safe for concurrent use.
type Solver struct {
	solveSpec
	op *operator.Operator
}

// Operator returns the symmetrized operator shared by the solves.
func (s *Solver) Operator() *operator.Operator {
	return s.op
}

// Status is the reason the iteration stopped.
type Status int

const (
	// ConvResidual the residual dropped below the termination threshold.
	ConvResidual Status = iota
	// OverIterLimit the iteration limit was reached before convergence.
	OverIterLimit
	// HaltMonitor the monitor returned an error.
	HaltMonitor
	// HaltMonitorPanic the monitor panicked.
	HaltMonitorPanic
)

func (s Status) String() string {
	switch s {
	case ConvResidual:
		return "CONVERGENCE: NORM_OF_RESIDUAL_<=_EPS*NORM_OF_SOURCE"
	case OverIterLimit:
		return "STOP: TOTAL NO. of ITERATIONS REACHED LIMIT"
	case HaltMonitor:
		return "STOP: MONITOR REQUESTED HALT"
	case HaltMonitorPanic:
		return "STOP: MONITOR PANICKED"
	default:
		return "UNKNOWN STATUS"
	}
}

// Result contains the outcome of a solve.
type Result struct {
	OK      bool           // Whether the residual reached the threshold.
	X       vecfield.Field // Final electric field.
	Errs    []float64      // Residual norm after every iteration.
	Summary                // Solve summary.
}

// Summary contains a summary of the solve.
type Summary struct {
	Status   Status        // Reason the iteration stopped.
	NumIter  int           // Number of iterations performed.
	NumApply int           // Number of operator applications.
	TermErr  float64       // Termination threshold eps·‖b‖.
	Elapsed  time.Duration // Wall time of the solve.
}

// Solve returns the field E solving (∇×∇× - z) E = b.
//
// Non-convergence is reported through Result.OK and Result.Errs, not as an
// error. A monitor halt returns the partial result with an error wrapping
// ErrHalted.
func (s *Solver) Solve(z, b vecfield.Field) (*Result, error) {
	return s.run(z, b, false)
}

// SolveAdjoint returns the adjoint field for source b, that is conj(x) where
// x solves the transposed system (∇×∇× - z)ᵀ x = b.
func (s *Solver) SolveAdjoint(z, b vecfield.Field) (*Result, error) {
	return s.run(z, b, true)
}

func (s *Solver) run(z, b vecfield.Field, adjoint bool) (*Result, error) {
	if err := s.checkInput(z, b); err != nil {
		return nil, err
	}
	d := solveDriver{Solver: s, adjoint: adjoint, z: z}
	return d.mainLoop(b)
}

func (s *Solver) checkInput(z, b vecfield.Field) error {
	if err := z.Check(); err != nil {
		return fmt.Errorf("z: %w", err)
	}
	if err := b.Check(); err != nil {
		return fmt.Errorf("b: %w", err)
	}
	if want := s.op.Shape(); z.Shape != want || b.Shape != want {
		return fmt.Errorf("%w: z %v and b %v, problem %v",
			vecfield.ErrShapeMismatch, z.Shape, b.Shape, want)
	}
	return nil
}

// Solve is the one-shot form of Problem.New followed by Solver.Solve.
// It returns the field and the residual history.
func Solve(z, b vecfield.Field, th operator.Thickness, pml operator.PmlParams,
	eps float64, maxIters int, monitor Monitor, monitorEvery int) (vecfield.Field, []float64, error) {
	return solveOnce(z, b, th, pml, eps, maxIters, monitor, monitorEvery, false)
}

// SolveAdjoint is the one-shot form of Problem.New followed by Solver.SolveAdjoint.
func SolveAdjoint(z, b vecfield.Field, th operator.Thickness, pml operator.PmlParams,
	eps float64, maxIters int, monitor Monitor, monitorEvery int) (vecfield.Field, []float64, error) {
	return solveOnce(z, b, th, pml, eps, maxIters, monitor, monitorEvery, true)
}

func solveOnce(z, b vecfield.Field, th operator.Thickness, pml operator.PmlParams,
	eps float64, maxIters int, monitor Monitor, monitorEvery int, adjoint bool) (vecfield.Field, []float64, error) {

	switch {
	case !(eps > 0):
		return vecfield.Field{}, nil, fmt.Errorf("%w: eps must be greater than 0, got %v", ErrInvalidTolerance, eps)
	case maxIters < 1:
		return vecfield.Field{}, nil, fmt.Errorf("%w: max iteration must not less than 1, got %d", ErrInvalidIterations, maxIters)
	}

	p := Problem{
		Shape:        b.Shape,
		Thickness:    th,
		Pml:          pml,
		Stop:         Termination{Eps: eps, MaxIterations: maxIters},
		Monitor:      monitor,
		MonitorEvery: monitorEvery,
	}
	s, err := p.New(nil)
	if err != nil {
		return vecfield.Field{}, nil, err
	}
	r, err := s.run(z, b, adjoint)
	if r == nil {
		return vecfield.Field{}, nil, err
	}
	return r.X, r.Errs, err
}
