// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdfd

import (
	"fmt"
	"slices"
	"time"

	"github.com/curioloop/maxwell/cocg"
	"github.com/curioloop/maxwell/vecfield"
)

// solveDriver owns the state of one solve.
//
// The operator is symmetrized as invPre·A·pre == pre·Aᵀ·invPre, so the
// adjoint system is solved with the same operator by scaling the source
// with pre instead of invPre and mapping the result through conj(x·invPre)
// instead of x·pre.
type solveDriver struct {
	*Solver
	adjoint  bool
	z        vecfield.Field
	numApply int
	start    time.Time
}

func (d *solveDriver) apply(x, z vecfield.Field) vecfield.Field {
	d.numApply++
	return d.op.Apply(x, z)
}

func (d *solveDriver) precondition(b vecfield.Field) vecfield.Field {
	if d.adjoint {
		return vecfield.Mul(b, d.op.Pre())
	}
	return vecfield.Mul(b, d.op.InvPre())
}

func (d *solveDriver) unprecondition(x vecfield.Field) vecfield.Field {
	if d.adjoint {
		return vecfield.Conj(vecfield.Mul(x, d.op.InvPre()))
	}
	return vecfield.Mul(x, d.op.Pre())
}

// notify calls the monitor with the unpreconditioned field. A monitor error
// or panic is turned into a halt status.
func (d *solveDriver) notify(x vecfield.Field, errs []float64) (status Status, err error) {
	if d.monitor == nil {
		return ConvResidual, nil
	}
	defer func() {
		if r := recover(); r != nil {
			status = HaltMonitorPanic
			err = fmt.Errorf("%w: monitor panic: %v", ErrHalted, r)
		}
	}()
	if e := d.monitor(d.unprecondition(x), slices.Clone(errs)); e != nil {
		return HaltMonitor, fmt.Errorf("%w: %w", ErrHalted, e)
	}
	return ConvResidual, nil
}

// mainLoop runs the COCG iteration until the residual drops below the
// threshold, the iteration limit is reached or the monitor halts.
func (d *solveDriver) mainLoop(b vecfield.Field) (*Result, error) {
	d.start = time.Now()
	log := &d.logger
	a := cocg.OperatorFunc(d.apply)

	b = d.precondition(b)
	state, termErr := cocg.Init(a, d.z, b, d.stop.Eps)
	d.printInit(b, termErr)

	var (
		err    error
		halted bool
	)
	status := OverIterLimit
	errs := make([]float64, 0, min(d.stop.MaxIterations, 1024))

	for i := 0; i < d.stop.MaxIterations; i++ {
		state = cocg.Iterate(a, state, d.z)
		errs = append(errs, state.Err)
		d.printIter(i, state)

		if i%d.every == 0 {
			if log.enable(LogEval) {
				log.log("At iterate %5d    |r|= %12.5e\n", i+1, state.Err)
			}
			var st Status
			if st, err = d.notify(state.X, errs); err != nil {
				status, halted = st, true
				break
			}
		}
		if state.Err <= termErr {
			status = ConvResidual
			break
		}
	}

	if !halted {
		if st, e := d.notify(state.X, errs); e != nil {
			status, err = st, e
		}
	}

	res := &Result{
		OK:   status == ConvResidual,
		X:    d.unprecondition(state.X),
		Errs: errs,
		Summary: Summary{
			Status:   status,
			NumIter:  len(errs),
			NumApply: d.numApply,
			TermErr:  termErr,
			Elapsed:  time.Since(d.start),
		},
	}
	d.printExit(res)
	return res, err
}

func (d *solveDriver) mode() string {
	if d.adjoint {
		return "ADJOINT"
	}
	return "PRIMAL"
}

func (d *solveDriver) printInit(b vecfield.Field, termErr float64) {
	log := &d.logger
	if !log.enable(LogLast) {
		return
	}
	s := d.op.Shape()
	log.log("RUNNING THE COCG CODE (%s)\n", d.mode())
	log.log("           * * *\n")
	log.log("Grid = %d x %d x %d    N = %d\n", s[0], s[1], s[2], 3*s.Len())
	log.log("PML  = %v    w_eff = %g    m = %g    ln(R) = %g\n",
		d.op.Thickness(), d.op.Params().WEff, d.op.Params().M, d.op.Params().LnR)
	log.log("Eps  = %10.3e    |b| = %12.5e    term = %12.5e\n", d.stop.Eps, vecfield.Norm(b), termErr)

	if log.enable(LogEval) {
		log.out("\n   it        |r|            rho                        alpha\n")
	}
	if log.enable(LogVerbose) {
		for i, c := range [3]string{"x", "y", "z"} {
			log.log("|b_%s| = %12.5e\n", c, vecfield.Norm(component(b, i)))
		}
	}
}

func (d *solveDriver) printIter(i int, s cocg.State) {
	log := &d.logger
	if log.enable(LogEval) {
		log.out(" %4d %12.5e %24.5e %24.5e\n", i+1, s.Err, s.Rho, s.Alpha)
	}
	if log.enable(LogTrace) {
		log.log("\n\nITERATION %5d\n", i+1)
		log.log("rho= %12.5e    alpha= %12.5e    beta= %12.5e    |r|= %12.5e\n", s.Rho, s.Alpha, s.Beta, s.Err)
	}
}

func (d *solveDriver) printExit(r *Result) {
	log := &d.logger
	if !log.enable(LogLast) {
		return
	}
	last := 0.0
	if len(r.Errs) > 0 {
		last = r.Errs[len(r.Errs)-1]
	}
	log.log("\n           * * *\n")
	log.log("Tit   = total number of iterations\n")
	log.log("Tap   = total number of operator applications\n")
	log.log("Res   = norm of the final residual\n")
	log.log("Term  = termination threshold\n")
	log.log("\n           * * *\n")
	log.log("\n   N      Tit      Tap      Res          Term\n")
	log.log("%5d %8d %8d %12.5e %12.5e\n", 3*d.op.Shape().Len(), r.NumIter, r.NumApply, last, r.TermErr)
	log.log("\n%s\n", r.Status)

	if log.enable(LogVerbose) {
		for i, c := range [3]string{"x", "y", "z"} {
			log.log("|E_%s| = %12.5e\n", c, vecfield.Norm(component(r.X, i)))
		}
	}
	log.log("\n Total User time: %s\n", formatNs(r.Elapsed.Nanoseconds()))
}

// component returns a field holding only component i of f.
func component(f vecfield.Field, i int) vecfield.Field {
	c := vecfield.Zeros(f.Shape)
	copy(c.Component(i), f.Component(i))
	return c
}

func formatNs(nanoseconds int64) string {
	switch {
	case nanoseconds >= 1e9: // Convert to seconds
		return fmt.Sprintf("%.2f s", float64(nanoseconds)/1e9)
	case nanoseconds >= 1e6: // Convert to milliseconds
		return fmt.Sprintf("%.2f ms", float64(nanoseconds)/1e6)
	case nanoseconds >= 1e3: // Convert to microseconds
		return fmt.Sprintf("%.2f µs", float64(nanoseconds)/1e3)
	default: // Keep in nanoseconds
		return fmt.Sprintf("%.2f ns", float64(nanoseconds))
	}
}
