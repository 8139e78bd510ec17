// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdfd

import "github.com/curioloop/maxwell/vecfield"

// VJP returns the reverse-mode gradients of a primal solve x = Solve(z, b)
// for the upstream cotangent g on x:
//
//	gradZ = Re(conj(xAdj) ⊙ x)
//	gradB = xAdj
//
// where xAdj is the adjoint solve with source g. gradZ is the gradient with
// respect to real perturbations of z.
func (s *Solver) VJP(z, x, g vecfield.Field) (gradZ, gradB vecfield.Field, err error) {
	if err = s.checkInput(z, x); err != nil {
		return
	}
	r, err := s.SolveAdjoint(z, g)
	if err != nil {
		return
	}
	gradB = r.X
	gradZ = vecfield.Real(vecfield.Mul(vecfield.Conj(gradB), x))
	return
}
