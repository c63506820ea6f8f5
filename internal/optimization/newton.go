package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// maxHessianMods bounds how many times the identity multiple is escalated
// before giving up on the Newton step for the current iteration.
const maxHessianMods = 20

// newton solves H d = -g via Cholesky factorization. Away from a minimizer
// the Hessian may not be positive definite; in that case successively larger
// multiples of the identity are added until the factorization succeeds, and
// as a last resort the steepest descent direction is used for the iteration.
// Both recoveries surface as a HessianNotPD condition on the record.
type newton struct {
	problem  Problem
	increase float64
	hess     *mat.SymDense
	mod      *mat.SymDense
	chol     mat.Cholesky
}

func newNewton(p Problem) *newton {
	dim := p.Dims()
	return &newton{
		problem:  p,
		increase: 10,
		hess:     mat.NewSymDense(dim, nil),
		mod:      mat.NewSymDense(dim, nil),
	}
}

func (n *newton) Name() Method { return MethodNewton }

func (n *newton) Direction(dst, x, grad []float64) *Condition {
	dim := len(x)
	n.problem.Hessian(n.hess, x)

	d := mat.NewVecDense(dim, dst)
	g := mat.NewVecDense(dim, grad)

	if n.chol.Factorize(n.hess) && n.chol.SolveVecTo(d, g) == nil {
		d.ScaleVec(-1, d)
		return nil
	}

	// Not positive definite. Escalate tau until H + tau*I factorizes.
	scale := 1.0
	for i := 0; i < dim; i++ {
		scale = math.Max(scale, math.Abs(n.hess.At(i, i)))
	}
	tau := 1e-8 * scale
	for i := 0; i < maxHessianMods; i++ {
		n.mod.CopySym(n.hess)
		for j := 0; j < dim; j++ {
			n.mod.SetSym(j, j, n.hess.At(j, j)+tau)
		}
		if n.chol.Factorize(n.mod) && n.chol.SolveVecTo(d, g) == nil {
			d.ScaleVec(-1, d)
			return &Condition{
				Code:    CondHessianNotPD,
				Message: fmt.Sprintf("hessian regularized with tau=%g", tau),
			}
		}
		tau *= n.increase
	}

	for i := range dst {
		dst[i] = -grad[i]
	}
	return &Condition{
		Code:    CondHessianNotPD,
		Message: "hessian not positive definite, using steepest descent direction",
	}
}

func (n *newton) Observe(_, _ []float64) *Condition { return nil }
