package optimization

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// curvatureTol is the smallest denominator accepted by the DFP update.
// Below it the update is ill-defined and is skipped for the iteration.
const curvatureTol = 1e-12

// dfp maintains an approximate inverse Hessian B, seeded as the identity,
// and searches along -B*g. After each accepted step B receives the DFP
// rank-2 update
//
//	B <- B + s s' / (s'y) - (B y)(B y)' / (y' B y)
//
// where s is the step vector and y the gradient difference. B stays positive
// definite as long as updates with non-positive curvature are skipped, so
// the direction is a descent direction whenever the gradient is nonzero.
type dfp struct {
	b    *mat.Dense
	by   *mat.VecDense
	t1   *mat.Dense
	t2   *mat.Dense
	dims int
}

func newDFP(dims int) *dfp {
	b := mat.NewDense(dims, dims, nil)
	for i := 0; i < dims; i++ {
		b.Set(i, i, 1)
	}
	return &dfp{
		b:    b,
		by:   mat.NewVecDense(dims, nil),
		t1:   mat.NewDense(dims, dims, nil),
		t2:   mat.NewDense(dims, dims, nil),
		dims: dims,
	}
}

func (d *dfp) Name() Method { return MethodDFP }

func (d *dfp) Direction(dst, _, grad []float64) *Condition {
	v := mat.NewVecDense(d.dims, dst)
	v.MulVec(d.b, mat.NewVecDense(d.dims, grad))
	v.ScaleVec(-1, v)
	return nil
}

func (d *dfp) Observe(s, y []float64) *Condition {
	sy := floats.Dot(s, y)
	if sy <= curvatureTol {
		return &Condition{
			Code:    CondUpdateSkipped,
			Message: "non-positive curvature, keeping previous inverse hessian",
		}
	}

	yVec := mat.NewVecDense(d.dims, y)
	d.by.MulVec(d.b, yVec)
	yby := mat.Dot(yVec, d.by)
	if yby <= curvatureTol {
		return &Condition{
			Code:    CondUpdateSkipped,
			Message: "degenerate curvature denominator, keeping previous inverse hessian",
		}
	}

	sVec := mat.NewVecDense(d.dims, s)
	d.t1.Outer(1/sy, sVec, sVec)
	d.t2.Outer(1/yby, d.by, d.by)
	d.b.Add(d.b, d.t1)
	d.b.Sub(d.b, d.t2)
	return nil
}
