package optimization

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// parabola is f(x) = x*x in one dimension, just enough Problem for the line
// search to evaluate trial points.
type parabola struct{ counts EvalCounts }

func (p *parabola) Dims() int { return 1 }

func (p *parabola) Eval(x []float64) float64 {
	p.counts.Objective++
	return x[0] * x[0]
}

func (p *parabola) Gradient(dst, x []float64) {
	p.counts.Gradient++
	dst[0] = 2 * x[0]
}

func (p *parabola) Hessian(dst *mat.SymDense, _ []float64) {
	p.counts.Hessian++
	dst.SetSym(0, 0, 2)
}

func (p *parabola) Counts() EvalCounts { return p.counts }

func backtracking() StepPolicy {
	return StepPolicy{Alpha0: 1, C1: 1e-4, Shrink: 0.5, AlphaMin: 1e-12, MaxTrials: 50}
}

func TestLineSearchSatisfiesArmijo(t *testing.T) {
	p := &parabola{}
	x := []float64{1}
	dir := []float64{-2} // negative gradient
	grad := []float64{2}
	fx := p.Eval(x)

	pol := backtracking()
	alpha, fNew, cond, err := lineSearch(p, x, dir, grad, fx, pol)
	if err != nil {
		t.Fatal(err)
	}
	if cond != nil {
		t.Fatalf("unexpected condition %v", cond)
	}
	slope := grad[0] * dir[0]
	if fNew > fx+pol.C1*alpha*slope {
		t.Errorf("sufficient decrease violated: alpha=%g fNew=%g fx=%g", alpha, fNew, fx)
	}
}

func TestLineSearchFixedStep(t *testing.T) {
	p := &parabola{}
	x := []float64{1}
	dir := []float64{-2}
	grad := []float64{2}

	alpha, fNew, cond, err := lineSearch(p, x, dir, grad, p.Eval(x), StepPolicy{Fixed: 0.25})
	if err != nil {
		t.Fatal(err)
	}
	if cond != nil {
		t.Fatalf("unexpected condition %v", cond)
	}
	if alpha != 0.25 {
		t.Errorf("alpha = %g, want the configured constant", alpha)
	}
	if want := 0.5 * 0.5; math.Abs(fNew-want) > 1e-15 {
		t.Errorf("fNew = %g, want %g", fNew, want)
	}
}

func TestLineSearchRejectsUphillDirection(t *testing.T) {
	p := &parabola{}
	x := []float64{1}
	grad := []float64{2}
	dir := []float64{2} // along the gradient, uphill

	before := p.Counts().Objective
	_, _, _, err := lineSearch(p, x, dir, grad, 1, backtracking())
	if !errors.Is(err, errNonDescent) {
		t.Fatalf("err = %v, want errNonDescent", err)
	}
	if p.Counts().Objective != before {
		t.Error("uphill direction must be rejected before any trial evaluation")
	}
}

func TestLineSearchStallsAtFloor(t *testing.T) {
	p := &parabola{}
	x := []float64{1}
	// Claim a downhill slope for an uphill direction: every trial increases
	// the objective and the search contracts to the floor.
	dir := []float64{1}
	grad := []float64{-1}

	pol := backtracking()
	alpha, _, cond, err := lineSearch(p, x, dir, grad, p.Eval(x), pol)
	if err != nil {
		t.Fatal(err)
	}
	if cond == nil || cond.Code != CondStalledLineSearch {
		t.Fatalf("condition = %v, want %s", cond, CondStalledLineSearch)
	}
	if alpha != pol.AlphaMin {
		t.Errorf("alpha = %g, want the floor step %g", alpha, pol.AlphaMin)
	}
}
