package optimization

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// lineSearch selects a step length along dir from x, where fx is the
// objective at x and grad the gradient at x. It returns the chosen step, the
// objective at the new point, and an optional non-fatal condition.
//
// A fixed policy returns the configured constant unconditionally. The
// backtracking policy contracts the step until the Armijo sufficient
// decrease condition holds; if the step floor is hit first the floor value
// is returned together with a StalledLineSearch condition.
//
// In both modes a direction with non-negative directional derivative is
// rejected with errNonDescent before any trial evaluation.
func lineSearch(p Problem, x, dir, grad []float64, fx float64, pol StepPolicy) (alpha, fNew float64, cond *Condition, err error) {
	slope := floats.Dot(grad, dir)
	if slope >= 0 {
		return 0, fx, nil, errNonDescent
	}

	trial := make([]float64, len(x))

	if pol.Fixed > 0 {
		floats.AddScaledTo(trial, x, pol.Fixed, dir)
		return pol.Fixed, p.Eval(trial), nil, nil
	}

	alpha = pol.Alpha0
	for i := 0; i < pol.MaxTrials && alpha >= pol.AlphaMin; i++ {
		floats.AddScaledTo(trial, x, alpha, dir)
		fNew = p.Eval(trial)
		if fNew <= fx+pol.C1*alpha*slope {
			return alpha, fNew, nil, nil
		}
		alpha *= pol.Shrink
	}

	// No step satisfied sufficient decrease; take the floor step and let
	// the caller decide whether the run is still making progress.
	if alpha < pol.AlphaMin {
		alpha = pol.AlphaMin
	}
	floats.AddScaledTo(trial, x, alpha, dir)
	fNew = p.Eval(trial)
	return alpha, fNew, &Condition{
		Code:    CondStalledLineSearch,
		Message: fmt.Sprintf("sufficient decrease not met, falling back to step %g", alpha),
	}, nil
}
