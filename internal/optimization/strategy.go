package optimization

// Strategy produces descent directions for the run loop. Each strategy owns
// whatever per-run state it needs (the DFP inverse Hessian, the Newton
// factorization workspace); a strategy instance is used by exactly one run.
type Strategy interface {
	// Name returns the method tag the strategy implements.
	Name() Method

	// Direction stores the search direction at x into dst, given the
	// gradient at x. A non-nil condition reports a recoverable anomaly
	// (e.g. Hessian regularization) that the engine records.
	Direction(dst, x, grad []float64) *Condition

	// Observe is called after an accepted step with s = x_new - x_old and
	// y = grad_new - grad_old, letting quasi-Newton strategies refresh
	// their curvature estimate.
	Observe(s, y []float64) *Condition
}

// newStrategy builds the strategy for a validated run config.
func newStrategy(method Method, p Problem) Strategy {
	switch method {
	case MethodNewton:
		return newNewton(p)
	case MethodDFP:
		return newDFP(p.Dims())
	default:
		return steepestDescent{}
	}
}
