package optimization

// steepestDescent follows the negative gradient. It is stateless: the
// direction is always a descent direction unless the gradient is zero, which
// is the convergence condition itself.
type steepestDescent struct{}

func (steepestDescent) Name() Method { return MethodSteepestDescent }

func (steepestDescent) Direction(dst, _, grad []float64) *Condition {
	for i, g := range grad {
		dst[i] = -g
	}
	return nil
}

func (steepestDescent) Observe(_, _ []float64) *Condition { return nil }
