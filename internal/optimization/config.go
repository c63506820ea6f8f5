package optimization

import "math"

// Method selects the descent strategy for a run.
type Method string

const (
	MethodSteepestDescent Method = "steepest_descent"
	MethodNewton          Method = "newton"
	MethodDFP             Method = "dfp"
)

// Methods lists the supported method tags.
func Methods() []Method {
	return []Method{MethodSteepestDescent, MethodNewton, MethodDFP}
}

// StepPolicy controls how the line search picks a step length.
//
// When Fixed > 0 every iteration takes the configured constant step.
// Otherwise backtracking Armijo is used: starting from Alpha0 the step is
// multiplied by Shrink until the sufficient decrease condition
//
//	f(x + a*d) <= f(x) + C1*a*g'd
//
// holds, the step falls below AlphaMin, or MaxTrials contractions were made.
type StepPolicy struct {
	Fixed     float64 `json:"fixed,omitempty"`
	Alpha0    float64 `json:"alpha0,omitempty"`
	C1        float64 `json:"c1,omitempty"`
	Shrink    float64 `json:"shrink,omitempty"`
	AlphaMin  float64 `json:"alpha_min,omitempty"`
	MaxTrials int     `json:"max_trials,omitempty"`
}

// RunConfig carries everything a single run needs besides the problem
// itself. It is copied on entry; a run never mutates the caller's value.
type RunConfig struct {
	Method Method    `json:"method"`
	X0     []float64 `json:"x0"`

	// GradTol is the gradient norm convergence tolerance. Required.
	GradTol float64 `json:"grad_tol"`

	// ObjTol, when positive, enables the relative objective change
	// criterion in addition to the gradient norm.
	ObjTol float64 `json:"obj_tol,omitempty"`

	// MaxIterations caps the number of steps taken. Required, >= 1.
	MaxIterations int `json:"max_iterations"`

	Step StepPolicy `json:"step"`

	// PenaltyGrowth multiplies the problem's penalty weight once per
	// iteration when > 1 (penalty continuation). Values <= 1 keep the
	// weight fixed.
	PenaltyGrowth float64 `json:"penalty_growth,omitempty"`

	// DivergenceFactor declares the run failed when the augmented
	// objective rises above DivergenceFactor*max(1, |f0|) while still
	// increasing. Defaults to 1e6.
	DivergenceFactor float64 `json:"divergence_factor,omitempty"`

	// Events, when non-nil, receives a copy of every iteration record as
	// it is produced. Sends never block: if the consumer lags, records
	// are dropped from the channel but kept in the result.
	Events chan<- IterationRecord `json:"-"`
}

// Validate applies defaults to a copy of the config and checks it against
// the problem, including the problem's own start-point preconditions. The
// engine performs the same checks at the top of Run; callers that spawn runs
// asynchronously use Validate to reject bad requests up front.
func (c RunConfig) Validate(p Problem) error {
	cc := c
	cc.setDefaults()
	if err := cc.validate(p.Dims()); err != nil {
		return err
	}
	if sv, ok := p.(StartValidator); ok {
		return sv.ValidateStart(cc.X0)
	}
	return nil
}

func (c *RunConfig) setDefaults() {
	if c.Method == "" {
		c.Method = MethodSteepestDescent
	}
	if c.Step.Fixed <= 0 {
		if c.Step.Alpha0 <= 0 {
			c.Step.Alpha0 = 1.0
		}
		if c.Step.C1 <= 0 {
			c.Step.C1 = 1e-4
		}
		if c.Step.Shrink <= 0 || c.Step.Shrink >= 1 {
			c.Step.Shrink = 0.5
		}
		if c.Step.AlphaMin <= 0 {
			c.Step.AlphaMin = 1e-12
		}
		if c.Step.MaxTrials <= 0 {
			c.Step.MaxTrials = 50
		}
	}
	if c.DivergenceFactor <= 0 {
		c.DivergenceFactor = 1e6
	}
}

func (c *RunConfig) validate(dims int) error {
	switch c.Method {
	case MethodSteepestDescent, MethodNewton, MethodDFP:
	default:
		return NewValidationError("method", "unknown method %q", c.Method)
	}
	if len(c.X0) != dims {
		return NewValidationError("x0", "expected %d components, got %d", dims, len(c.X0))
	}
	for i, v := range c.X0 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewValidationError("x0", "component %d is not finite", i)
		}
	}
	if c.GradTol <= 0 {
		return NewValidationError("grad_tol", "must be > 0, got %g", c.GradTol)
	}
	if c.MaxIterations < 1 {
		return NewValidationError("max_iterations", "must be >= 1, got %d", c.MaxIterations)
	}
	return nil
}
