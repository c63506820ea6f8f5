package optimization

import (
	"gonum.org/v1/gonum/mat"
)

// Status is the terminal state of an optimization run.
type Status string

const (
	// StatusConverged means a stopping criterion was met.
	StatusConverged Status = "converged"
	// StatusMaxIterations means the iteration cap was reached without convergence.
	StatusMaxIterations Status = "max_iterations"
	// StatusFailed means the run diverged or could not make progress.
	StatusFailed Status = "failed"
	// StatusCancelled means the run was cancelled cooperatively at an
	// iteration boundary and the result holds a partial trajectory.
	StatusCancelled Status = "cancelled"
)

// ConditionCode identifies a recoverable per-iteration anomaly. Conditions
// are recorded on the iteration that produced them, never raised.
type ConditionCode string

const (
	CondNonDescentDirection ConditionCode = "non_descent_direction"
	CondHessianNotPD        ConditionCode = "hessian_not_pd"
	CondStalledLineSearch   ConditionCode = "stalled_line_search"
	CondUpdateSkipped       ConditionCode = "quasi_newton_update_skipped"
	CondDivergence          ConditionCode = "divergence"
)

// Condition is a non-fatal warning attached to an IterationRecord.
type Condition struct {
	Code    ConditionCode `json:"code"`
	Message string        `json:"message"`
}

// EvalCounts tracks cumulative evaluation counters for a problem instance.
type EvalCounts struct {
	Objective int `json:"objective"`
	Gradient  int `json:"gradient"`
	Hessian   int `json:"hessian"`
}

// Problem evaluates the augmented objective and its derivatives at a point.
// Implementations own their evaluation counters; the engine reads them
// through Counts after every iteration.
type Problem interface {
	// Dims returns the number of optimization variables.
	Dims() int

	// Eval returns the augmented objective value at x.
	Eval(x []float64) float64

	// Gradient stores the gradient of the augmented objective at x into dst.
	Gradient(dst, x []float64)

	// Hessian stores the Hessian of the augmented objective at x into dst.
	Hessian(dst *mat.SymDense, x []float64)

	// Counts returns the cumulative evaluation counters.
	Counts() EvalCounts
}

// Constrained is implemented by problems that can split the augmented
// objective into a raw cost and a constraint violation measure. The engine
// uses it to enrich iteration records for tables and contour overlays.
type Constrained interface {
	CostViolation(x []float64) (cost, violation float64)
}

// PenaltyContinuation is implemented by problems whose penalty weight grows
// across iterations. The engine calls ScalePenalty once per iteration when
// the run config asks for continuation.
type PenaltyContinuation interface {
	ScalePenalty(factor float64)
}

// StartValidator lets a problem reject an initial point before the loop
// starts (for the tank problem: D0 > 0 and L0 > 0 are hard preconditions).
type StartValidator interface {
	ValidateStart(x []float64) error
}

// IterationRecord is one row of the optimization trajectory. Record 0 is the
// initial iterate; indices increase strictly by one.
type IterationRecord struct {
	Iteration int         `json:"iteration"`
	Point     []float64   `json:"point"`
	Objective float64     `json:"objective"`
	Cost      float64     `json:"cost"`
	Violation float64     `json:"violation"`
	GradNorm  float64     `json:"grad_norm"`
	Step      float64     `json:"step"`
	Evals     EvalCounts  `json:"evals"`
	Warnings  []Condition `json:"warnings,omitempty"`
}

// Result is the immutable outcome of a run. Records are in iteration order
// and are consumed verbatim by trajectory plots and iteration tables.
type Result struct {
	Status         Status            `json:"status"`
	Method         Method            `json:"method"`
	FinalPoint     []float64         `json:"final_point"`
	FinalObjective float64           `json:"final_objective"`
	Iterations     int               `json:"iterations"`
	Records        []IterationRecord `json:"records"`
	Evals          EvalCounts        `json:"evals"`
}

// Final returns the last recorded iteration, or nil for an empty trajectory.
func (r *Result) Final() *IterationRecord {
	if len(r.Records) == 0 {
		return nil
	}
	return &r.Records[len(r.Records)-1]
}
