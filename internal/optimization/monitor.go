package optimization

import "math"

// Verdict is the outcome of a convergence check.
type Verdict int

const (
	VerdictContinue Verdict = iota
	VerdictConverged
	VerdictMaxIterations
)

// Monitor evaluates the stopping predicates after each iterate. The gradient
// norm criterion is always active; the relative objective change criterion
// participates only when ObjTol is positive.
type Monitor struct {
	GradTol       float64
	ObjTol        float64
	MaxIterations int
}

// Check inspects the trajectory so far and decides whether the loop stops.
// There is no silent-continue path: with a finite iteration cap the loop
// always terminates.
func (m Monitor) Check(records []IterationRecord) Verdict {
	if len(records) == 0 {
		return VerdictContinue
	}
	last := records[len(records)-1]

	if last.GradNorm < m.GradTol {
		return VerdictConverged
	}
	if m.ObjTol > 0 && len(records) >= 2 {
		prev := records[len(records)-2]
		rel := math.Abs(last.Objective-prev.Objective) / math.Max(1, math.Abs(prev.Objective))
		if rel < m.ObjTol {
			return VerdictConverged
		}
	}
	if last.Iteration >= m.MaxIterations {
		return VerdictMaxIterations
	}
	return VerdictContinue
}
