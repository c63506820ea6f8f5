package tank

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/LucasRodriguesEstorckPinto/cylindrical-tank-cost-optimization/internal/optimization"
)

// defaultFDStep is the central difference step used when numeric derivatives
// are requested without an explicit epsilon.
const defaultFDStep = 1e-6

// Model evaluates the augmented objective F(D, L) = Cost + rho*Violation and
// its derivatives for the descent engine. It owns the evaluation counters
// and the current penalty weight, so each run must build its own Model; the
// Spec itself is never mutated.
//
// Derivatives are analytic by default, from the closed-form cost and penalty
// expressions. UseNumericDerivatives switches to central finite differences,
// matching the reference numerical behavior of the problem statement.
type Model struct {
	spec    Spec
	penalty float64
	numeric bool
	fdStep  float64
	counts  optimization.EvalCounts
}

// NewModel builds a fresh model for one run of the given spec.
func NewModel(spec Spec) *Model {
	return &Model{spec: spec, penalty: spec.PenaltyWeight, fdStep: defaultFDStep}
}

// Spec returns the immutable problem spec backing the model.
func (m *Model) Spec() Spec { return m.spec }

// PenaltyWeight returns the current penalty weight, which starts at the
// spec's value and may grow under penalty continuation.
func (m *Model) PenaltyWeight() float64 { return m.penalty }

// UseNumericDerivatives switches gradient and Hessian evaluation to central
// finite differences with the given step (or a default when step <= 0).
func (m *Model) UseNumericDerivatives(step float64) {
	m.numeric = true
	if step > 0 {
		m.fdStep = step
	}
}

// Dims returns the number of optimization variables: D and L.
func (m *Model) Dims() int { return 2 }

// Eval returns the augmented objective at x = (D, L).
func (m *Model) Eval(x []float64) float64 {
	m.counts.Objective++
	return m.objective(x[0], x[1])
}

// Gradient stores the gradient of the augmented objective at x into dst.
func (m *Model) Gradient(dst, x []float64) {
	m.counts.Gradient++
	if m.numeric {
		fd.Gradient(dst, m.Eval, x, &fd.Settings{Formula: fd.Central, Step: m.fdStep})
		return
	}
	m.gradient(dst, x[0], x[1])
}

// Hessian stores the Hessian of the augmented objective at x into dst.
func (m *Model) Hessian(dst *mat.SymDense, x []float64) {
	m.counts.Hessian++
	if m.numeric {
		fd.Hessian(dst, m.Eval, x, &fd.Settings{Step: m.fdStep})
		return
	}
	m.hessian(dst, x[0], x[1])
}

// Counts returns the cumulative evaluation counters.
func (m *Model) Counts() optimization.EvalCounts { return m.counts }

// CostViolation splits the augmented objective at x into the raw cost and
// the unweighted constraint violation. It does not touch the counters: it is
// bookkeeping for iteration records, not an objective evaluation.
func (m *Model) CostViolation(x []float64) (cost, violation float64) {
	return m.spec.Cost(x[0], x[1]), m.spec.Violation(x[0], x[1])
}

// ScalePenalty multiplies the penalty weight, implementing penalty
// continuation at iteration boundaries.
func (m *Model) ScalePenalty(factor float64) {
	if factor > 0 {
		m.penalty *= factor
	}
}

// ValidateStart enforces the hard preconditions on the initial point:
// D0 > 0 and L0 > 0. Points violating the upper bounds or the volume band
// are accepted; the penalty term handles them.
func (m *Model) ValidateStart(x []float64) error {
	if x[0] <= 0 {
		return optimization.NewValidationError("d0", "must be > 0, got %g", x[0])
	}
	if x[1] <= 0 {
		return optimization.NewValidationError("l0", "must be > 0, got %g", x[1])
	}
	return nil
}

func (m *Model) objective(d, l float64) float64 {
	return m.spec.Cost(d, l) + m.penalty*m.spec.Violation(d, l)
}

// gradient evaluates the closed-form gradient. With k = cm*rho*pi*t the cost
// contributes (k*(L+D+2t) + 4*pi*cw, k*(D+t)); each active penalty residual
// r contributes 2*rho*r times the residual's own gradient.
func (m *Model) gradient(dst []float64, d, l float64) {
	s := m.spec
	t := s.WallThickness
	k := s.MaterialCost * s.Density * math.Pi * t

	dst[0] = k*(l+d+2*t) + 4*math.Pi*s.WeldCost
	dst[1] = k * (d + t)

	v := s.Volume(d, l)
	vd := math.Pi * d * l / 2
	vl := math.Pi * d * d / 4
	rho := m.penalty

	if r := s.volumeLow() - v; r > 0 {
		dst[0] -= 2 * rho * r * vd
		dst[1] -= 2 * rho * r * vl
	}
	if r := v - s.volumeHigh(); r > 0 {
		dst[0] += 2 * rho * r * vd
		dst[1] += 2 * rho * r * vl
	}
	if r := d - s.DMax; r > 0 {
		dst[0] += 2 * rho * r
	}
	if r := l - s.LMax; r > 0 {
		dst[1] += 2 * rho * r
	}
	if r := minDimension - d; r > 0 {
		dst[0] -= 2 * rho * r
	}
	if r := minDimension - l; r > 0 {
		dst[1] -= 2 * rho * r
	}
}

func (m *Model) hessian(dst *mat.SymDense, d, l float64) {
	s := m.spec
	k := s.MaterialCost * s.Density * math.Pi * s.WallThickness

	hdd := k
	hdl := k
	hll := 0.0

	v := s.Volume(d, l)
	vd := math.Pi * d * l / 2
	vl := math.Pi * d * d / 4
	vdd := math.Pi * l / 2
	vdl := math.Pi * d / 2
	rho := m.penalty

	if r := s.volumeLow() - v; r > 0 {
		hdd += 2 * rho * (vd*vd - r*vdd)
		hdl += 2 * rho * (vd*vl - r*vdl)
		hll += 2 * rho * vl * vl
	}
	if r := v - s.volumeHigh(); r > 0 {
		hdd += 2 * rho * (vd*vd + r*vdd)
		hdl += 2 * rho * (vd*vl + r*vdl)
		hll += 2 * rho * vl * vl
	}
	if d > s.DMax || d < minDimension {
		hdd += 2 * rho
	}
	if l > s.LMax || l < minDimension {
		hll += 2 * rho
	}

	dst.SetSym(0, 0, hdd)
	dst.SetSym(0, 1, hdl)
	dst.SetSym(1, 1, hll)
}
