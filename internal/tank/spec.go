// Package tank models the cylindrical storage tank sizing problem: choose a
// diameter D and length L minimizing material plus welding cost, subject to
// a volume band around the target capacity and upper bounds on D and L. The
// constraints enter the objective through an exterior quadratic penalty so
// the problem can be handed to the unconstrained descent engine.
package tank

import (
	"math"

	"github.com/LucasRodriguesEstorckPinto/cylindrical-tank-cost-optimization/internal/optimization"
)

// minDimension is the interior guard below which a positivity penalty pushes
// iterates back toward D, L > 0. It keeps the polynomial cost expression
// meaningful when a long step overshoots the axis.
const minDimension = 1e-3

// Spec pins the tank geometry and cost coefficients for one run. It is
// immutable: every run works on its own copy.
type Spec struct {
	// TargetVolume is the required capacity V0 in m^3. The admissible
	// internal volume is [(1-VolumeBand)*V0, (1+VolumeBand)*V0].
	TargetVolume float64 `json:"target_volume"`

	// WallThickness is the shell and end-cap plate thickness in m.
	WallThickness float64 `json:"wall_thickness"`

	// Density is the plate material density in kg/m^3.
	Density float64 `json:"density"`

	// DMax and LMax are the upper bounds on diameter and length in m.
	DMax float64 `json:"d_max"`
	LMax float64 `json:"l_max"`

	// MaterialCost is the material price in $/kg, WeldCost the welding
	// price in $/m of seam.
	MaterialCost float64 `json:"material_cost"`
	WeldCost     float64 `json:"weld_cost"`

	// VolumeBand is the fractional half-width of the volume tolerance
	// band. 0.1 admits volumes within 10% of TargetVolume.
	VolumeBand float64 `json:"volume_band"`

	// PenaltyWeight scales the constraint violation into the augmented
	// objective.
	PenaltyWeight float64 `json:"penalty_weight"`
}

// DefaultSpec returns the reference configuration: a 0.8 m^3 tank in 3 cm
// steel plate at 8000 kg/m^3, material at 4.5 $/kg and welding at 20 $/m.
func DefaultSpec() Spec {
	return Spec{
		TargetVolume:  0.8,
		WallThickness: 0.03,
		Density:       8000,
		DMax:          1.0,
		LMax:          2.0,
		MaterialCost:  4.5,
		WeldCost:      20,
		VolumeBand:    0.1,
		PenaltyWeight: 1e7,
	}
}

// Validate rejects specs that would make the objective meaningless.
func (s Spec) Validate() error {
	switch {
	case s.TargetVolume <= 0:
		return optimization.NewValidationError("target_volume", "must be > 0, got %g", s.TargetVolume)
	case s.WallThickness <= 0:
		return optimization.NewValidationError("wall_thickness", "must be > 0, got %g", s.WallThickness)
	case s.Density <= 0:
		return optimization.NewValidationError("density", "must be > 0, got %g", s.Density)
	case s.DMax <= 0:
		return optimization.NewValidationError("d_max", "must be > 0, got %g", s.DMax)
	case s.LMax <= 0:
		return optimization.NewValidationError("l_max", "must be > 0, got %g", s.LMax)
	case s.MaterialCost < 0:
		return optimization.NewValidationError("material_cost", "must be >= 0, got %g", s.MaterialCost)
	case s.WeldCost < 0:
		return optimization.NewValidationError("weld_cost", "must be >= 0, got %g", s.WeldCost)
	case s.VolumeBand <= 0 || s.VolumeBand >= 1:
		return optimization.NewValidationError("volume_band", "must be in (0, 1), got %g", s.VolumeBand)
	case s.PenaltyWeight <= 0:
		return optimization.NewValidationError("penalty_weight", "must be > 0, got %g", s.PenaltyWeight)
	}
	return nil
}

// Mass returns the plate mass in kg: the cylindrical shell wall plus two
// circular end caps, each of WallThickness plate.
func (s Spec) Mass(d, l float64) float64 {
	t := s.WallThickness
	shell := l * math.Pi * t * (d + t)
	caps := 2 * math.Pi * t * (d/2 + t) * (d/2 + t)
	return s.Density * (shell + caps)
}

// WeldLength returns the total seam length in m: the longitudinal shell seam
// plus the circular cap seams.
func (s Spec) WeldLength(d float64) float64 {
	return 4 * math.Pi * (d + s.WallThickness)
}

// Cost returns the raw, penalty-free cost C(D, L) in $.
func (s Spec) Cost(d, l float64) float64 {
	return s.MaterialCost*s.Mass(d, l) + s.WeldCost*s.WeldLength(d)
}

// Volume returns the internal volume pi*D^2*L/4 in m^3.
func (s Spec) Volume(d, l float64) float64 {
	return math.Pi * d * d * l / 4
}

func (s Spec) volumeLow() float64  { return (1 - s.VolumeBand) * s.TargetVolume }
func (s Spec) volumeHigh() float64 { return (1 + s.VolumeBand) * s.TargetVolume }

// Violation returns the unweighted constraint violation: the sum of squared
// positive residuals of the volume band, the D and L upper bounds, and the
// interior positivity guards. The penalty term is PenaltyWeight times this.
func (s Spec) Violation(d, l float64) float64 {
	v := s.Volume(d, l)
	total := 0.0
	if r := s.volumeLow() - v; r > 0 {
		total += r * r
	}
	if r := v - s.volumeHigh(); r > 0 {
		total += r * r
	}
	if r := d - s.DMax; r > 0 {
		total += r * r
	}
	if r := l - s.LMax; r > 0 {
		total += r * r
	}
	if r := minDimension - d; r > 0 {
		total += r * r
	}
	if r := minDimension - l; r > 0 {
		total += r * r
	}
	return total
}

// Feasible reports whether (d, l) satisfies the volume band and the bound
// constraints.
func (s Spec) Feasible(d, l float64) bool {
	v := s.Volume(d, l)
	return v >= s.volumeLow() && v <= s.volumeHigh() && d <= s.DMax && l <= s.LMax && d > 0 && l > 0
}
