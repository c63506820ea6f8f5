package tank

import (
	"github.com/LucasRodriguesEstorckPinto/cylindrical-tank-cost-optimization/internal/optimization"
)

// Evaluation is the single-point view of the problem used by iteration
// tables and by callers probing individual designs.
type Evaluation struct {
	Cost      float64 `json:"cost"`
	Violation float64 `json:"violation"`
	Volume    float64 `json:"volume"`
	Feasible  bool    `json:"feasible"`
}

// Evaluate computes cost, constraint violation, volume and feasibility at a
// single design point. It is a pure function of the spec: repeated calls at
// a recorded point reproduce the record's cost and violation exactly.
func Evaluate(s Spec, d, l float64) Evaluation {
	return Evaluation{
		Cost:      s.Cost(d, l),
		Violation: s.Violation(d, l),
		Volume:    s.Volume(d, l),
		Feasible:  s.Feasible(d, l),
	}
}

// Grid holds pre-computed cost and violation surfaces over a rectangle of
// (D, L) designs, row-major with D varying along rows and L along columns.
// Plot layers draw cost contours and shade the violation region from it.
type Grid struct {
	D         []float64   `json:"d"`
	L         []float64   `json:"l"`
	Cost      [][]float64 `json:"cost"`
	Violation [][]float64 `json:"violation"`
}

// ContourGrid samples n x n points of the cost and violation surfaces over
// [dMin, dMax] x [lMin, lMax].
func ContourGrid(s Spec, dMin, dMax, lMin, lMax float64, n int) (*Grid, error) {
	if n < 2 {
		return nil, optimization.NewValidationError("grid_points", "must be >= 2, got %d", n)
	}
	if dMax <= dMin {
		return nil, optimization.NewValidationError("d_range", "d_max must exceed d_min")
	}
	if lMax <= lMin {
		return nil, optimization.NewValidationError("l_range", "l_max must exceed l_min")
	}

	g := &Grid{
		D:         linspace(dMin, dMax, n),
		L:         linspace(lMin, lMax, n),
		Cost:      make([][]float64, n),
		Violation: make([][]float64, n),
	}
	for i, d := range g.D {
		g.Cost[i] = make([]float64, n)
		g.Violation[i] = make([]float64, n)
		for j, l := range g.L {
			g.Cost[i][j] = s.Cost(d, l)
			g.Violation[i][j] = s.Violation(d, l)
		}
	}
	return g, nil
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
