package tank

import (
	"math"
	"testing"
)

func TestMassAndWeldLength(t *testing.T) {
	s := DefaultSpec()

	tests := []struct {
		name string
		d, l float64
	}{
		{name: "reference design", d: 1.0, l: 2.0},
		{name: "small tank", d: 0.4, l: 0.8},
		{name: "long narrow tank", d: 0.3, l: 1.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Shell wall annulus plus two end caps, written out from the
			// geometry rather than via the production helpers.
			r := tt.d / 2
			th := s.WallThickness
			shell := tt.l * math.Pi * ((r+th)*(r+th) - r*r)
			caps := 2 * math.Pi * (r + th) * (r + th) * th
			wantMass := s.Density * (shell + caps)

			if got := s.Mass(tt.d, tt.l); math.Abs(got-wantMass) > 1e-9*wantMass {
				t.Errorf("Mass(%g, %g) = %v, want %v", tt.d, tt.l, got, wantMass)
			}

			wantWeld := 4 * math.Pi * (tt.d + th)
			if got := s.WeldLength(tt.d); math.Abs(got-wantWeld) > 1e-12 {
				t.Errorf("WeldLength(%g) = %v, want %v", tt.d, got, wantWeld)
			}

			wantCost := s.MaterialCost*wantMass + s.WeldCost*wantWeld
			if got := s.Cost(tt.d, tt.l); math.Abs(got-wantCost) > 1e-9*wantCost {
				t.Errorf("Cost(%g, %g) = %v, want %v", tt.d, tt.l, got, wantCost)
			}
		})
	}
}

func TestViolation(t *testing.T) {
	s := DefaultSpec() // band [0.72, 0.88] m^3

	tests := []struct {
		name     string
		d, l     float64
		wantZero bool
	}{
		{name: "feasible interior", d: 0.8, l: 1.6, wantZero: true},   // V = 0.804
		{name: "volume too small", d: 0.5, l: 1.0, wantZero: false},   // V = 0.196
		{name: "volume too large", d: 1.0, l: 1.9, wantZero: false},   // V = 1.492
		{name: "diameter over bound", d: 1.2, l: 0.7, wantZero: false, // V feasible, D > DMax
		},
		{name: "length over bound", d: 0.72, l: 2.1, wantZero: false},
		{name: "negative diameter guarded", d: -0.1, l: 1.0, wantZero: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Violation(tt.d, tt.l)
			if tt.wantZero && got != 0 {
				t.Errorf("Violation(%g, %g) = %v, want 0", tt.d, tt.l, got)
			}
			if !tt.wantZero && got <= 0 {
				t.Errorf("Violation(%g, %g) = %v, want > 0", tt.d, tt.l, got)
			}
		})
	}
}

func TestViolationLowVolumeResidual(t *testing.T) {
	s := DefaultSpec()

	// At D = 0.5, L = 1.0 only the low-volume residual is active.
	v := s.Volume(0.5, 1.0)
	r := 0.9*s.TargetVolume - v
	want := r * r
	if got := s.Violation(0.5, 1.0); math.Abs(got-want) > 1e-12 {
		t.Errorf("Violation = %v, want %v", got, want)
	}
}

func TestFeasible(t *testing.T) {
	s := DefaultSpec()

	if !s.Feasible(0.8, 1.6) {
		t.Error("expected (0.8, 1.6) to be feasible")
	}
	if s.Feasible(0.5, 1.0) {
		t.Error("expected (0.5, 1.0) to violate the volume band")
	}
	if s.Feasible(1.2, 0.7) {
		t.Error("expected D = 1.2 to violate the diameter bound")
	}
}

func TestSpecValidate(t *testing.T) {
	mutate := func(f func(*Spec)) Spec {
		s := DefaultSpec()
		f(&s)
		return s
	}

	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{name: "default is valid", spec: DefaultSpec(), wantErr: false},
		{name: "zero volume", spec: mutate(func(s *Spec) { s.TargetVolume = 0 }), wantErr: true},
		{name: "negative thickness", spec: mutate(func(s *Spec) { s.WallThickness = -0.01 }), wantErr: true},
		{name: "zero density", spec: mutate(func(s *Spec) { s.Density = 0 }), wantErr: true},
		{name: "zero d max", spec: mutate(func(s *Spec) { s.DMax = 0 }), wantErr: true},
		{name: "zero l max", spec: mutate(func(s *Spec) { s.LMax = 0 }), wantErr: true},
		{name: "band too wide", spec: mutate(func(s *Spec) { s.VolumeBand = 1.5 }), wantErr: true},
		{name: "zero penalty", spec: mutate(func(s *Spec) { s.PenaltyWeight = 0 }), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContourGrid(t *testing.T) {
	s := DefaultSpec()

	g, err := ContourGrid(s, 0.1, 1.0, 0.1, 2.0, 5)
	if err != nil {
		t.Fatalf("ContourGrid returned error: %v", err)
	}
	if len(g.D) != 5 || len(g.L) != 5 {
		t.Fatalf("axis lengths = %d, %d, want 5, 5", len(g.D), len(g.L))
	}
	if g.D[0] != 0.1 || g.D[4] != 1.0 || g.L[0] != 0.1 || g.L[4] != 2.0 {
		t.Errorf("axis endpoints not preserved: D=%v L=%v", g.D, g.L)
	}
	for i, d := range g.D {
		for j, l := range g.L {
			if got, want := g.Cost[i][j], s.Cost(d, l); got != want {
				t.Fatalf("Cost[%d][%d] = %v, want %v", i, j, got, want)
			}
			if got, want := g.Violation[i][j], s.Violation(d, l); got != want {
				t.Fatalf("Violation[%d][%d] = %v, want %v", i, j, got, want)
			}
		}
	}

	if _, err := ContourGrid(s, 0.1, 1.0, 0.1, 2.0, 1); err == nil {
		t.Error("expected error for a single-point grid")
	}
	if _, err := ContourGrid(s, 1.0, 0.1, 0.1, 2.0, 5); err == nil {
		t.Error("expected error for inverted d range")
	}
}

func TestEvaluateIsPure(t *testing.T) {
	s := DefaultSpec()

	first := Evaluate(s, 0.7, 1.4)
	for i := 0; i < 3; i++ {
		if got := Evaluate(s, 0.7, 1.4); got != first {
			t.Fatalf("Evaluate changed across calls: %+v vs %+v", got, first)
		}
	}
	if first.Cost <= 0 || first.Volume <= 0 {
		t.Errorf("unexpected evaluation: %+v", first)
	}
}
