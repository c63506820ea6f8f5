package optimization

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewStrategyCoversAllMethods(t *testing.T) {
	p := newQuadratic()
	for _, method := range Methods() {
		if s := newStrategy(method, p); s.Name() != method {
			t.Errorf("newStrategy(%s).Name() = %s", method, s.Name())
		}
	}
}

func TestSteepestDescentDirection(t *testing.T) {
	s := newStrategy(MethodSteepestDescent, newQuadratic())

	grad := []float64{3, -4}
	dir := make([]float64, 2)
	if cond := s.Direction(dir, []float64{0, 0}, grad); cond != nil {
		t.Fatalf("unexpected condition %v", cond)
	}
	if dir[0] != -3 || dir[1] != 4 {
		t.Errorf("direction = %v, want the negative gradient", dir)
	}
	if cond := s.Observe([]float64{1, 1}, []float64{1, 1}); cond != nil {
		t.Errorf("steepest descent keeps no state, got condition %v", cond)
	}
}

func TestDFPSecantCondition(t *testing.T) {
	d := newDFP(2)

	s := []float64{1, 0.5}
	y := []float64{4.5, 2.5} // y = Q s for the test quadratic
	if cond := d.Observe(s, y); cond != nil {
		t.Fatalf("update rejected: %v", cond)
	}

	// After the update the inverse Hessian estimate must map y back to s.
	by := mat.NewVecDense(2, nil)
	by.MulVec(d.b, mat.NewVecDense(2, y))
	for i := range s {
		if math.Abs(by.AtVec(i)-s[i]) > 1e-12 {
			t.Fatalf("B*y = %v, want %v", []float64{by.AtVec(0), by.AtVec(1)}, s)
		}
	}
}

func TestDFPSkipsNonPositiveCurvature(t *testing.T) {
	d := newDFP(2)

	cond := d.Observe([]float64{1, 0}, []float64{-1, 0})
	if cond == nil || cond.Code != CondUpdateSkipped {
		t.Fatalf("condition = %v, want %s", cond, CondUpdateSkipped)
	}

	// The estimate stays at the identity, so the direction is still the
	// negative gradient.
	grad := []float64{2, -6}
	dir := make([]float64, 2)
	d.Direction(dir, nil, grad)
	if dir[0] != -2 || dir[1] != 6 {
		t.Errorf("direction after skipped update = %v, want the negative gradient", dir)
	}
}
