package optimization

import (
	"context"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// quadratic is a strictly convex test problem f(x) = 0.5*(x-c)'Q(x-c) with a
// known minimizer at c.
type quadratic struct {
	q      *mat.SymDense
	c      []float64
	counts EvalCounts
}

func newQuadratic() *quadratic {
	return &quadratic{
		q: mat.NewSymDense(2, []float64{4, 1, 1, 3}),
		c: []float64{1.5, -0.5},
	}
}

func (p *quadratic) Dims() int { return len(p.c) }

func (p *quadratic) Eval(x []float64) float64 {
	p.counts.Objective++
	r := make([]float64, len(x))
	floats.SubTo(r, x, p.c)
	qr := mat.NewVecDense(len(r), nil)
	qr.MulVec(p.q, mat.NewVecDense(len(r), r))
	return 0.5 * floats.Dot(r, qr.RawVector().Data)
}

func (p *quadratic) Gradient(dst, x []float64) {
	p.counts.Gradient++
	r := make([]float64, len(x))
	floats.SubTo(r, x, p.c)
	v := mat.NewVecDense(len(dst), dst)
	v.MulVec(p.q, mat.NewVecDense(len(r), r))
}

func (p *quadratic) Hessian(dst *mat.SymDense, _ []float64) {
	p.counts.Hessian++
	dst.CopySym(p.q)
}

func (p *quadratic) Counts() EvalCounts { return p.counts }

// saddle has an indefinite Hessian everywhere; only Newton's regularization
// path cares about it.
type saddle struct{ counts EvalCounts }

func (p *saddle) Dims() int { return 2 }

func (p *saddle) Eval(x []float64) float64 {
	p.counts.Objective++
	return x[0]*x[0] - x[1]*x[1]
}

func (p *saddle) Gradient(dst, x []float64) {
	p.counts.Gradient++
	dst[0] = 2 * x[0]
	dst[1] = -2 * x[1]
}

func (p *saddle) Hessian(dst *mat.SymDense, _ []float64) {
	p.counts.Hessian++
	dst.SetSym(0, 0, 2)
	dst.SetSym(0, 1, 0)
	dst.SetSym(1, 1, -2)
}

func (p *saddle) Counts() EvalCounts { return p.counts }

func runQuadratic(t *testing.T, method Method, cfg RunConfig) *Result {
	t.Helper()

	cfg.Method = method
	if cfg.X0 == nil {
		cfg.X0 = []float64{10, -10}
	}
	if cfg.GradTol == 0 {
		cfg.GradTol = 1e-6
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 500
	}

	result, err := NewEngine(nil).Run(context.Background(), newQuadratic(), cfg)
	if err != nil {
		t.Fatalf("%s run failed: %v", method, err)
	}
	return result
}

func TestMethodsConvergeToTheSameMinimizer(t *testing.T) {
	want := newQuadratic().c

	for _, method := range Methods() {
		t.Run(string(method), func(t *testing.T) {
			result := runQuadratic(t, method, RunConfig{})

			if result.Status != StatusConverged {
				t.Fatalf("status = %s, want %s", result.Status, StatusConverged)
			}
			for i := range want {
				if math.Abs(result.FinalPoint[i]-want[i]) > 1e-4 {
					t.Errorf("final point %v, want %v", result.FinalPoint, want)
					break
				}
			}
			if g := result.Final().GradNorm; g >= 1e-6 {
				t.Errorf("converged with gradient norm %v", g)
			}
		})
	}
}

func TestNewtonTakesFewestIterations(t *testing.T) {
	newton := runQuadratic(t, MethodNewton, RunConfig{})
	dfp := runQuadratic(t, MethodDFP, RunConfig{})
	sd := runQuadratic(t, MethodSteepestDescent, RunConfig{})

	// Newton lands on the minimizer of a quadratic in one step.
	if newton.Iterations > 2 {
		t.Errorf("newton took %d iterations", newton.Iterations)
	}
	if newton.Iterations > dfp.Iterations || dfp.Iterations > sd.Iterations {
		t.Errorf("iteration ordering violated: newton %d, dfp %d, sd %d",
			newton.Iterations, dfp.Iterations, sd.Iterations)
	}
}

func TestRecordsAreWellFormed(t *testing.T) {
	result := runQuadratic(t, MethodSteepestDescent, RunConfig{})

	if len(result.Records) == 0 {
		t.Fatal("no records")
	}
	prevEvals := -1
	for i, rec := range result.Records {
		if rec.Iteration != i {
			t.Fatalf("record %d has iteration %d", i, rec.Iteration)
		}
		if rec.Evals.Objective < prevEvals {
			t.Fatalf("objective eval count decreased at iteration %d", i)
		}
		prevEvals = rec.Evals.Objective
		if len(rec.Point) != 2 {
			t.Fatalf("record %d has malformed point %v", i, rec.Point)
		}
	}
	if got := result.Final().Evals; got != result.Evals {
		t.Errorf("final record counters %+v != result counters %+v", got, result.Evals)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	a := runQuadratic(t, MethodDFP, RunConfig{})
	b := runQuadratic(t, MethodDFP, RunConfig{})
	if !reflect.DeepEqual(a, b) {
		t.Error("identical runs produced different results")
	}
}

func TestMaxIterationsStatus(t *testing.T) {
	result := runQuadratic(t, MethodSteepestDescent, RunConfig{
		GradTol:       1e-15,
		MaxIterations: 3,
	})

	if result.Status != StatusMaxIterations {
		t.Fatalf("status = %s, want %s", result.Status, StatusMaxIterations)
	}
	if result.Iterations != 3 {
		t.Errorf("iterations = %d, want exactly the cap", result.Iterations)
	}
	if len(result.Records) != 4 { // initial iterate plus three steps
		t.Errorf("records = %d, want 4", len(result.Records))
	}
}

func TestCancellationReturnsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewEngine(nil).Run(ctx, newQuadratic(), RunConfig{
		Method:        MethodSteepestDescent,
		X0:            []float64{10, -10},
		GradTol:       1e-6,
		MaxIterations: 100,
	})
	if err != nil {
		t.Fatalf("cancellation must not be an error: %v", err)
	}
	if result.Status != StatusCancelled {
		t.Fatalf("status = %s, want %s", result.Status, StatusCancelled)
	}
	if len(result.Records) == 0 {
		t.Error("partial trajectory missing")
	}
}

func TestDivergenceFails(t *testing.T) {
	// A fixed step of 1 on a quadratic with largest eigenvalue above 2
	// amplifies the error every iteration.
	result := runQuadratic(t, MethodSteepestDescent, RunConfig{
		Step:             StepPolicy{Fixed: 1},
		DivergenceFactor: 100,
		MaxIterations:    200,
	})

	if result.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", result.Status, StatusFailed)
	}
	warnings := result.Final().Warnings
	found := false
	for _, c := range warnings {
		if c.Code == CondDivergence {
			found = true
		}
	}
	if !found {
		t.Errorf("divergence condition missing from final record: %v", warnings)
	}
}

func TestEventsChannelMirrorsRecords(t *testing.T) {
	events := make(chan IterationRecord, 600)
	result := runQuadratic(t, MethodNewton, RunConfig{Events: events})
	close(events)

	var streamed []IterationRecord
	for rec := range events {
		streamed = append(streamed, rec)
	}
	if !reflect.DeepEqual(streamed, result.Records) {
		t.Errorf("streamed %d records, result holds %d", len(streamed), len(result.Records))
	}
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  RunConfig
	}{
		{name: "unknown method", cfg: RunConfig{Method: "simplex", X0: []float64{1, 1}, GradTol: 1e-6, MaxIterations: 10}},
		{name: "wrong dimension", cfg: RunConfig{Method: MethodNewton, X0: []float64{1}, GradTol: 1e-6, MaxIterations: 10}},
		{name: "nan start", cfg: RunConfig{Method: MethodNewton, X0: []float64{math.NaN(), 1}, GradTol: 1e-6, MaxIterations: 10}},
		{name: "zero tolerance", cfg: RunConfig{Method: MethodNewton, X0: []float64{1, 1}, GradTol: 0, MaxIterations: 10}},
		{name: "zero iteration cap", cfg: RunConfig{Method: MethodNewton, X0: []float64{1, 1}, GradTol: 1e-6, MaxIterations: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(nil).Run(context.Background(), newQuadratic(), tt.cfg)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !IsValidation(err) {
				t.Errorf("error %v is not a ValidationError", err)
			}
		})
	}
}

func TestNewtonRegularizesIndefiniteHessian(t *testing.T) {
	p := &saddle{}
	strat := newNewton(p)

	x := []float64{1, 1}
	grad := make([]float64, 2)
	p.Gradient(grad, x)

	dir := make([]float64, 2)
	cond := strat.Direction(dir, x, grad)
	if cond == nil || cond.Code != CondHessianNotPD {
		t.Fatalf("expected HessianNotPD condition, got %v", cond)
	}
	if floats.Dot(dir, grad) >= 0 {
		t.Errorf("regularized direction %v is not a descent direction", dir)
	}
}
