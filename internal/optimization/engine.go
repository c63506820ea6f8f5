// Package optimization implements the iterative descent engine for the tank
// sizing problem: steepest descent, Newton with Hessian regularization, and
// the DFP quasi-Newton method, driven by an Armijo backtracking line search
// and a convergence monitor. A run is a pure function of the problem and its
// RunConfig; the full trajectory is recorded for plotting and tables.
package optimization

import (
	"context"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// Engine runs optimization loops. It holds no per-run state, so a single
// engine may serve concurrent runs as long as each run gets its own Problem
// instance.
type Engine struct {
	log *zap.Logger
}

// NewEngine creates an engine that logs through the given zap logger. A nil
// logger disables logging.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Run executes the configured method until convergence, the iteration cap,
// divergence, or cancellation. Validation failures are returned as a
// *ValidationError before any iteration runs. Cancellation and divergence
// are not errors: the partial trajectory is returned with the corresponding
// terminal status.
func (e *Engine) Run(ctx context.Context, p Problem, cfg RunConfig) (*Result, error) {
	cfg.setDefaults()
	if err := cfg.validate(p.Dims()); err != nil {
		return nil, err
	}
	if sv, ok := p.(StartValidator); ok {
		if err := sv.ValidateStart(cfg.X0); err != nil {
			return nil, err
		}
	}

	dim := p.Dims()
	strategy := newStrategy(cfg.Method, p)
	monitor := Monitor{GradTol: cfg.GradTol, ObjTol: cfg.ObjTol, MaxIterations: cfg.MaxIterations}
	rec := newRecorder(cfg.MaxIterations+1, cfg.Events)

	x := append([]float64(nil), cfg.X0...)
	f := p.Eval(x)
	grad := make([]float64, dim)
	p.Gradient(grad, x)
	rec.append(e.record(p, 0, x, f, floats.Norm(grad, 2), 0, nil))

	e.log.Info("starting run",
		zap.String("method", string(cfg.Method)),
		zap.Float64s("x0", cfg.X0),
		zap.Float64("grad_tol", cfg.GradTol),
		zap.Int("max_iterations", cfg.MaxIterations),
	)

	f0 := f
	dir := make([]float64, dim)
	xNew := make([]float64, dim)
	gradNew := make([]float64, dim)
	s := make([]float64, dim)
	y := make([]float64, dim)

	status := StatusMaxIterations
loop:
	for k := 1; ; k++ {
		switch monitor.Check(rec.records) {
		case VerdictConverged:
			status = StatusConverged
			break loop
		case VerdictMaxIterations:
			status = StatusMaxIterations
			break loop
		}

		select {
		case <-ctx.Done():
			status = StatusCancelled
			e.log.Info("run cancelled", zap.Int("iteration", k-1))
			break loop
		default:
		}

		var warnings []Condition
		if c := strategy.Direction(dir, x, grad); c != nil {
			warnings = append(warnings, *c)
			e.log.Warn(c.Message, zap.Int("iteration", k), zap.String("condition", string(c.Code)))
		}

		alpha, fNew, lsCond, err := lineSearch(p, x, dir, grad, f, cfg.Step)
		if err != nil {
			// The direction points uphill; retry along the negative
			// gradient for this iteration only.
			c := Condition{Code: CondNonDescentDirection, Message: "direction rejected, using steepest descent direction"}
			warnings = append(warnings, c)
			e.log.Warn(c.Message, zap.Int("iteration", k))
			for i := range dir {
				dir[i] = -grad[i]
			}
			alpha, fNew, lsCond, err = lineSearch(p, x, dir, grad, f, cfg.Step)
			if err != nil {
				// Zero gradient escaped the convergence check; nothing
				// left to do but stop.
				status = StatusFailed
				break loop
			}
		}
		if lsCond != nil {
			warnings = append(warnings, *lsCond)
			e.log.Warn(lsCond.Message, zap.Int("iteration", k), zap.String("condition", string(lsCond.Code)))
		}

		floats.AddScaledTo(xNew, x, alpha, dir)
		p.Gradient(gradNew, xNew)
		floats.SubTo(s, xNew, x)
		floats.SubTo(y, gradNew, grad)
		if c := strategy.Observe(s, y); c != nil {
			warnings = append(warnings, *c)
			e.log.Debug(c.Message, zap.Int("iteration", k), zap.String("condition", string(c.Code)))
		}

		copy(x, xNew)
		gradNorm := floats.Norm(gradNew, 2)
		rec.append(e.record(p, k, x, fNew, gradNorm, alpha, warnings))
		e.log.Debug("iteration",
			zap.Int("iteration", k),
			zap.Float64("objective", fNew),
			zap.Float64("grad_norm", gradNorm),
			zap.Float64("step", alpha),
		)

		if fNew > cfg.DivergenceFactor*math.Max(1, math.Abs(f0)) && fNew > f {
			rec.addWarning(Condition{Code: CondDivergence, Message: "objective grew beyond the divergence threshold"})
			status = StatusFailed
			break loop
		}

		f = fNew
		copy(grad, gradNew)

		if cfg.PenaltyGrowth > 1 {
			if pc, ok := p.(PenaltyContinuation); ok {
				pc.ScalePenalty(cfg.PenaltyGrowth)
				// The landscape changed under the iterate; refresh the
				// held value and gradient before the next direction.
				f = p.Eval(x)
				p.Gradient(grad, x)
			}
		}
	}

	res := rec.result(status, cfg.Method, p.Counts())
	e.log.Info("run finished",
		zap.String("status", string(res.Status)),
		zap.Int("iterations", res.Iterations),
		zap.Int("objective_evals", res.Evals.Objective),
		zap.Int("gradient_evals", res.Evals.Gradient),
	)
	return res, nil
}

func (e *Engine) record(p Problem, iter int, x []float64, f, gradNorm, step float64, warnings []Condition) IterationRecord {
	rec := IterationRecord{
		Iteration: iter,
		Point:     x,
		Objective: f,
		Cost:      f,
		GradNorm:  gradNorm,
		Step:      step,
		Evals:     p.Counts(),
		Warnings:  warnings,
	}
	if c, ok := p.(Constrained); ok {
		rec.Cost, rec.Violation = c.CostViolation(x)
	}
	return rec
}
