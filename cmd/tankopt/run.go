package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LucasRodriguesEstorckPinto/cylindrical-tank-cost-optimization/internal/optimization"
	"github.com/LucasRodriguesEstorckPinto/cylindrical-tank-cost-optimization/internal/tank"
)

var (
	runSpec       specFlags
	method        string
	d0            float64
	l0            float64
	gradTol       float64
	objTol        float64
	maxIterations int
	fixedStep     float64
	penaltyGrowth float64
	numericDerivs bool
	fdStep        float64
	jsonOutput    bool
	tableLimit    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single optimization",
	Long:  `Runs the chosen descent method from the given starting point and prints the iteration trajectory and final design.`,
	RunE:  runOptimization,
}

func init() {
	runSpec.register(runCmd)
	runCmd.Flags().StringVar(&method, "method", "steepest_descent", "Method: steepest_descent, newton, dfp")
	runCmd.Flags().Float64Var(&d0, "d0", 0.5, "Initial diameter in m")
	runCmd.Flags().Float64Var(&l0, "l0", 1.0, "Initial length in m")
	runCmd.Flags().Float64Var(&gradTol, "tol", 1e-6, "Gradient norm tolerance")
	runCmd.Flags().Float64Var(&objTol, "obj-tol", 0, "Relative objective change tolerance (0 disables)")
	runCmd.Flags().IntVar(&maxIterations, "max-iter", 500, "Maximum iterations")
	runCmd.Flags().Float64Var(&fixedStep, "fixed-step", 0, "Fixed step length (0 uses backtracking)")
	runCmd.Flags().Float64Var(&penaltyGrowth, "penalty-growth", 0, "Per-iteration penalty growth factor (<=1 keeps it fixed)")
	runCmd.Flags().BoolVar(&numericDerivs, "numeric", false, "Use central finite differences instead of analytic derivatives")
	runCmd.Flags().Float64Var(&fdStep, "fd-step", 0, "Finite difference step (with --numeric)")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full result as JSON")
	runCmd.Flags().IntVar(&tableLimit, "table-rows", 20, "Maximum trajectory rows to print (0 prints all)")
	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	spec := runSpec.spec()
	if err := spec.Validate(); err != nil {
		return err
	}

	model := tank.NewModel(spec)
	if numericDerivs {
		model.UseNumericDerivatives(fdStep)
	}

	cfg := optimization.RunConfig{
		Method:        optimization.Method(method),
		X0:            []float64{d0, l0},
		GradTol:       gradTol,
		ObjTol:        objTol,
		MaxIterations: maxIterations,
		Step:          optimization.StepPolicy{Fixed: fixedStep},
		PenaltyGrowth: penaltyGrowth,
	}

	// Ctrl-C cancels cooperatively: the partial trajectory still prints.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := optimization.NewEngine(zapLogger)
	result, err := engine.Run(ctx, model, cfg)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printTrajectory(result, tableLimit)
	printSummary(spec, result)
	return nil
}

func printTrajectory(result *optimization.Result, limit int) {
	records := result.Records
	skipped := 0
	if limit > 0 && len(records) > limit {
		// Keep the head and tail of the trajectory; the middle is the
		// least interesting part of a descent run.
		head := limit / 2
		tail := limit - head
		skipped = len(records) - limit
		records = append(append([]optimization.IterationRecord{}, records[:head]...), records[len(records)-tail:]...)
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITER\tD\tL\tOBJECTIVE\tCOST\tGRAD NORM\tSTEP\tWARNINGS")
	half := len(records) - (limit - limit/2)
	for i, rec := range records {
		if skipped > 0 && i == half {
			fmt.Fprintf(w, "...\t(%d rows omitted)\t\t\t\t\t\t\n", skipped)
		}
		var warns []string
		for _, c := range rec.Warnings {
			warns = append(warns, string(c.Code))
		}
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.4f\t%.4f\t%.3e\t%.3e\t%s\n",
			rec.Iteration, rec.Point[0], rec.Point[1], rec.Objective, rec.Cost,
			rec.GradNorm, rec.Step, strings.Join(warns, ","))
	}
	w.Flush()
}

func printSummary(spec tank.Spec, result *optimization.Result) {
	fmt.Println()
	fmt.Printf("status:          %s after %d iterations\n", result.Status, result.Iterations)
	if len(result.FinalPoint) == 2 {
		d, l := result.FinalPoint[0], result.FinalPoint[1]
		ev := tank.Evaluate(spec, d, l)
		fmt.Printf("final design:    D = %.6f m, L = %.6f m\n", d, l)
		fmt.Printf("cost:            $%.2f\n", ev.Cost)
		fmt.Printf("volume:          %.4f m^3 (target %.4f ± %.0f%%)\n", ev.Volume, spec.TargetVolume, spec.VolumeBand*100)
		fmt.Printf("feasible:        %v\n", ev.Feasible)
	}
	fmt.Printf("evaluations:     %d objective, %d gradient, %d hessian\n",
		result.Evals.Objective, result.Evals.Gradient, result.Evals.Hessian)
}
