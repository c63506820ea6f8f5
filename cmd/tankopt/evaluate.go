package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LucasRodriguesEstorckPinto/cylindrical-tank-cost-optimization/internal/tank"
)

var (
	evalSpec specFlags
	evalD    float64
	evalL    float64
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate cost and constraints at a single design point",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := evalSpec.spec()
		if err := spec.Validate(); err != nil {
			return err
		}
		ev := tank.Evaluate(spec, evalD, evalL)
		fmt.Printf("cost:       $%.2f\n", ev.Cost)
		fmt.Printf("volume:     %.4f m^3\n", ev.Volume)
		fmt.Printf("violation:  %.6g\n", ev.Violation)
		fmt.Printf("feasible:   %v\n", ev.Feasible)
		return nil
	},
}

func init() {
	evalSpec.register(evaluateCmd)
	evaluateCmd.Flags().Float64Var(&evalD, "d", 0.5, "Diameter in m")
	evaluateCmd.Flags().Float64Var(&evalL, "l", 1.0, "Length in m")
	rootCmd.AddCommand(evaluateCmd)
}
