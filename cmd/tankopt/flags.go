package main

import (
	"github.com/spf13/cobra"

	"github.com/LucasRodriguesEstorckPinto/cylindrical-tank-cost-optimization/internal/tank"
)

// specFlags collects the tank parameters shared by run and evaluate.
type specFlags struct {
	targetVolume  float64
	wallThickness float64
	density       float64
	dMax          float64
	lMax          float64
	materialCost  float64
	weldCost      float64
	volumeBand    float64
	penaltyWeight float64
}

func (f *specFlags) register(cmd *cobra.Command) {
	def := tank.DefaultSpec()
	cmd.Flags().Float64Var(&f.targetVolume, "volume", def.TargetVolume, "Target volume V0 in m^3")
	cmd.Flags().Float64Var(&f.wallThickness, "thickness", def.WallThickness, "Wall thickness in m")
	cmd.Flags().Float64Var(&f.density, "density", def.Density, "Plate density in kg/m^3")
	cmd.Flags().Float64Var(&f.dMax, "d-max", def.DMax, "Maximum diameter in m")
	cmd.Flags().Float64Var(&f.lMax, "l-max", def.LMax, "Maximum length in m")
	cmd.Flags().Float64Var(&f.materialCost, "material-cost", def.MaterialCost, "Material cost in $/kg")
	cmd.Flags().Float64Var(&f.weldCost, "weld-cost", def.WeldCost, "Welding cost in $/m")
	cmd.Flags().Float64Var(&f.volumeBand, "volume-band", def.VolumeBand, "Fractional volume tolerance band")
	cmd.Flags().Float64Var(&f.penaltyWeight, "penalty", def.PenaltyWeight, "Constraint penalty weight")
}

func (f *specFlags) spec() tank.Spec {
	return tank.Spec{
		TargetVolume:  f.targetVolume,
		WallThickness: f.wallThickness,
		Density:       f.density,
		DMax:          f.dMax,
		LMax:          f.lMax,
		MaterialCost:  f.materialCost,
		WeldCost:      f.weldCost,
		VolumeBand:    f.volumeBand,
		PenaltyWeight: f.penaltyWeight,
	}
}
