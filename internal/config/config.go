// Package config loads service configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Optimization struct {
		// Defaults applied to run requests that omit the field.
		MaxIterations int     `env:"OPT_MAX_ITERATIONS" envDefault:"500"`
		GradTol       float64 `env:"OPT_GRAD_TOL" envDefault:"1e-6"`
		PenaltyWeight float64 `env:"OPT_PENALTY_WEIGHT" envDefault:"1e7"`
		// MaxGridPoints caps the per-axis resolution of contour grids.
		MaxGridPoints int `env:"OPT_MAX_GRID_POINTS" envDefault:"500"`
		// MaxCompletedRuns bounds how many finished runs are retained for
		// polling; the oldest are evicted first. <= 0 disables eviction.
		MaxCompletedRuns int `env:"OPT_MAX_COMPLETED_RUNS" envDefault:"100"`
	}
	Tank struct {
		TargetVolume  float64 `env:"TANK_TARGET_VOLUME" envDefault:"0.8"`
		WallThickness float64 `env:"TANK_WALL_THICKNESS" envDefault:"0.03"`
		Density       float64 `env:"TANK_DENSITY" envDefault:"8000"`
		DMax          float64 `env:"TANK_D_MAX" envDefault:"1.0"`
		LMax          float64 `env:"TANK_L_MAX" envDefault:"2.0"`
		MaterialCost  float64 `env:"TANK_MATERIAL_COST" envDefault:"4.5"`
		WeldCost      float64 `env:"TANK_WELD_COST" envDefault:"20"`
		VolumeBand    float64 `env:"TANK_VOLUME_BAND" envDefault:"0.1"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Development runs default to verbose logging unless overridden.
	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}
