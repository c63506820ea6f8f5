// Package server exposes the tank optimization engine over HTTP: starting
// runs, polling their trajectories, cancelling them, and evaluating single
// points or contour grids for plotting.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/LucasRodriguesEstorckPinto/cylindrical-tank-cost-optimization/internal/config"
	"github.com/LucasRodriguesEstorckPinto/cylindrical-tank-cost-optimization/internal/logging"
	"github.com/LucasRodriguesEstorckPinto/cylindrical-tank-cost-optimization/internal/optimization"
	"github.com/LucasRodriguesEstorckPinto/cylindrical-tank-cost-optimization/internal/tank"
)

// runState tracks one optimization job. The server mutex guards all fields.
type runState struct {
	ID      string
	Method  optimization.Method
	Status  string // "pending", "running", or a terminal optimization.Status
	Started time.Time
	Ended   *time.Time
	Result  *optimization.Result
	cancel  context.CancelFunc
}

// Server manages optimization jobs and the evaluation endpoints.
type Server struct {
	cfg    *config.Config
	logger *logging.Logger
	engine *optimization.Engine

	runsMu sync.RWMutex
	runs   map[string]*runState
}

// NewServer creates a server around an engine instance.
func NewServer(cfg *config.Config, logger *logging.Logger, engine *optimization.Engine) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		engine: engine,
		runs:   make(map[string]*runState),
	}
}

// RegisterRoutes mounts the API under /api/v1.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Get("/optimizations/{id}", s.handleStatus)
		r.Delete("/optimizations/{id}", s.handleCancel)
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/grid", s.handleGrid)
	})
}

// Close cancels every outstanding run.
func (s *Server) Close() error {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()
	for _, run := range s.runs {
		if run.cancel != nil {
			run.cancel()
		}
	}
	return nil
}

// specRequest carries optional overrides of the configured tank spec.
type specRequest struct {
	TargetVolume  *float64 `json:"target_volume,omitempty"`
	WallThickness *float64 `json:"wall_thickness,omitempty"`
	Density       *float64 `json:"density,omitempty"`
	DMax          *float64 `json:"d_max,omitempty"`
	LMax          *float64 `json:"l_max,omitempty"`
	MaterialCost  *float64 `json:"material_cost,omitempty"`
	WeldCost      *float64 `json:"weld_cost,omitempty"`
	VolumeBand    *float64 `json:"volume_band,omitempty"`
	PenaltyWeight *float64 `json:"penalty_weight,omitempty"`
}

// buildSpec layers request overrides over the configured defaults.
func (s *Server) buildSpec(req *specRequest) tank.Spec {
	spec := tank.Spec{
		TargetVolume:  s.cfg.Tank.TargetVolume,
		WallThickness: s.cfg.Tank.WallThickness,
		Density:       s.cfg.Tank.Density,
		DMax:          s.cfg.Tank.DMax,
		LMax:          s.cfg.Tank.LMax,
		MaterialCost:  s.cfg.Tank.MaterialCost,
		WeldCost:      s.cfg.Tank.WeldCost,
		VolumeBand:    s.cfg.Tank.VolumeBand,
		PenaltyWeight: s.cfg.Optimization.PenaltyWeight,
	}
	if req == nil {
		return spec
	}
	override := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	override(&spec.TargetVolume, req.TargetVolume)
	override(&spec.WallThickness, req.WallThickness)
	override(&spec.Density, req.Density)
	override(&spec.DMax, req.DMax)
	override(&spec.LMax, req.LMax)
	override(&spec.MaterialCost, req.MaterialCost)
	override(&spec.WeldCost, req.WeldCost)
	override(&spec.VolumeBand, req.VolumeBand)
	override(&spec.PenaltyWeight, req.PenaltyWeight)
	return spec
}

type optimizeRequest struct {
	Method             string       `json:"method"`
	D0                 float64      `json:"d0"`
	L0                 float64      `json:"l0"`
	GradTol            float64      `json:"grad_tol,omitempty"`
	ObjTol             float64      `json:"obj_tol,omitempty"`
	MaxIterations      int          `json:"max_iterations,omitempty"`
	FixedStep          float64      `json:"fixed_step,omitempty"`
	PenaltyGrowth      float64      `json:"penalty_growth,omitempty"`
	NumericDerivatives bool         `json:"numeric_derivatives,omitempty"`
	FDStep             float64      `json:"fd_step,omitempty"`
	Spec               *specRequest `json:"spec,omitempty"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	spec := s.buildSpec(req.Spec)
	if err := spec.Validate(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	model := tank.NewModel(spec)
	if req.NumericDerivatives {
		model.UseNumericDerivatives(req.FDStep)
	}

	runCfg := optimization.RunConfig{
		Method:        optimization.Method(req.Method),
		X0:            []float64{req.D0, req.L0},
		GradTol:       req.GradTol,
		ObjTol:        req.ObjTol,
		MaxIterations: req.MaxIterations,
		Step:          optimization.StepPolicy{Fixed: req.FixedStep},
		PenaltyGrowth: req.PenaltyGrowth,
	}
	if runCfg.GradTol <= 0 {
		runCfg.GradTol = s.cfg.Optimization.GradTol
	}
	if runCfg.MaxIterations <= 0 {
		runCfg.MaxIterations = s.cfg.Optimization.MaxIterations
	}
	if err := runCfg.Validate(model); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	state := &runState{
		ID:      uuid.NewString(),
		Method:  runCfg.Method,
		Status:  "pending",
		Started: time.Now(),
		cancel:  cancel,
	}

	s.runsMu.Lock()
	s.runs[state.ID] = state
	s.runsMu.Unlock()

	runsStarted.Inc()
	go s.runOptimization(ctx, state, model, runCfg)

	// state.Status belongs to the run goroutine now; report the status the
	// job was accepted with.
	s.respondJSON(w, http.StatusAccepted, map[string]string{
		"id":     state.ID,
		"status": "pending",
	})
}

// runOptimization executes one job in its own goroutine. The engine owns the
// loop; the server only flips job status around it.
func (s *Server) runOptimization(ctx context.Context, state *runState, model *tank.Model, cfg optimization.RunConfig) {
	s.runsMu.Lock()
	state.Status = "running"
	s.runsMu.Unlock()

	result, err := s.engine.Run(ctx, model, cfg)

	s.runsMu.Lock()
	defer s.runsMu.Unlock()
	defer s.evictCompletedLocked()

	now := time.Now()
	state.Ended = &now
	if err != nil {
		// Validation was re-checked inside Run; reaching this means the
		// request slipped past the handler checks.
		s.logger.Error("optimization failed to start", map[string]interface{}{
			"id":    state.ID,
			"error": err.Error(),
		})
		state.Status = string(optimization.StatusFailed)
		runsFinished.WithLabelValues(state.Status, string(state.Method)).Inc()
		return
	}

	state.Status = string(result.Status)
	state.Result = result
	runsFinished.WithLabelValues(state.Status, string(state.Method)).Inc()
	runIterations.Observe(float64(result.Iterations))

	s.logger.Info("optimization finished", map[string]interface{}{
		"id":         state.ID,
		"method":     string(state.Method),
		"status":     state.Status,
		"iterations": result.Iterations,
	})
}

// evictCompletedLocked drops the oldest finished runs once their number
// exceeds the configured retention cap, so the run map stays bounded on a
// long-lived service. Pending and running jobs are never evicted. The caller
// must hold runsMu.
func (s *Server) evictCompletedLocked() {
	limit := s.cfg.Optimization.MaxCompletedRuns
	if limit <= 0 {
		return
	}

	var finished []*runState
	for _, run := range s.runs {
		if run.Ended != nil {
			finished = append(finished, run)
		}
	}
	if len(finished) <= limit {
		return
	}

	sort.Slice(finished, func(i, j int) bool {
		return finished[i].Ended.Before(*finished[j].Ended)
	})
	for _, run := range finished[:len(finished)-limit] {
		delete(s.runs, run.ID)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.runsMu.RLock()
	state, ok := s.runs[id]
	if !ok {
		s.runsMu.RUnlock()
		s.respondError(w, r, http.StatusNotFound, "optimization not found")
		return
	}

	resp := map[string]interface{}{
		"id":         state.ID,
		"method":     state.Method,
		"status":     state.Status,
		"start_time": state.Started.Format(time.RFC3339),
	}
	if state.Ended != nil {
		resp["end_time"] = state.Ended.Format(time.RFC3339)
	}
	if state.Result != nil {
		resp["result"] = state.Result
	}
	s.runsMu.RUnlock()

	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.runsMu.Lock()
	state, ok := s.runs[id]
	if !ok {
		s.runsMu.Unlock()
		s.respondError(w, r, http.StatusNotFound, "optimization not found")
		return
	}
	switch state.Status {
	case "pending", "running":
		state.cancel()
		s.runsMu.Unlock()
	default:
		status := state.Status
		s.runsMu.Unlock()
		s.respondError(w, r, http.StatusConflict, "cannot cancel optimization with status "+status)
		return
	}

	s.logger.Info("optimization cancellation requested", map[string]interface{}{"id": id})
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cancellation requested"})
}

type evaluateRequest struct {
	D    float64      `json:"d"`
	L    float64      `json:"l"`
	Spec *specRequest `json:"spec,omitempty"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	spec := s.buildSpec(req.Spec)
	if err := spec.Validate(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	evaluations.Inc()
	s.respondJSON(w, http.StatusOK, tank.Evaluate(spec, req.D, req.L))
}

type gridRequest struct {
	DMin   float64      `json:"d_min"`
	DMax   float64      `json:"d_max"`
	LMin   float64      `json:"l_min"`
	LMax   float64      `json:"l_max"`
	Points int          `json:"points"`
	Spec   *specRequest `json:"spec,omitempty"`
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Points > s.cfg.Optimization.MaxGridPoints {
		s.respondError(w, r, http.StatusBadRequest, "grid resolution exceeds the configured cap")
		return
	}

	spec := s.buildSpec(req.Spec)
	if err := spec.Validate(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	grid, err := tank.ContourGrid(spec, req.DMin, req.DMax, req.LMin, req.LMax, req.Points)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, grid)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Warn("request rejected", map[string]interface{}{
		"status":  status,
		"message": message,
	})
	s.respondJSON(w, status, map[string]string{"error": message})
}
