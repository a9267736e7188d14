// Package pipeline materializes the warehouse model graph. Each model is
// built from fully-materialized upstream models only, validated as soon as
// its own materialization completes, and marked failed (along with
// everything depending on it) when materialization errors or an
// error-severity rule finds violations. Independent models run in parallel.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/citybike/warehouse/internal/ingest"
	"github.com/citybike/warehouse/internal/validate"
	"github.com/citybike/warehouse/internal/warehouse"
)

// Runner executes the model graph against one raw source snapshot at one
// evaluation time. It is a pure function of (source, evaluatedAt): no
// wall-clock reads influence any derived value, so two runs over the same
// input produce identical materializations.
type Runner struct {
	store       warehouse.Store
	source      *ingest.Source
	evaluatedAt time.Time
	log         *slog.Logger
	models      []Model
}

// New constructs a Runner over the full model registry.
func New(store warehouse.Store, source *ingest.Source, evaluatedAt time.Time, log *slog.Logger) *Runner {
	return &Runner{
		store:       store,
		source:      source,
		evaluatedAt: evaluatedAt,
		log:         log,
		models:      registry(),
	}
}

// Materialize builds the named model from its upstream materializations and
// writes the result to the store. Callers must ensure every upstream model is
// already materialized; Run does this ordering for the whole graph.
// Returns the row count and the number of records excluded by parse failures.
func (r *Runner) Materialize(ctx context.Context, name string) (rows, parseErrors int, err error) {
	m, err := modelByName(r.models, name)
	if err != nil {
		return 0, 0, fmt.Errorf("pipeline.Runner.Materialize: %w", err)
	}
	t, parseErrors, err := m.build(ctx, r)
	if err != nil {
		return 0, 0, fmt.Errorf("pipeline.Runner.Materialize: %s: %w", name, err)
	}
	if err := r.store.Write(ctx, t); err != nil {
		return 0, 0, fmt.Errorf("pipeline.Runner.Materialize: %s: %w", name, err)
	}
	return t.Len(), parseErrors, nil
}

// Validate runs the named model's declared rules against its latest
// materialization. Call only after Materialize has succeeded for the model;
// validation never runs against partially materialized data because the
// store only ever holds complete materializations.
func (r *Runner) Validate(ctx context.Context, name string) (validate.ModelResult, error) {
	m, err := modelByName(r.models, name)
	if err != nil {
		return validate.ModelResult{}, fmt.Errorf("pipeline.Runner.Validate: %w", err)
	}
	t, err := r.store.Read(ctx, name)
	if err != nil {
		return validate.ModelResult{}, fmt.Errorf("pipeline.Runner.Validate: %s: %w", name, err)
	}
	result, err := validate.Run(ctx, t, m.Rules, r.store)
	if err != nil {
		return validate.ModelResult{}, fmt.Errorf("pipeline.Runner.Validate: %w", err)
	}
	return result, nil
}

// Run materializes and validates every model in dependency order: models
// whose upstreams have all succeeded run concurrently in waves, and a model
// with a failed or skipped upstream is skipped without running. Model
// failures land in the report, not in the returned error; the error is
// reserved for a broken registry (a dependency cycle).
func (r *Runner) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		ID:          uuid.New(),
		StartedAt:   time.Now().UTC(),
		EvaluatedAt: r.evaluatedAt,
		Models:      make([]ModelReport, len(r.models)),
	}

	status := make(map[string]ModelStatus, len(r.models))
	var mu sync.Mutex

	r.log.Info("pipeline run started",
		"run_id", report.ID, "records", len(r.source.Records),
		"evaluated_at", r.evaluatedAt.Format("2006-01-02"))

	for {
		var waveIdx []int
		progressed := false

		for i := range r.models {
			m := &r.models[i]
			if _, done := status[m.Name]; done {
				continue
			}
			ready, blocked := true, false
			for _, up := range m.Upstream {
				switch status[up] {
				case StatusSuccess:
				case StatusFailed, StatusSkipped:
					blocked = true
				default:
					ready = false
				}
			}
			if blocked {
				status[m.Name] = StatusSkipped
				report.Models[i] = ModelReport{Model: m.Name, Layer: m.Layer, Status: StatusSkipped}
				r.log.Warn("model skipped: upstream failed", "model", m.Name)
				progressed = true
				continue
			}
			if ready {
				waveIdx = append(waveIdx, i)
			}
		}

		if len(waveIdx) == 0 {
			if progressed {
				continue
			}
			if len(status) < len(r.models) {
				return nil, fmt.Errorf("pipeline.Runner.Run: dependency cycle in model registry")
			}
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, i := range waveIdx {
			i := i
			m := &r.models[i]
			g.Go(func() error {
				mr := r.runModel(gctx, m)
				mu.Lock()
				report.Models[i] = mr
				status[m.Name] = mr.Status
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("pipeline.Runner.Run: %w", err)
		}
	}

	report.FinishedAt = time.Now().UTC()
	report.Succeeded = true
	for _, mr := range report.Models {
		if mr.Status != StatusSuccess {
			report.Succeeded = false
			break
		}
	}

	r.log.Info("pipeline run finished",
		"run_id", report.ID, "succeeded", report.Succeeded,
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds())
	return report, nil
}

// runModel materializes and validates one model, producing its report entry.
// Every rule outcome is recorded in the report before the failed/success
// decision is taken, so a halting error-severity violation is always visible
// in the run report alongside the halt itself.
func (r *Runner) runModel(ctx context.Context, m *Model) ModelReport {
	mr := ModelReport{Model: m.Name, Layer: m.Layer}
	start := time.Now()

	rows, parseErrors, err := r.Materialize(ctx, m.Name)
	if err != nil {
		mr.Status = StatusFailed
		mr.Error = err.Error()
		r.log.Error("model failed", "model", m.Name, "error", err)
		return mr
	}
	mr.Rows = rows
	mr.ParseErrors = parseErrors

	result, err := r.Validate(ctx, m.Name)
	if err != nil {
		mr.Status = StatusFailed
		mr.Error = err.Error()
		r.log.Error("model validation errored", "model", m.Name, "error", err)
		return mr
	}
	mr.Validation = result.Outcomes

	for _, o := range result.Outcomes {
		if o.Passed {
			continue
		}
		if o.Severity == validate.SeverityError {
			r.log.Error("validation rule failed", "model", m.Name,
				"rule", o.Rule, "violations", o.Violations)
		} else {
			r.log.Warn("validation rule failed", "model", m.Name,
				"rule", o.Rule, "violations", o.Violations)
		}
	}

	if result.Failed() {
		mr.Status = StatusFailed
		mr.Error = "validation failed"
		return mr
	}

	mr.Status = StatusSuccess
	r.log.Info("model materialized", "model", m.Name, "rows", rows,
		"parse_errors", parseErrors,
		"duration_ms", time.Since(start).Milliseconds())
	return mr
}
