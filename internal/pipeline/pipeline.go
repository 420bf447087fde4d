// Package pipeline orchestrates the ingestion, normalization, consolidation,
// pricing and enrichment phases of a catalog run. Phases execute strictly in
// sequence; partial failures are counted and logged per item, and every phase
// leaves an append-only run log row behind.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/listino/catalog-service/internal/enrichment"
	"github.com/listino/catalog-service/internal/types"
)

// Orchestrator runs the phased pipeline. A single instance guards the
// process-wide "one run at a time" invariant through its run mutex.
type Orchestrator struct {
	store      Store
	feeds      FeedSource
	notifier   Notifier
	enricher   enrichment.Provider // data enrichment, may be nil
	aiEnricher enrichment.Provider // AI enrichment, may be nil
	logger     zerolog.Logger
	now        func() time.Time

	runMu sync.Mutex
}

// Config wires the orchestrator's collaborators
type Config struct {
	Store      Store
	Feeds      FeedSource
	Notifier   Notifier
	Enricher   enrichment.Provider
	AIEnricher enrichment.Provider
	Logger     zerolog.Logger
	Now        func() time.Time // defaults to time.Now
}

// New creates an orchestrator
func New(cfg Config) *Orchestrator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		store:      cfg.Store,
		feeds:      cfg.Feeds,
		notifier:   cfg.Notifier,
		enricher:   cfg.Enricher,
		aiEnricher: cfg.AIEnricher,
		logger:     cfg.Logger,
		now:        now,
	}
}

// runState accumulates results across phases of one run
type runState struct {
	runID      string
	opts       Options
	normalized []types.NormalizedRecord
	products   []types.MasterProduct

	mu       sync.Mutex
	warnings []string
	errors   []string
}

func (st *runState) addWarning(format string, args ...any) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.warnings = append(st.warnings, fmt.Sprintf(format, args...))
}

func (st *runState) addError(format string, args ...any) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.errors = append(st.errors, fmt.Sprintf(format, args...))
}

// Run executes one full pipeline run. A second call while a run is active
// returns ErrRunInProgress without touching the active run. The run lock is
// released and the terminal run log row plus the single completion
// notification are emitted on every exit path, panics included.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*RunResult, error) {
	if !o.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer o.runMu.Unlock()
	return o.run(ctx, opts, uuid.New().String()), nil
}

// RunAsync starts a run in the background and returns its ID. The run lock
// is acquired before returning, so a nil error means the run is exclusively
// ours. The result is reported through run logs and the completion notifier.
func (o *Orchestrator) RunAsync(ctx context.Context, opts Options) (string, error) {
	if !o.runMu.TryLock() {
		return "", ErrRunInProgress
	}
	runID := uuid.New().String()
	go func() {
		defer o.runMu.Unlock()
		o.run(ctx, opts, runID)
	}()
	return runID, nil
}

func (o *Orchestrator) run(ctx context.Context, opts Options, runID string) (result *RunResult) {
	if opts.WindowDays <= 0 {
		opts.WindowDays = 7
	}
	if opts.AIItemLimit <= 0 {
		opts.AIItemLimit = 50
	}

	st := &runState{runID: runID, opts: opts}
	started := o.now()

	o.logger.Info().
		Str("run_id", st.runID).
		Bool("skip_ingestion", opts.SkipIngestion).
		Bool("skip_enrichment", opts.SkipEnrichment).
		Bool("skip_ai", opts.SkipAI).
		Msg("Starting pipeline run")

	defer func() {
		if r := recover(); r != nil {
			st.addError("run aborted by panic: %v", r)
			o.logger.Error().Str("run_id", st.runID).Interface("panic", r).Msg("Pipeline run panicked")
		}
		result = o.finish(ctx, st, started)
	}()

	o.execPhase(ctx, st, types.PhaseIngestion, func(phaseCtx context.Context) phaseOutcome {
		return o.ingestionPhase(phaseCtx, st)
	})
	if canceled(ctx, st) {
		return
	}

	o.execPhase(ctx, st, types.PhaseNormalization, func(phaseCtx context.Context) phaseOutcome {
		return o.normalizationPhase(phaseCtx, st)
	})
	if canceled(ctx, st) {
		return
	}

	o.execPhase(ctx, st, types.PhaseConsolidation, func(phaseCtx context.Context) phaseOutcome {
		return o.consolidationPhase(phaseCtx, st)
	})
	if canceled(ctx, st) {
		return
	}

	o.execPhase(ctx, st, types.PhasePricing, func(phaseCtx context.Context) phaseOutcome {
		return o.pricingPhase(phaseCtx, st)
	})
	if canceled(ctx, st) {
		return
	}

	if !opts.SkipEnrichment && o.enricher != nil {
		o.execPhase(ctx, st, types.PhaseEnrichment, func(phaseCtx context.Context) phaseOutcome {
			return o.enrichmentPhase(phaseCtx, st, o.enricher, types.PhaseEnrichment, 0)
		})
		if canceled(ctx, st) {
			return
		}
	}

	if !opts.SkipAI && o.aiEnricher != nil {
		o.execPhase(ctx, st, types.PhaseAIEnrichment, func(phaseCtx context.Context) phaseOutcome {
			return o.enrichmentPhase(phaseCtx, st, o.aiEnricher, types.PhaseAIEnrichment, opts.AIItemLimit)
		})
	}

	return
}

// canceled records a cooperative cancellation between phases. The deferred
// finish still writes the terminal row and sends the notification.
func canceled(ctx context.Context, st *runState) bool {
	if err := ctx.Err(); err != nil {
		st.addError("run canceled: %v", err)
		return true
	}
	return false
}

// finish writes the terminal COMPLETE row and dispatches the completion
// notification exactly once. It deliberately does not use the run context so
// a canceled run still leaves a terminal record.
func (o *Orchestrator) finish(ctx context.Context, st *runState, started time.Time) *RunResult {
	finishCtx := context.WithoutCancel(ctx)
	finished := o.now()
	duration := finished.Sub(started)

	total, err := o.store.CountMasterProducts(finishCtx)
	if err != nil {
		o.logger.Warn().Err(err).Msg("Failed to count master products for run summary")
	}

	success := len(st.errors) == 0
	status := types.StatusSuccess
	if !success {
		status = types.StatusError
	} else if len(st.warnings) > 0 {
		status = types.StatusWarning
	}

	o.writeRunLog(finishCtx, st, types.PhaseComplete, status, duration, total, map[string]any{
		"totalProducts": total,
		"warnings":      len(st.warnings),
		"errors":        len(st.errors),
	})
	runsTotal.WithLabelValues(string(status)).Inc()

	event := types.CompletionEvent{
		RunID:         st.runID,
		Success:       success,
		Duration:      duration,
		TotalProducts: total,
		Warnings:      st.warnings,
		Errors:        st.errors,
		FinishedAt:    finished,
	}
	if o.notifier != nil {
		if err := o.notifier.Notify(finishCtx, event); err != nil {
			// Notification delivery is best-effort; the run log already holds the result
			o.logger.Warn().Err(err).Str("run_id", st.runID).Msg("Completion notification failed")
		}
	}

	o.logger.Info().
		Str("run_id", st.runID).
		Bool("success", success).
		Dur("duration", duration).
		Int("total_products", total).
		Int("warnings", len(st.warnings)).
		Int("errors", len(st.errors)).
		Msg("Pipeline run finished")

	return &RunResult{
		RunID:         st.runID,
		Success:       success,
		TotalProducts: total,
		Duration:      duration,
		Warnings:      st.warnings,
		Errors:        st.errors,
	}
}

// phaseOutcome is what each phase implementation reports back
type phaseOutcome struct {
	Status    types.PhaseStatus
	Processed int
	Detail    map[string]any
}

// execPhase times a phase, converts panics into a phase error, and persists
// the run log row before the pipeline moves on.
func (o *Orchestrator) execPhase(ctx context.Context, st *runState, phase types.Phase, fn func(context.Context) phaseOutcome) {
	started := o.now()
	o.logger.Info().Str("run_id", st.runID).Str("phase", string(phase)).Msg("Phase starting")

	outcome := o.safeRun(st, phase, fn, ctx)
	duration := o.now().Sub(started)

	phaseDuration.WithLabelValues(string(phase)).Observe(duration.Seconds())
	if outcome.Status == types.StatusError {
		phaseErrors.WithLabelValues(string(phase)).Inc()
	}

	o.writeRunLog(ctx, st, phase, outcome.Status, duration, outcome.Processed, outcome.Detail)

	o.logger.Info().
		Str("run_id", st.runID).
		Str("phase", string(phase)).
		Str("status", string(outcome.Status)).
		Int("processed", outcome.Processed).
		Dur("duration", duration).
		Msg("Phase finished")
}

func (o *Orchestrator) safeRun(st *runState, phase types.Phase, fn func(context.Context) phaseOutcome, ctx context.Context) (outcome phaseOutcome) {
	defer func() {
		if r := recover(); r != nil {
			st.addError("%s: panic: %v", phase, r)
			outcome = phaseOutcome{
				Status: types.StatusError,
				Detail: map[string]any{"panic": fmt.Sprint(r)},
			}
		}
	}()
	return fn(ctx)
}

func (o *Orchestrator) writeRunLog(ctx context.Context, st *runState, phase types.Phase, status types.PhaseStatus, duration time.Duration, processed int, detail map[string]any) {
	blob, err := json.Marshal(detail)
	if err != nil {
		blob = []byte("{}")
	}

	entry := types.RunLog{
		RunID:     st.runID,
		Phase:     phase,
		Status:    status,
		Detail:    string(blob),
		Duration:  duration,
		Processed: processed,
		CreatedAt: o.now(),
	}
	if err := o.store.InsertRunLog(context.WithoutCancel(ctx), entry); err != nil {
		o.logger.Error().Err(err).
			Str("run_id", st.runID).
			Str("phase", string(phase)).
			Msg("Failed to persist run log entry")
	}
}

// InterruptedRunLog builds the terminal row for a run that never reached
// COMPLETE, typically because the process died mid-run.
func InterruptedRunLog(runID string, at time.Time) types.RunLog {
	return types.RunLog{
		RunID:     runID,
		Phase:     types.PhaseComplete,
		Status:    types.StatusError,
		Detail:    `{"interrupted":true}`,
		CreatedAt: at,
	}
}
