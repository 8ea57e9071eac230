// Package status is the orchestrator: it loads the day, profile, and
// history, runs the scoring pipeline, and returns a single smoothed
// metabolic health status.
package status

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/heys-app/metabolic-engine/internal/adherence"
	"github.com/heys-app/metabolic-engine/internal/crashrisk"
	"github.com/heys-app/metabolic-engine/internal/domain"
	"github.com/heys-app/metabolic-engine/internal/history"
	"github.com/heys-app/metabolic-engine/internal/inventory"
	"github.com/heys-app/metabolic-engine/internal/metaphase"
	"github.com/heys-app/metabolic-engine/internal/phenotype"
	"github.com/heys-app/metabolic-engine/internal/smoothing"
)

// Confidence bands over the completeness percentage.
const (
	confidenceHighFloor   = 80
	confidenceMediumFloor = 50
)

// maxNextSteps bounds the recommendation list.
const maxNextSteps = 3

// Options configures the optional collaborators of an Engine. Zero values
// select null-object defaults.
type Options struct {
	Wave       domain.InsulinWave
	Circadian  domain.Circadian
	Flags      domain.FeatureFlags
	Telemetry  domain.Telemetry
	CacheTTL   time.Duration
	WindowDays int
	WaveHours  float64
	Now        func() time.Time
}

// Engine computes the metabolic health status for a client and date.
type Engine struct {
	Store     domain.RecordStore
	Index     domain.FoodIndex
	Flags     domain.FeatureFlags
	Telemetry domain.Telemetry

	Adherence  *adherence.Scorer
	Risk       *crashrisk.Scorer
	Detector   *metaphase.Detector
	Window     *history.Window
	Classifier *phenotype.Classifier
	Cache      *Cache

	Now func() time.Time
}

// NewEngine wires an engine over the given store and food index, filling
// every optional collaborator with its null object.
func NewEngine(store domain.RecordStore, index domain.FoodIndex, opts Options) *Engine {
	if opts.Flags == nil {
		opts.Flags = domain.StaticFlags{Enabled: true}
	}
	if opts.Telemetry == nil {
		opts.Telemetry = domain.NoopTelemetry{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	detector := metaphase.NewDetector(opts.Wave, opts.WaveHours)
	detector.Telemetry = opts.Telemetry

	return &Engine{
		Store:      store,
		Index:      index,
		Flags:      opts.Flags,
		Telemetry:  opts.Telemetry,
		Adherence:  &adherence.Scorer{Index: index},
		Risk:       &crashrisk.Scorer{},
		Detector:   detector,
		Window:     history.NewWindow(store, index, opts.WindowDays),
		Classifier: phenotype.NewClassifier(opts.Circadian),
		Cache:      NewCache(opts.CacheTTL),
		Now:        opts.Now,
	}
}

// Today returns the current date key on the engine's clock.
func (e *Engine) Today() domain.DateKey {
	return domain.DateKey(e.Now().UTC().Format("2006-01-02"))
}

// Status returns the smoothed status for one client and date. It is total
// under normal operation: data-quality problems come back as unavailable
// results, never as errors; only store failures surface as errors.
func (e *Engine) Status(ctx context.Context, clientID string, date domain.DateKey, forceRefresh bool) (result *domain.StatusResult, err error) {
	if clientID == "" {
		return nil, domain.ErrClientIDRequired
	}
	if date == "" {
		date = e.Today()
	}
	if _, derr := date.Time(); derr != nil {
		return nil, domain.ErrInvalidDate
	}

	if !e.Flags.EngineEnabled(ctx) {
		return domain.Unavailable(domain.ReasonFeatureDisabled), nil
	}

	now := e.Now()
	if !forceRefresh {
		if cached, ok := e.Cache.Get(clientID, date, now); ok {
			out := *cached
			if cached.Debug != nil {
				dbg := *cached.Debug
				dbg.CacheHit = true
				out.Debug = &dbg
			}
			return &out, nil
		}
	}

	defer func() {
		if r := recover(); r != nil {
			e.Telemetry.Notify("status_panic", map[string]any{"client": clientID, "panic": fmt.Sprint(r)})
			result = domain.Unavailable(domain.ReasonInternalError)
			err = nil
		}
	}()

	prevSmoothed, prevLevel := e.Cache.Trajectory(clientID)

	result, smoothed, cerr := e.compute(ctx, clientID, date, prevSmoothed, prevLevel)
	if cerr != nil || !result.Available {
		return result, cerr
	}

	e.Cache.Put(clientID, date, result, smoothed, result.RiskLevel, now)

	e.Telemetry.Notify("status_computed", map[string]any{
		"client":     clientID,
		"date":       string(date),
		"score":      result.Score,
		"risk":       result.Risk,
		"risk_level": string(result.RiskLevel),
	})
	return result, nil
}

// ComputeDay recomputes one day without consulting or updating the cache or
// the smoothing trajectory. Used by the report generator.
func (e *Engine) ComputeDay(ctx context.Context, clientID string, date domain.DateKey) (*domain.StatusResult, error) {
	res, _, err := e.compute(ctx, clientID, date, nil, "")
	return res, err
}

// Phenotype classifies the client over the full history window.
func (e *Engine) Phenotype(ctx context.Context, clientID string, date domain.DateKey) (*domain.PhenotypeResult, error) {
	if date == "" {
		date = e.Today()
	}
	hist, err := e.Window.Load(ctx, clientID, date.AddDays(-1))
	if err != nil {
		return nil, err
	}
	return e.Classifier.Classify(ctx, clientID, hist), nil
}

// Thresholds derives the client's personal adherence bands.
func (e *Engine) Thresholds(ctx context.Context, clientID string, date domain.DateKey) (*domain.PersonalThresholds, error) {
	if date == "" {
		date = e.Today()
	}
	hist, err := e.Window.Load(ctx, clientID, date.AddDays(-1))
	if err != nil {
		return nil, err
	}
	return phenotype.Thresholds(hist), nil
}

func (e *Engine) compute(ctx context.Context, clientID string, date domain.DateKey, prevSmoothed *float64, prevLevel domain.RiskLevel) (*domain.StatusResult, float64, error) {
	rec, err := e.Store.DayRecord(ctx, clientID, date)
	if err != nil {
		return nil, 0, err
	}
	prof, err := e.Store.Profile(ctx, clientID)
	if err != nil {
		return nil, 0, err
	}

	inv := inventory.Take(rec, prof)
	if !inv.HasMeals && !inv.HasSleep && !inv.HasWeight {
		return domain.Unavailable(domain.ReasonInsufficientData), 0, nil
	}
	if prof == nil {
		prof = &domain.Profile{}
	}

	hist, err := e.Window.Load(ctx, clientID, date.AddDays(-1))
	if err != nil {
		return nil, 0, err
	}

	adh, err := e.Adherence.Score(ctx, rec, prof)
	if err != nil {
		return nil, 0, err
	}

	risk := e.Risk.ScoreDay(rec, prof, hist, date)
	risk.Level = smoothing.NextLevel(prevLevel, risk.Risk)
	forecast := e.Risk.Forecast(rec, prof, hist, date)

	phase := e.Detector.Detect(ctx, rec, prof, e.phaseMoment(date))

	value, ema, limited := smoothing.Smooth(float64(adh.Score), prevSmoothed)

	result := &domain.StatusResult{
		Available:    true,
		Date:         date,
		Score:        int(value + 0.5),
		RawScore:     adh.Score,
		Reasons:      adh.Reasons,
		NextSteps:    nextSteps(adh.Reasons, forecast),
		Risk:         risk.Risk,
		RiskLevel:    risk.Level,
		Forecast:     forecast,
		Phase:        phase,
		Confidence:   confidence(inv.Completeness),
		Completeness: inv.Completeness,
		Debug: &domain.StatusDebug{
			PrevSmoothed: prevSmoothed,
			EMAValue:     ema,
			RateLimited:  limited,
			HistoryDays:  len(hist),
		},
	}
	return result, value, nil
}

// phaseMoment picks the clock used for phase detection: the live clock for
// today, otherwise the end of the requested day.
func (e *Engine) phaseMoment(date domain.DateKey) time.Time {
	now := e.Now().UTC()
	if domain.DateKey(now.Format("2006-01-02")) == date {
		return now
	}
	day, err := date.Time()
	if err != nil {
		return now
	}
	return day.Add(23*time.Hour + 59*time.Minute)
}

func confidence(completeness int) domain.Confidence {
	switch {
	case completeness >= confidenceHighFloor:
		return domain.ConfidenceHigh
	case completeness >= confidenceMediumFloor:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// nextSteps ranks recommendations: the forecast's urgent message first when
// present, then the heaviest adherence reasons.
func nextSteps(reasons []domain.Reason, forecast *domain.RiskForecast) []domain.NextStep {
	var steps []domain.NextStep
	rank := 0

	if forecast != nil && len(forecast.Strategies) > 0 && forecast.Risk >= 60 {
		steps = append(steps, domain.NextStep{
			Rank:     rank,
			Action:   forecast.Strategies[0].Action,
			SourceID: "crash_forecast",
		})
		rank++
	}

	sorted := append([]domain.Reason{}, reasons...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Impact > sorted[j].Impact })

	for _, r := range sorted {
		if r.Impact == 0 || len(steps) >= maxNextSteps {
			break
		}
		steps = append(steps, domain.NextStep{Rank: rank, Action: r.Label + ": " + r.Details, SourceID: r.ID})
		rank++
	}
	return steps
}
