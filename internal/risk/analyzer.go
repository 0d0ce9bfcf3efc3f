package risk

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"eqrisk/internal/channel"
	"eqrisk/internal/montecarlo"
	"eqrisk/internal/significance"
	"eqrisk/internal/sizing"
	"eqrisk/internal/stats"
	"eqrisk/internal/tailrisk"
	"eqrisk/internal/volatility"
)

// Analyzer orchestrates the per-symbol risk analysis pipeline.
type Analyzer struct {
	params Params
	logger *slog.Logger

	// newSource builds the simulator's normal-variate source; tests
	// substitute a deterministic one.
	newSource func() montecarlo.NormalSource
}

// NewAnalyzer creates an analyzer with the given parameters.
func NewAnalyzer(params Params, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		params: params,
		logger: logger,
		newSource: func() montecarlo.NormalSource {
			return montecarlo.NewBoxMullerSource(time.Now().UnixNano())
		},
	}
}

// SetNormalSource overrides the simulator's random source factory.
func (a *Analyzer) SetNormalSource(factory func() montecarlo.NormalSource) {
	a.newSource = factory
}

// Analyze produces a risk report for one symbol. Individual sections
// degrade to nil when their inputs are insufficient; only a structurally
// invalid request or an expired context fails the whole report.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()

	if !a.params.IsValid() {
		return nil, fmt.Errorf("invalid analysis parameters")
	}
	if req.Symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}
	if len(req.Bars) < MinBars {
		return nil, fmt.Errorf("symbol %s: need at least %d bars, got %d", req.Symbol, MinBars, len(req.Bars))
	}

	calcCtx, cancel := context.WithTimeout(ctx, a.params.Timeout)
	defer cancel()

	a.logger.InfoContext(ctx, "starting risk analysis",
		"symbol", req.Symbol,
		"bars", len(req.Bars),
		"timeout", a.params.Timeout,
	)

	report := &Report{
		ID:          uuid.NewString(),
		Symbol:      req.Symbol,
		GeneratedAt: time.Now().UTC(),
		Bars:        len(req.Bars),
	}

	returns := volatility.Returns(req.Bars)
	closes := make([]float64, len(req.Bars))
	for i, b := range req.Bars {
		closes[i] = b.Close
	}

	sections := []struct {
		name string
		run  func()
	}{
		{"volatility", func() { report.Volatility = a.volatilitySection(calcCtx, req) }},
		{"monte_carlo", func() { report.MonteCarlo = a.monteCarloSection(calcCtx, req, returns, closes) }},
		{"significance", func() { report.Significance = a.significanceSection(calcCtx, req, returns) }},
		{"channel", func() { report.Channel = a.channelSection(closes) }},
		{"tail_risk", func() { report.TailRisk = a.tailRiskSection(calcCtx, req, returns) }},
	}
	for _, s := range sections {
		select {
		case <-calcCtx.Done():
			return nil, fmt.Errorf("analysis timeout exceeded: %w", calcCtx.Err())
		default:
		}
		s.run()
	}

	// Sizing needs the current volatility, so it runs after the
	// volatility section.
	if req.Prediction != 0 && report.Volatility != nil {
		result := sizing.SizePosition(req.Confidence, req.Prediction, report.Volatility.Current, a.params.Sizing)
		report.Sizing = &result
	}

	a.logger.InfoContext(ctx, "risk analysis completed",
		"symbol", req.Symbol,
		"duration", time.Since(start),
		"sections", report.sectionCount(),
	)
	return report, nil
}

// AnalyzeAll runs Analyze for every request with bounded concurrency.
// Failed symbols are skipped with a warning instead of failing the
// batch; an error is returned only when no symbol succeeds.
func (a *Analyzer) AnalyzeAll(ctx context.Context, reqs []Request) ([]*Report, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("no analysis requests provided")
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.params.MaxConcurrency)

	slots := make([]*Report, len(reqs))
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			report, err := a.Analyze(groupCtx, req)
			if err != nil {
				a.logger.WarnContext(groupCtx, "skipping symbol",
					"symbol", req.Symbol,
					"error", err,
				)
				return nil
			}
			slots[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reports := make([]*Report, 0, len(reqs))
	for _, r := range slots {
		if r != nil {
			reports = append(reports, r)
		}
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("no valid reports from %d symbols", len(reqs))
	}
	return reports, nil
}

func (a *Analyzer) volatilitySection(ctx context.Context, req Request) *VolatilitySection {
	points := volatility.ComputeMeasures(req.Bars)
	if len(points) == 0 {
		a.logger.WarnContext(ctx, "volatility section skipped",
			"symbol", req.Symbol,
			"reason", "insufficient bars",
		)
		return nil
	}

	latest := points[len(points)-1]
	current, ok := currentVol(latest)
	if !ok {
		a.logger.WarnContext(ctx, "volatility section skipped",
			"symbol", req.Symbol,
			"reason", "no warmed-up estimator",
		)
		return nil
	}

	rolling := make([]stats.Value, len(points))
	for i, p := range points {
		rolling[i] = p.Rolling20
	}

	return &VolatilitySection{
		Latest:     latest,
		Current:    current,
		Percentile: volatility.Percentile(current, rolling),
	}
}

// currentVol picks the preferred annualized estimate from a point:
// rolling 20-day, then EWMA(0.94), then expanding historical.
func currentVol(p volatility.Point) (float64, bool) {
	for _, v := range []stats.Value{p.Rolling20, p.EWMA94, p.Historical} {
		if v.Valid {
			return v.Float, true
		}
	}
	return 0, false
}

func (a *Analyzer) monteCarloSection(ctx context.Context, req Request, returns, closes []float64) *MonteCarloSection {
	if len(returns) < 2 {
		return nil
	}

	mcParams := montecarlo.EstimateParameters(returns)
	dailyVol := math.Sqrt(mcParams.Variance)
	cfg := a.params.monteCarloConfig(mcParams, dailyVol)

	result := montecarlo.Simulate(closes[len(closes)-1], cfg, a.newSource())
	if result.Kept == 0 {
		a.logger.WarnContext(ctx, "monte carlo section skipped",
			"symbol", req.Symbol,
			"reason", "no valid paths",
		)
		return nil
	}
	if result.Kept < result.Requested {
		a.logger.DebugContext(ctx, "monte carlo path shortfall",
			"symbol", req.Symbol,
			"requested", result.Requested,
			"kept", result.Kept,
		)
	}

	return &MonteCarloSection{
		Summary:      montecarlo.Percentiles(result.Paths),
		Distribution: montecarlo.FinalDistribution(result.Paths, montecarlo.DefaultDistributionBins),
		Requested:    result.Requested,
		Generated:    result.Generated,
		Kept:         result.Kept,
	}
}

func (a *Analyzer) significanceSection(ctx context.Context, req Request, returns []float64) *SignificanceSection {
	if len(req.BenchmarkReturns) == 0 {
		return nil
	}
	if len(req.BenchmarkReturns) != len(returns) {
		a.logger.WarnContext(ctx, "significance section skipped",
			"symbol", req.Symbol,
			"reason", "benchmark length mismatch",
			"returns", len(returns),
			"benchmark", len(req.BenchmarkReturns),
		)
		return nil
	}

	beta := significance.BetaStatistics(returns, req.BenchmarkReturns, a.params.ConfidenceLevel)
	corr := significance.CorrelationStatistics(returns, req.BenchmarkReturns, a.params.ConfidenceLevel)
	if beta == nil && corr == nil {
		return nil
	}
	return &SignificanceSection{Beta: beta, Correlation: corr}
}

func (a *Analyzer) channelSection(closes []float64) *ChannelSection {
	if len(closes) < MinBars {
		return nil
	}
	window, fit := channel.FindOptimalWindow(
		closes,
		a.params.ChannelMinWindow,
		a.params.ChannelMaxWindow,
		a.params.ChannelStep,
		a.params.ChannelWidth,
	)
	if fit.N < MinBars {
		return nil
	}
	return &ChannelSection{Window: window, Fit: fit}
}

func (a *Analyzer) tailRiskSection(ctx context.Context, req Request, returns []float64) *TailRiskSection {
	estimates, fit := tailrisk.Compute(returns, a.params.VaRLevels, a.params.VaRWindow)
	if estimates == nil {
		a.logger.DebugContext(ctx, "tail risk section skipped",
			"symbol", req.Symbol,
			"returns", len(returns),
		)
		return nil
	}
	return &TailRiskSection{Estimates: estimates, GARCH: fit}
}

func (r *Report) sectionCount() int {
	count := 0
	if r.Volatility != nil {
		count++
	}
	if r.MonteCarlo != nil {
		count++
	}
	if r.Significance != nil {
		count++
	}
	if r.Channel != nil {
		count++
	}
	if r.TailRisk != nil {
		count++
	}
	if r.Sizing != nil {
		count++
	}
	return count
}
