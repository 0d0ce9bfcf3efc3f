package risk

import (
	"time"

	"eqrisk/internal/channel"
	"eqrisk/internal/montecarlo"
	"eqrisk/internal/significance"
	"eqrisk/internal/sizing"
	"eqrisk/internal/tailrisk"
	"eqrisk/internal/volatility"
)

// Request is one symbol's analysis input. BenchmarkReturns, Prediction
// and Confidence are optional; the matching report sections are omitted
// when they are absent.
type Request struct {
	Symbol string                `json:"symbol"`
	Bars   []volatility.PriceBar `json:"bars"`

	// BenchmarkReturns is a daily log-return series parallel to the
	// returns derived from Bars, used for beta and correlation.
	BenchmarkReturns []float64 `json:"benchmark_returns,omitempty"`

	// Prediction and Confidence describe a model signal to size.
	Prediction float64 `json:"prediction,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// VolatilitySection summarizes the estimator ensemble at the latest date.
type VolatilitySection struct {
	Latest volatility.Point `json:"latest"`

	// Current is the preferred annualized volatility for downstream use:
	// the 20-day rolling estimate, falling back to EWMA(0.94) and then
	// the expanding historical estimate.
	Current float64 `json:"current"`

	// Percentile locates Current within the symbol's own 20-day rolling
	// history, on a 0-100 scale.
	Percentile float64 `json:"percentile"`
}

// MonteCarloSection summarizes a simulated terminal-price distribution.
type MonteCarloSection struct {
	Summary      montecarlo.Summary `json:"summary"`
	Distribution []montecarlo.Bin   `json:"distribution"`
	Requested    int                `json:"requested"`
	Generated    int                `json:"generated"`
	Kept         int                `json:"kept"`
}

// SignificanceSection holds the benchmark-relative statistics.
type SignificanceSection struct {
	Beta        *significance.BetaResult        `json:"beta,omitempty"`
	Correlation *significance.CorrelationResult `json:"correlation,omitempty"`
}

// ChannelSection is the best trailing regression channel.
type ChannelSection struct {
	Window int         `json:"window"`
	Fit    channel.Fit `json:"fit"`
}

// TailRiskSection holds VaR/ES estimates and the GARCH fit behind them.
type TailRiskSection struct {
	Estimates []tailrisk.Estimate   `json:"estimates"`
	GARCH     *tailrisk.GARCHResult `json:"garch,omitempty"`
}

// Report is a full per-symbol risk analysis. Sections are nil when their
// inputs were absent or insufficient; a nil section never aborts the
// rest of the report.
type Report struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	GeneratedAt time.Time `json:"generated_at"`
	Bars        int       `json:"bars"`

	Volatility   *VolatilitySection   `json:"volatility,omitempty"`
	MonteCarlo   *MonteCarloSection   `json:"monte_carlo,omitempty"`
	Significance *SignificanceSection `json:"significance,omitempty"`
	Channel      *ChannelSection      `json:"channel,omitempty"`
	TailRisk     *TailRiskSection     `json:"tail_risk,omitempty"`
	Sizing       *sizing.Result       `json:"sizing,omitempty"`
}
