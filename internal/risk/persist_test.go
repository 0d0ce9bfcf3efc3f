package risk

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzedReports(t *testing.T) []*Report {
	t.Helper()
	a := newTestAnalyzer(t)
	bars := syntheticBars(300, 9)
	reports, err := a.AnalyzeAll(context.Background(), []Request{
		{Symbol: "AAA", Bars: bars, BenchmarkReturns: benchmarkFor(bars, 10), Prediction: 0.02, Confidence: 0.6},
		{Symbol: "BBB", Bars: syntheticBars(50, 11)},
	})
	require.NoError(t, err)
	return reports
}

func TestSaveCSV(t *testing.T) {
	reports := analyzedReports(t)
	path := filepath.Join(t.TempDir(), "reports", "summary.csv")

	require.NoError(t, SaveCSV(reports, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per report")

	header := rows[0]
	assert.Equal(t, "Symbol", header[0])
	require.Len(t, rows[1], len(header))

	// Sorted by symbol
	assert.Equal(t, "AAA", rows[1][0])
	assert.Equal(t, "BBB", rows[2][0])

	// The full report has every column populated; the short-history one
	// leaves the tail-risk columns empty.
	assert.NotEmpty(t, rows[1][10], "beta column for AAA")
	assert.Empty(t, rows[2][16], "VaR column empty for BBB")
}

func TestSaveCSV_Empty(t *testing.T) {
	err := SaveCSV(nil, filepath.Join(t.TempDir(), "x.csv"))
	require.Error(t, err)
}

func TestSaveJSON_RoundTrip(t *testing.T) {
	reports := analyzedReports(t)
	path := filepath.Join(t.TempDir(), "reports", "full.json")

	require.NoError(t, SaveJSON(reports, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []*Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, reports[0].Symbol, decoded[0].Symbol)
	assert.Equal(t, reports[0].Bars, decoded[0].Bars)
	require.NotNil(t, decoded[0].Volatility)
	assert.InDelta(t, reports[0].Volatility.Current, decoded[0].Volatility.Current, 1e-9)
}
