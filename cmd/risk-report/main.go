// Command risk-report loads a daily OHLC price CSV, runs the full risk
// analysis for every symbol, and writes CSV and JSON reports.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"eqrisk/internal/config"
	"eqrisk/internal/infrastructure"
	"eqrisk/internal/risk"
	"eqrisk/internal/volatility"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration file")
	inputPath := flag.String("in", "", "input CSV with Date,Symbol,Open,High,Low,Close columns")
	outputDir := flag.String("out", "", "output directory (defaults to the configured reports dir)")
	benchmark := flag.String("benchmark", "", "symbol to use as the benchmark for beta/correlation")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.ContextWithTraceID(context.Background())

	if *inputPath == "" {
		logger.ErrorContext(ctx, "no input CSV specified", "hint", "pass -in prices.csv")
		os.Exit(1)
	}
	if *outputDir == "" {
		*outputDir = cfg.Output.Dir
	}

	logger.InfoContext(ctx, "loading price data", "path", *inputPath)
	barsBySymbol, err := loadPriceBars(*inputPath)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load price data", "error", err)
		os.Exit(1)
	}
	if len(barsBySymbol) == 0 {
		logger.ErrorContext(ctx, "no usable price rows in CSV", "path", *inputPath)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "loaded price data", "symbols", len(barsBySymbol))

	var benchmarkReturns []float64
	if *benchmark != "" {
		benchBars, ok := barsBySymbol[*benchmark]
		if !ok {
			logger.ErrorContext(ctx, "benchmark symbol not found in CSV", "symbol", *benchmark)
			os.Exit(1)
		}
		benchmarkReturns = volatility.Returns(benchBars)
	}

	requests := buildRequests(barsBySymbol, *benchmark, benchmarkReturns)

	analyzer := risk.NewAnalyzer(cfg.AnalysisParams(), logger)
	reports, err := analyzer.AnalyzeAll(ctx, requests)
	if err != nil {
		logger.ErrorContext(ctx, "analysis failed", "error", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "analysis completed", "reports", len(reports))

	timestamp := time.Now().Format("20060102")
	if cfg.Output.Format == "csv" || cfg.Output.Format == "both" {
		path := filepath.Join(*outputDir, fmt.Sprintf("risk_report_%s.csv", timestamp))
		if err := risk.SaveCSV(reports, path); err != nil {
			logger.ErrorContext(ctx, "failed to save CSV report", "error", err)
			os.Exit(1)
		}
		logger.InfoContext(ctx, "saved CSV report", "path", path)
	}
	if cfg.Output.Format == "json" || cfg.Output.Format == "both" {
		path := filepath.Join(*outputDir, fmt.Sprintf("risk_report_%s.json", timestamp))
		if err := risk.SaveJSON(reports, path); err != nil {
			logger.ErrorContext(ctx, "failed to save JSON report", "error", err)
			os.Exit(1)
		}
		logger.InfoContext(ctx, "saved JSON report", "path", path)
	}

	printSummary(reports)
}

// loadPriceBars reads the CSV into per-symbol bar series ordered by date.
// Rows with unparseable dates or non-positive closes are skipped.
func loadPriceBars(csvPath string) (map[string][]volatility.PriceBar, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	dateIdx, symbolIdx, openIdx, highIdx, lowIdx, closeIdx := -1, -1, -1, -1, -1, -1
	for i, col := range header {
		switch col {
		case "Date":
			dateIdx = i
		case "Symbol", "Ticker":
			symbolIdx = i
		case "Open", "OpenPrice":
			openIdx = i
		case "High", "HighPrice":
			highIdx = i
		case "Low", "LowPrice":
			lowIdx = i
		case "Close", "ClosePrice":
			closeIdx = i
		}
	}
	if dateIdx < 0 || symbolIdx < 0 || closeIdx < 0 {
		return nil, fmt.Errorf("CSV missing required Date, Symbol or Close column")
	}

	barsBySymbol := make(map[string][]volatility.PriceBar)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		date, err := time.Parse("2006-01-02", record[dateIdx])
		if err != nil {
			continue
		}
		closePrice, _ := strconv.ParseFloat(record[closeIdx], 64)
		if closePrice <= 0 {
			continue
		}

		bar := volatility.PriceBar{Date: date, Close: closePrice}
		if openIdx >= 0 {
			bar.Open, _ = strconv.ParseFloat(record[openIdx], 64)
		}
		if highIdx >= 0 {
			bar.High, _ = strconv.ParseFloat(record[highIdx], 64)
		}
		if lowIdx >= 0 {
			bar.Low, _ = strconv.ParseFloat(record[lowIdx], 64)
		}

		symbol := record[symbolIdx]
		barsBySymbol[symbol] = append(barsBySymbol[symbol], bar)
	}

	for symbol := range barsBySymbol {
		bars := barsBySymbol[symbol]
		sort.Slice(bars, func(i, j int) bool {
			return bars[i].Date.Before(bars[j].Date)
		})
		barsBySymbol[symbol] = bars
	}
	return barsBySymbol, nil
}

// buildRequests creates one analysis request per symbol, in sorted order.
// The benchmark symbol itself is analyzed without benchmark statistics,
// and the benchmark return series is attached only when its length
// matches the symbol's own returns.
func buildRequests(barsBySymbol map[string][]volatility.PriceBar, benchmark string, benchmarkReturns []float64) []risk.Request {
	symbols := make([]string, 0, len(barsBySymbol))
	for symbol := range barsBySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	requests := make([]risk.Request, 0, len(symbols))
	for _, symbol := range symbols {
		req := risk.Request{Symbol: symbol, Bars: barsBySymbol[symbol]}
		if symbol != benchmark && len(benchmarkReturns) == len(req.Bars)-1 {
			req.BenchmarkReturns = benchmarkReturns
		}
		requests = append(requests, req)
	}
	return requests
}

func printSummary(reports []*risk.Report) {
	sorted := make([]*risk.Report, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool {
		vi, vj := 0.0, 0.0
		if sorted[i].Volatility != nil {
			vi = sorted[i].Volatility.Current
		}
		if sorted[j].Volatility != nil {
			vj = sorted[j].Volatility.Current
		}
		return vi > vj
	})

	fmt.Println("\n=== RISK SUMMARY (BY CURRENT VOLATILITY) ===")
	fmt.Println("Symbol | Ann.Vol | Pctile | VaR95 | MC P50 | Channel R2")
	fmt.Println("-------|---------|--------|-------|--------|-----------")

	limit := len(sorted)
	if limit > 15 {
		limit = 15
	}
	for _, r := range sorted[:limit] {
		vol, pct, var95, p50, r2 := "    -", "    -", "    -", "     -", "    -"
		if r.Volatility != nil {
			vol = fmt.Sprintf("%7.1f%%", r.Volatility.Current*100)
			pct = fmt.Sprintf("%5.0f", r.Volatility.Percentile)
		}
		if r.TailRisk != nil {
			for _, e := range r.TailRisk.Estimates {
				if e.Confidence == 0.95 {
					var95 = fmt.Sprintf("%4.1f%%", e.Historical.VaR*100)
				}
			}
		}
		if r.MonteCarlo != nil {
			p50 = fmt.Sprintf("%6.2f", r.MonteCarlo.Summary.P50)
		}
		if r.Channel != nil {
			r2 = fmt.Sprintf("%5.2f", r.Channel.Fit.RSquared)
		}
		fmt.Printf("%-6s | %s | %s | %s | %s | %s\n", r.Symbol, vol, pct, var95, p50, r2)
	}
}
