package risk

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// SaveCSV writes one summary row per report. Missing sections leave
// their columns empty.
func SaveCSV(reports []*Report, outputPath string) error {
	if len(reports) == 0 {
		return fmt.Errorf("no reports to save")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Symbol",
		"Generated_At",
		"Bars",
		"Current_Vol",
		"Vol_Percentile",
		"MC_P5",
		"MC_P50",
		"MC_P95",
		"MC_Mean",
		"MC_Kept",
		"Beta",
		"Beta_Significance",
		"Correlation",
		"Channel_Window",
		"Channel_Slope",
		"Channel_R2",
		"VaR95_Hist",
		"VaR99_Hist",
		"ES99_Hist",
		"GARCH_Persistence",
		"Position_Weight",
		"Direction",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	sorted := make([]*Report, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Symbol < sorted[j].Symbol
	})

	for _, r := range sorted {
		if err := writer.Write(formatReportRecord(r)); err != nil {
			return fmt.Errorf("write CSV record for %s: %w", r.Symbol, err)
		}
	}
	return nil
}

// SaveJSON writes the full report set as indented JSON.
func SaveJSON(reports []*Report, outputPath string) error {
	if len(reports) == 0 {
		return fmt.Errorf("no reports to save")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reports: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write JSON file: %w", err)
	}
	return nil
}

func formatReportRecord(r *Report) []string {
	record := []string{
		r.Symbol,
		r.GeneratedAt.Format("2006-01-02T15:04:05Z"),
		strconv.Itoa(r.Bars),
	}

	if v := r.Volatility; v != nil {
		record = append(record, formatFloat(v.Current, 4), formatFloat(v.Percentile, 1))
	} else {
		record = append(record, "", "")
	}

	if mc := r.MonteCarlo; mc != nil {
		record = append(record,
			formatFloat(mc.Summary.P5, 2),
			formatFloat(mc.Summary.P50, 2),
			formatFloat(mc.Summary.P95, 2),
			formatFloat(mc.Summary.Mean, 2),
			strconv.Itoa(mc.Kept),
		)
	} else {
		record = append(record, "", "", "", "", "")
	}

	if s := r.Significance; s != nil && s.Beta != nil {
		record = append(record,
			formatFloat(s.Beta.Beta.Coefficient, 4),
			s.Beta.Beta.SignificanceLevel,
		)
	} else {
		record = append(record, "", "")
	}
	if s := r.Significance; s != nil && s.Correlation != nil {
		record = append(record, formatFloat(s.Correlation.Correlation, 4))
	} else {
		record = append(record, "")
	}

	if c := r.Channel; c != nil {
		record = append(record,
			strconv.Itoa(c.Window),
			formatFloat(c.Fit.Slope, 4),
			formatFloat(c.Fit.RSquared, 4),
		)
	} else {
		record = append(record, "", "", "")
	}

	if tr := r.TailRisk; tr != nil {
		var var95, var99, es99 string
		for _, e := range tr.Estimates {
			switch e.Confidence {
			case 0.95:
				var95 = formatFloat(e.Historical.VaR, 4)
			case 0.99:
				var99 = formatFloat(e.Historical.VaR, 4)
				es99 = formatFloat(e.Historical.ES, 4)
			}
		}
		record = append(record, var95, var99, es99)
		if tr.GARCH != nil {
			record = append(record, formatFloat(tr.GARCH.Persistence, 4))
		} else {
			record = append(record, "")
		}
	} else {
		record = append(record, "", "", "", "")
	}

	if sz := r.Sizing; sz != nil {
		record = append(record, formatFloat(sz.FinalWeight, 4), string(sz.Direction))
	} else {
		record = append(record, "", "")
	}

	return record
}

func formatFloat(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
