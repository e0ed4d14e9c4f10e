package trades

import (
	"sort"
	"strconv"
	"strings"
)

// correlationMinSamples is the minimum number of numeric samples an
// indicator needs before a median-split correlation is reported.
const correlationMinSamples = 5

// IndicatorStats holds basic statistics for one numeric snapshot field.
type IndicatorStats struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

// SplitStats counts outcomes on one side of an indicator's median.
type SplitStats struct {
	Count        int     `json:"count"`
	SuccessCount int     `json:"success_count"`
	SuccessRate  float64 `json:"success_rate"`
}

// Correlation reports how trade success differs above and below an
// indicator's median value.
type Correlation struct {
	Median       float64    `json:"median"`
	AboveMedian  SplitStats `json:"above_median"`
	BelowMedian  SplitStats `json:"below_median"`
	Strength     float64    `json:"correlation_strength"`
	FavorsHigher bool       `json:"favors_higher"`
}

// SideStats counts outcomes for one option side (CALL or PUT).
type SideStats struct {
	Count        int     `json:"count"`
	SuccessCount int     `json:"success_count"`
	SuccessRate  float64 `json:"success_rate"`
}

// SnapshotAnalysis is the result of correlating one snapshot category
// against trade outcomes.
type SnapshotAnalysis struct {
	TotalTrades        int                       `json:"total_trades"`
	SuccessfulTrades   int                       `json:"successful_trades"`
	OverallSuccessRate float64                   `json:"overall_success_rate"`
	TradesWithData     int                       `json:"trades_with_data"`
	SuccessfulWithData int                       `json:"successful_with_data"`
	DataSuccessRate    float64                   `json:"data_success_rate"`
	SidePerformance    map[string]SideStats      `json:"option_type_performance"`
	Indicators         map[string]IndicatorStats `json:"indicators"`
	Correlations       map[string]Correlation    `json:"correlation_analysis"`
}

// TagStats counts outcomes for one boolean event tag.
type TagStats struct {
	Count        int     `json:"count"`
	SuccessCount int     `json:"success_count"`
	SuccessRate  float64 `json:"success_rate"`
}

// TagAnalysis is the result of correlating event tags against outcomes.
type TagAnalysis struct {
	TotalTrades      int                 `json:"total_trades"`
	TradesWithTags   int                 `json:"trades_with_tags"`
	SuccessfulTrades int                 `json:"successful_trades"`
	Tags             map[string]TagStats `json:"tags"`
}

// AnalyzeMacro correlates macro-economic snapshot indicators with trade
// outcomes.
func AnalyzeMacro(trades []Trade, successKey string, threshold float64) SnapshotAnalysis {
	return analyzeSnapshots(trades, "macro_snapshot", successKey, threshold)
}

// AnalyzeOptions correlates options-market snapshot metrics (IV, skew,
// put/call ratio) with trade outcomes.
func AnalyzeOptions(trades []Trade, successKey string, threshold float64) SnapshotAnalysis {
	return analyzeSnapshots(trades, "options_snapshot", successKey, threshold)
}

// AnalyzeTechnicals correlates technical-indicator snapshots (RSI, MACD,
// moving-average signals) with trade outcomes.
func AnalyzeTechnicals(trades []Trade, successKey string, threshold float64) SnapshotAnalysis {
	return analyzeSnapshots(trades, "technical_indicators", successKey, threshold)
}

// analyzeSnapshots is the shared engine: per-indicator basic statistics
// over numeric snapshot fields, CALL/PUT side performance, and a
// median-split success-rate correlation per indicator.
func analyzeSnapshots(trades []Trade, snapshotKey, successKey string, threshold float64) SnapshotAnalysis {
	out := SnapshotAnalysis{
		TotalTrades: len(trades),
		SidePerformance: map[string]SideStats{
			"CALL": {},
			"PUT":  {},
		},
		Indicators:   map[string]IndicatorStats{},
		Correlations: map[string]Correlation{},
	}

	values := map[string][]float64{}
	outcomes := map[string][]bool{}

	for _, trade := range trades {
		success := isSuccessful(trade, successKey, threshold)
		if success {
			out.SuccessfulTrades++
		}

		if side, ok := trade["option_type"].(string); ok {
			side = strings.ToUpper(side)
			if stats, tracked := out.SidePerformance[side]; tracked {
				stats.Count++
				if success {
					stats.SuccessCount++
				}
				out.SidePerformance[side] = stats
			}
		}

		snapshot, _ := trade[snapshotKey].(map[string]any)
		if len(snapshot) == 0 {
			continue
		}
		out.TradesWithData++
		if success {
			out.SuccessfulWithData++
		}

		for key, raw := range snapshot {
			value, ok := asFloat(raw)
			if !ok {
				continue
			}
			stats := out.Indicators[key]
			if stats.Count == 0 {
				stats.Min = value
				stats.Max = value
			}
			stats.Count++
			stats.Sum += value
			if value < stats.Min {
				stats.Min = value
			}
			if value > stats.Max {
				stats.Max = value
			}
			out.Indicators[key] = stats

			values[key] = append(values[key], value)
			outcomes[key] = append(outcomes[key], success)
		}
	}

	for key, stats := range out.Indicators {
		if stats.Count > 0 {
			stats.Avg = stats.Sum / float64(stats.Count)
			out.Indicators[key] = stats
		}
	}

	for side, stats := range out.SidePerformance {
		stats.SuccessRate = rate(stats.SuccessCount, stats.Count)
		out.SidePerformance[side] = stats
	}

	for key, vals := range values {
		if len(vals) < correlationMinSamples {
			continue
		}
		out.Correlations[key] = medianSplit(vals, outcomes[key])
	}

	out.OverallSuccessRate = rate(out.SuccessfulTrades, out.TotalTrades)
	out.DataSuccessRate = rate(out.SuccessfulWithData, out.TradesWithData)
	return out
}

// AnalyzeEventTags reports the success rate of trades carrying each
// boolean event tag (is_fed_week, is_cpi_week, ...).
func AnalyzeEventTags(trades []Trade, successKey string, threshold float64) TagAnalysis {
	out := TagAnalysis{
		TotalTrades: len(trades),
		Tags:        map[string]TagStats{},
	}

	for _, trade := range trades {
		success := isSuccessful(trade, successKey, threshold)
		if success {
			out.SuccessfulTrades++
		}

		tags, _ := trade["event_tags"].(map[string]any)
		if len(tags) == 0 {
			continue
		}
		out.TradesWithTags++

		for tag, raw := range tags {
			set, ok := raw.(bool)
			if !ok || !set {
				continue
			}
			stats := out.Tags[tag]
			stats.Count++
			if success {
				stats.SuccessCount++
			}
			out.Tags[tag] = stats
		}
	}

	for tag, stats := range out.Tags {
		stats.SuccessRate = rate(stats.SuccessCount, stats.Count)
		out.Tags[tag] = stats
	}
	return out
}

// medianSplit compares success rates above and below the upper median of
// the indicator's values.
func medianSplit(vals []float64, outcomes []bool) Correlation {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	median := sorted[len(sorted)/2]

	var above, below SplitStats
	for i, v := range vals {
		if v >= median {
			above.Count++
			if outcomes[i] {
				above.SuccessCount++
			}
		} else {
			below.Count++
			if outcomes[i] {
				below.SuccessCount++
			}
		}
	}
	above.SuccessRate = rate(above.SuccessCount, above.Count)
	below.SuccessRate = rate(below.SuccessCount, below.Count)

	strength := above.SuccessRate - below.SuccessRate
	if strength < 0 {
		strength = -strength
	}

	return Correlation{
		Median:       median,
		AboveMedian:  above,
		BelowMedian:  below,
		Strength:     strength,
		FavorsHigher: above.SuccessRate > below.SuccessRate,
	}
}

// isSuccessful resolves a trade's outcome from the success key: a bool
// is taken directly, a number succeeds above the threshold, and a string
// succeeds on the usual truthy spellings.
func isSuccessful(trade Trade, successKey string, threshold float64) bool {
	switch v := trade[successKey].(type) {
	case bool:
		return v
	case float64:
		return v > threshold
	case int:
		return float64(v) > threshold
	case string:
		switch strings.ToLower(v) {
		case "true", "yes", "success", "1":
			return true
		}
	}
	return false
}

// rate is a division-safe success ratio.
func rate(successes, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(successes) / float64(total)
}

// asFloat extracts a numeric value from a snapshot field, accepting JSON
// numbers and numeric strings.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
