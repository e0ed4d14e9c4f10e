package store

import "fmt"

// ExportFilter records which filters produced an export.
type ExportFilter struct {
	Ticker  string `json:"ticker,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// ExportData is the aggregate document written by Export.
type ExportData struct {
	HistoricalEvents []Document   `json:"historical_events"`
	SimilarEvents    []Document   `json:"similar_events"`
	ExportDate       string       `json:"export_date"`
	Filter           ExportFilter `json:"filter"`
}

// Export collects the full documents behind matching index summaries and
// writes them to one aggregate JSON file. Documents load in batches to
// bound memory; unreadable files are skipped.
func (s *Store) Export(outputPath, ticker, pattern string, batchSize int) (*ExportData, error) {
	if batchSize <= 0 {
		batchSize = 10
	}

	data := &ExportData{
		HistoricalEvents: []Document{},
		SimilarEvents:    []Document{},
		ExportDate:       s.timestamp(),
		Filter:           ExportFilter{Ticker: ticker, Pattern: pattern},
	}

	var historical []EventSummary
	if ticker != "" {
		historical = s.FindHistorical(ticker, "", nil)
	} else {
		historical = s.AllHistorical()
	}
	for start := 0; start < len(historical); start += batchSize {
		for _, sum := range historical[start:min(start+batchSize, len(historical))] {
			doc, err := s.Load(sum.FilePath)
			if err != nil {
				s.log.Warn().Err(err).Str("path", sum.FilePath).Msg("export: skipping document")
				continue
			}
			data.HistoricalEvents = append(data.HistoricalEvents, doc)
		}
	}

	var similar []PatternSummary
	if pattern != "" {
		similar = s.FindSimilar(pattern, "")
	} else {
		similar = s.AllSimilar()
	}
	for start := 0; start < len(similar); start += batchSize {
		for _, sum := range similar[start:min(start+batchSize, len(similar))] {
			doc, err := s.Load(sum.FilePath)
			if err != nil {
				s.log.Warn().Err(err).Str("path", sum.FilePath).Msg("export: skipping document")
				continue
			}
			data.SimilarEvents = append(data.SimilarEvents, doc)
		}
	}

	if err := writeJSONAtomic(outputPath, data); err != nil {
		return nil, fmt.Errorf("write export: %w", err)
	}

	s.log.Info().
		Int("historical", len(data.HistoricalEvents)).
		Int("similar", len(data.SimilarEvents)).
		Str("output", outputPath).
		Msg("export complete")
	return data, nil
}
