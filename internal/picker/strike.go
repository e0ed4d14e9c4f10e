package picker

import "math"

// Sigma multipliers for the strike offset. A trade aligned with the
// sentiment direction gets the tighter offset; the contrarian leg sits
// further out.
const (
	alignedSigma    = 1.5
	contrarianSigma = 2.5
)

// otmFallback is the static offset used when no usable volatility can be
// computed from the price history.
const otmFallback = 0.05

// SelectStrike picks a target strike from the spot price, realized daily
// volatility and the trade direction, discretized to the conventional
// strike grid for the price level.
func SelectStrike(currentPrice float64, history []float64, sentiment Sentiment, optType OptionType) float64 {
	vol := dailyVolatility(history)
	if vol == 0 || math.IsNaN(vol) {
		// Flat or missing history collapses the sigma-based offset;
		// fall back to 5% OTM.
		multiplier := 1 - otmFallback
		if optType == Call && sentiment == Bullish {
			multiplier = 1 + otmFallback
		}
		return roundToGrid(currentPrice*multiplier, currentPrice)
	}

	var target float64
	switch {
	case sentiment == Bullish && optType == Call:
		target = currentPrice * (1 + vol*alignedSigma)
	case sentiment == Bullish && optType == Put:
		target = currentPrice * (1 - vol*contrarianSigma)
	case sentiment == Bearish && optType == Call:
		target = currentPrice * (1 + vol*contrarianSigma)
	default: // bearish put
		target = currentPrice * (1 - vol*alignedSigma)
	}

	return roundToGrid(target, currentPrice)
}

// dailyVolatility is the sample standard deviation of day-over-day
// returns in the close history. Fewer than three closes cannot produce a
// meaningful deviation and yield 0.
func dailyVolatility(closes []float64) float64 {
	if len(closes) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sq float64
	for _, r := range returns {
		sq += (r - mean) * (r - mean)
	}
	return math.Sqrt(sq / float64(len(returns)-1))
}

// roundToGrid discretizes a target price to the strike interval
// conventional for the underlying's price level: 0.5 below $50, 1.0
// below $100, 5.0 at or above.
func roundToGrid(target, currentPrice float64) float64 {
	switch {
	case currentPrice < 50:
		return math.Round(target*2) / 2
	case currentPrice < 100:
		return math.Round(target)
	default:
		return math.Round(target/5) * 5
	}
}
