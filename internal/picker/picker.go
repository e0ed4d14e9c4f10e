// Package picker derives option trade ideas from classified headlines.
// The heuristics are pure logic over injected market-data sources; the
// package performs no I/O of its own.
package picker

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// Sentiment is the directional read of a classified headline.
type Sentiment string

const (
	Bullish Sentiment = "bullish"
	Bearish Sentiment = "bearish"
	Neutral Sentiment = "neutral"
)

// OptionType is the contract side of a trade idea.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// historyDays is the trailing window used for realized volatility.
const historyDays = 30

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// PriceSource supplies spot and trailing prices for a ticker.
// Implementations wrap an external market-data feed.
type PriceSource interface {
	CurrentPrice(ticker string) (float64, error)
	// History returns trailing daily closes, oldest first.
	History(ticker string, days int) ([]float64, error)
}

// OptionsSource supplies the available option expiries for a ticker, as
// YYYY-MM-DD strings.
type OptionsSource interface {
	Expiries(ticker string) ([]string, error)
}

// Headline is a classified news headline handed in by the caller.
type Headline struct {
	Ticker    string
	Sentiment string
	Text      string
}

// TradeIdea is one concrete option trade suggestion.
type TradeIdea struct {
	Ticker         string    `json:"ticker"`
	Sentiment      Sentiment `json:"sentiment"`
	CurrentPrice   float64   `json:"current_price"`
	TradeType      string    `json:"trade_type"`
	OptionExpiry   string    `json:"option_expiry"`
	StrikePrice    float64   `json:"strike_price"`
	Recommendation string    `json:"recommendation"`
}

// Picker turns classified headlines into trade ideas using the injected
// market-data sources.
type Picker struct {
	prices  PriceSource
	options OptionsSource
	minDays int
	maxDays int
	now     func() time.Time
}

// New builds a Picker. minDays/maxDays bound the expiry selection window;
// non-positive values take the standard 7–45 day window.
func New(prices PriceSource, options OptionsSource, minDays, maxDays int) *Picker {
	if minDays <= 0 {
		minDays = 7
	}
	if maxDays <= 0 {
		maxDays = 45
	}
	return &Picker{
		prices:  prices,
		options: options,
		minDays: minDays,
		maxDays: maxDays,
		now:     time.Now,
	}
}

// GenerateIdea builds a trade idea for one classified headline. A neutral
// sentiment is a soft skip returning (nil, nil): there is nothing to
// trade, not a failure.
func (p *Picker) GenerateIdea(h Headline) (*TradeIdea, error) {
	if !tickerPattern.MatchString(h.Ticker) {
		return nil, fmt.Errorf("invalid ticker symbol %q", h.Ticker)
	}

	sentiment := Sentiment(strings.ToLower(h.Sentiment))
	switch sentiment {
	case Bullish, Bearish:
	case Neutral:
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid sentiment %q: must be bullish, bearish or neutral", h.Sentiment)
	}

	price, err := p.prices.CurrentPrice(h.Ticker)
	if err != nil {
		return nil, fmt.Errorf("current price for %s: %w", h.Ticker, err)
	}

	history, err := p.prices.History(h.Ticker, historyDays)
	if err != nil {
		// Volatility is an enhancement; the static OTM fallback covers
		// a missing history.
		history = nil
	}

	expiries, err := p.options.Expiries(h.Ticker)
	if err != nil {
		expiries = nil
	}

	optType := Call
	if sentiment == Bearish {
		optType = Put
	}

	expiry := SelectExpiry(expiries, p.minDays, p.maxDays, p.now())
	strike := SelectStrike(price, history, sentiment, optType)

	action := "Buy"
	if optType == Put {
		action = "Sell"
	}

	return &TradeIdea{
		Ticker:         h.Ticker,
		Sentiment:      sentiment,
		CurrentPrice:   math.Round(price*100) / 100,
		TradeType:      strings.ToUpper(string(optType)) + " option",
		OptionExpiry:   expiry.Format("2006-01-02"),
		StrikePrice:    strike,
		Recommendation: fmt.Sprintf("%s %s based on news: %s", action, h.Ticker, h.Text),
	}, nil
}
