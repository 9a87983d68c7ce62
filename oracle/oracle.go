// Package oracle simulates the external price/sentiment data source. The
// feed advances on its own cadence with a bounded random walk; the execution
// engine only ever reads it.
package oracle

import (
	"math/rand"

	"github.com/nexuslabs/nexus-agents/core"
)

const (
	basePrice = 0.08
	minPrice  = 0.05
	walkStep  = 0.005
)

var sentiments = []core.Sentiment{
	core.SentimentBullish,
	core.SentimentBearish,
	core.SentimentNeutral,
}

// Feed is the drifting price/sentiment generator.
type Feed struct {
	data core.OracleData
	rng  *rand.Rand
}

func NewFeed(rng *rand.Rand) *Feed {
	return &Feed{
		rng: rng,
		data: core.OracleData{
			HBARPrice:       basePrice + (rng.Float64()-0.5)*0.01,
			MarketSentiment: core.SentimentNeutral,
		},
	}
}

// Refresh advances the random walk one step. The price is floored so it
// never drifts to zero or below.
func (f *Feed) Refresh() core.OracleData {
	price := f.data.HBARPrice + (f.rng.Float64()-0.5)*walkStep
	if price < minPrice {
		price = minPrice
	}
	f.data = core.OracleData{
		HBARPrice:       price,
		MarketSentiment: sentiments[f.rng.Intn(len(sentiments))],
	}
	return f.data
}

// Data returns the current feed snapshot.
func (f *Feed) Data() core.OracleData {
	return f.data
}

// Restore replaces the feed state at the persistence boundary.
func (f *Feed) Restore(data core.OracleData) {
	f.data = data
}

// Value resolves a named oracle key to its current value. Prices come back
// as float64, sentiment as string.
func (f *Feed) Value(key string) (interface{}, bool) {
	switch key {
	case core.OracleKeyHBARPrice:
		return f.data.HBARPrice, true
	case core.OracleKeyMarketSentiment:
		return string(f.data.MarketSentiment), true
	default:
		return nil, false
	}
}
