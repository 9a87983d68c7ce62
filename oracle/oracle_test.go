package oracle

import (
	"math"
	"math/rand"
	"testing"

	"github.com/nexuslabs/nexus-agents/core"
)

func TestInitialPriceIsNearBase(t *testing.T) {
	f := NewFeed(rand.New(rand.NewSource(1)))
	price := f.Data().HBARPrice
	if price < 0.075 || price > 0.085 {
		t.Fatalf("initial price %v outside 0.08 +/- 0.005", price)
	}
	if f.Data().MarketSentiment != core.SentimentNeutral {
		t.Fatalf("initial sentiment = %q, want neutral", f.Data().MarketSentiment)
	}
}

func TestRefreshWalksInSmallSteps(t *testing.T) {
	f := NewFeed(rand.New(rand.NewSource(1)))
	prev := f.Data().HBARPrice
	for i := 0; i < 1000; i++ {
		data := f.Refresh()
		if delta := math.Abs(data.HBARPrice - prev); delta > 0.0025+1e-9 && prev > 0.05 {
			t.Fatalf("step %d moved by %v, want at most 0.0025", i, delta)
		}
		if data.HBARPrice < 0.05 {
			t.Fatalf("price %v fell below the floor", data.HBARPrice)
		}
		switch data.MarketSentiment {
		case core.SentimentBullish, core.SentimentBearish, core.SentimentNeutral:
		default:
			t.Fatalf("unknown sentiment %q", data.MarketSentiment)
		}
		prev = data.HBARPrice
	}
}

func TestValueResolvesKnownKeys(t *testing.T) {
	f := NewFeed(rand.New(rand.NewSource(1)))

	price, ok := f.Value(core.OracleKeyHBARPrice)
	if !ok {
		t.Fatal("hbarPrice not resolvable")
	}
	if _, isFloat := price.(float64); !isFloat {
		t.Fatalf("price value is %T, want float64", price)
	}

	sentiment, ok := f.Value(core.OracleKeyMarketSentiment)
	if !ok {
		t.Fatal("marketSentiment not resolvable")
	}
	if _, isString := sentiment.(string); !isString {
		t.Fatalf("sentiment value is %T, want string", sentiment)
	}

	if _, ok := f.Value("weather"); ok {
		t.Fatal("unknown key resolved")
	}
}

func TestRestoreReplacesState(t *testing.T) {
	f := NewFeed(rand.New(rand.NewSource(1)))
	f.Restore(core.OracleData{HBARPrice: 0.0912, MarketSentiment: core.SentimentBullish})
	data := f.Data()
	if data.HBARPrice != 0.0912 || data.MarketSentiment != core.SentimentBullish {
		t.Fatalf("restore did not take: %+v", data)
	}
}
