package pricefeed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Feed produces a price for an asset on a calendar date. The ingestion jobs
// depend on this interface only; swapping in a real market-data client is a
// wiring change.
type Feed interface {
	Quote(ctx context.Context, assetID int64, date time.Time) (decimal.Decimal, error)
}

// RandomFeed is the placeholder generator standing in for a market-data
// provider. Prices are uniform in [0, 100) with two decimal places. With a
// nonzero seed the sequence is reproducible, which the backfill tests rely
// on.
type RandomFeed struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomFeed creates a feed seeded with seed, or with the current time
// when seed is zero.
func NewRandomFeed(seed int64) *RandomFeed {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomFeed{rng: rand.New(rand.NewSource(seed))}
}

// Quote returns a pseudo-random price. The asset id and date do not enter
// the generator; the placeholder only has to produce plausible values.
func (f *RandomFeed) Quote(_ context.Context, _ int64, _ time.Time) (decimal.Decimal, error) {
	f.mu.Lock()
	cents := f.rng.Int63n(10000)
	f.mu.Unlock()
	return decimal.New(cents, -2), nil
}

// FuncFeed adapts a plain function to the Feed interface. Handy in tests
// for deterministic or failing feeds.
type FuncFeed func(ctx context.Context, assetID int64, date time.Time) (decimal.Decimal, error)

func (f FuncFeed) Quote(ctx context.Context, assetID int64, date time.Time) (decimal.Decimal, error) {
	return f(ctx, assetID, date)
}
