package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"option-pricer/internal/config"
	"option-pricer/internal/errors"
	"option-pricer/internal/models"
	"option-pricer/internal/quote"
)

// movingSource is a price table that tests shift between refreshes.
type movingSource struct {
	mu     sync.Mutex
	prices map[string]float64
}

func (s *movingSource) Spot(ctx context.Context, symbol string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	price, ok := s.prices[symbol]
	if !ok {
		return 0, errors.ErrDataNotFound
	}
	return price, nil
}

func (s *movingSource) set(symbol string, price float64) {
	s.mu.Lock()
	s.prices[symbol] = price
	s.mu.Unlock()
}

func newTestRefresher(prices map[string]float64, buffer int) (*Refresher, *movingSource) {
	source := &movingSource{prices: prices}
	quoter := quote.NewQuoter(config.Default().Pricing, zerolog.Nop())
	cfg := RefresherConfig{Interval: 10 * time.Millisecond, SubscriberBuffer: buffer}
	return NewRefresher(cfg, source, quoter, zerolog.Nop()), source
}

func TestRefreshOnce_DeliversChain(t *testing.T) {
	r, _ := newTestRefresher(map[string]float64{"AAPL": 180}, 1)
	ch := r.Subscribe("aapl", models.Expiry7D)

	r.RefreshOnce(context.Background())

	select {
	case chain := <-ch:
		require.NotNil(t, chain)
		assert.Equal(t, "AAPL", chain.Symbol)
		assert.Equal(t, 180.0, chain.SpotPrice)
		assert.Equal(t, models.Expiry7D, chain.Expiry)
		assert.False(t, chain.GeneratedAt.IsZero())
	default:
		t.Fatal("expected a chain")
	}

	m := r.GetMetrics()
	assert.Equal(t, uint64(1), m.Refreshes)
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, 1, m.Subscribers)
}

func TestRefreshOnce_SlowSubscriberKeepsLatest(t *testing.T) {
	r, source := newTestRefresher(map[string]float64{"AAPL": 180}, 1)
	ch := r.Subscribe("AAPL", models.Expiry7D)

	r.RefreshOnce(context.Background())
	source.set("AAPL", 185)
	r.RefreshOnce(context.Background())

	chain := <-ch
	assert.Equal(t, 185.0, chain.SpotPrice)
	assert.Equal(t, uint64(1), r.GetMetrics().Dropped)

	select {
	case <-ch:
		t.Fatal("stale chain was not discarded")
	default:
	}
}

func TestRefreshOnce_MissingSpotIsCountedNotFatal(t *testing.T) {
	r, _ := newTestRefresher(map[string]float64{"AAPL": 180}, 1)
	missing := r.Subscribe("MSFT", models.Expiry1D)
	ok := r.Subscribe("AAPL", models.Expiry1D)

	r.RefreshOnce(context.Background())

	assert.Len(t, ok, 1)
	assert.Len(t, missing, 0)
	assert.Equal(t, uint64(1), r.GetMetrics().Failures)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	r, _ := newTestRefresher(map[string]float64{"AAPL": 180}, 1)
	ch := r.Subscribe("AAPL", models.Expiry7D)

	r.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, r.SubscriberCount())
}

func TestStartStop(t *testing.T) {
	r, _ := newTestRefresher(map[string]float64{"BTC": 62000}, 1)
	ch := r.Subscribe("BTC", models.Expiry30D)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.Start(ctx)

	select {
	case chain := <-ch:
		assert.Equal(t, 0.45, chain.Sigma)
	case <-time.After(2 * time.Second):
		t.Fatal("no chain within timeout")
	}

	r.Stop()
	for range ch {
	}
	assert.Equal(t, 0, r.SubscriberCount())
}

func TestStartAfterStopKeepsTicking(t *testing.T) {
	r, _ := newTestRefresher(map[string]float64{"ETH": 3100}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.Start(ctx)
	r.Stop()
	r.Stop()

	ch := r.Subscribe("ETH", models.Expiry1D)
	r.Start(ctx)
	defer r.Stop()

	for i := 0; i < 2; i++ {
		select {
		case chain, open := <-ch:
			require.True(t, open, "refresh %d", i)
			assert.Equal(t, 3100.0, chain.SpotPrice)
		case <-time.After(2 * time.Second):
			t.Fatalf("refresh %d did not arrive after restart", i)
		}
	}
	assert.GreaterOrEqual(t, r.GetMetrics().Refreshes, uint64(2))
}

// Property: however many subscribers watch a key, each ends up holding the
// chain priced from the most recent spot.
func TestProperty_SubscribersSeeLatestSpot(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("every subscriber receives the newest chain", prop.ForAll(
		func(subscriberCount, refreshCount int, basePrice float64) bool {
			r, source := newTestRefresher(map[string]float64{"SPY": basePrice}, 1)

			channels := make([]<-chan *models.OptionChain, subscriberCount)
			for i := range channels {
				channels[i] = r.Subscribe("SPY", models.Expiry14D)
			}

			last := basePrice
			for i := 0; i < refreshCount; i++ {
				last = basePrice + float64(i)
				source.set("SPY", last)
				r.RefreshOnce(context.Background())
			}

			for _, ch := range channels {
				select {
				case chain := <-ch:
					if chain.SpotPrice != last {
						return false
					}
				default:
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 5),
		gen.IntRange(1, 10),
		gen.Float64Range(50, 5000),
	))

	properties.TestingRun(t)
}
