// Package stream re-prices option chains on a fixed cadence and fans the
// latest chain out to subscribers.
package stream

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"option-pricer/internal/logging"
	"option-pricer/internal/market"
	"option-pricer/internal/models"
)

// ChainQuoter builds a chain from a spot observation.
type ChainQuoter interface {
	Chain(symbol string, spot float64, expiry models.Expiry) (*models.OptionChain, error)
}

// RefresherConfig holds configuration for the Refresher.
type RefresherConfig struct {
	// Interval is the time between refreshes.
	Interval time.Duration
	// SubscriberBuffer is the size of each subscriber's channel buffer.
	SubscriberBuffer int
}

// DefaultRefresherConfig returns the default refresher configuration.
func DefaultRefresherConfig() RefresherConfig {
	return RefresherConfig{
		Interval:         2 * time.Second,
		SubscriberBuffer: 1,
	}
}

// Key identifies one watched chain.
type Key struct {
	Symbol string
	Expiry models.Expiry
}

// Subscriber represents a channel subscriber with metadata.
type Subscriber struct {
	Key          Key
	Channel      chan *models.OptionChain
	DroppedCount int
	CreatedAt    time.Time
}

// Refresher polls a spot source and republishes chains for every watched key.
// Subscribers always see the newest chain: when a buffer is full the stale
// chain is discarded.
type Refresher struct {
	config  RefresherConfig
	source  market.SpotSource
	quoter  ChainQuoter
	logger  zerolog.Logger
	now     func() time.Time
	mu      sync.RWMutex
	subs    map[Key][]*Subscriber
	done    chan struct{}
	started bool

	// Metrics
	refreshes uint64
	failures  uint64
	published uint64
	dropped   uint64
	metricsMu sync.RWMutex
}

// NewRefresher creates a new chain refresher.
func NewRefresher(config RefresherConfig, source market.SpotSource, quoter ChainQuoter, logger zerolog.Logger) *Refresher {
	if config.Interval <= 0 {
		config.Interval = DefaultRefresherConfig().Interval
	}
	if config.SubscriberBuffer < 1 {
		config.SubscriberBuffer = 1
	}
	return &Refresher{
		config: config,
		source: source,
		quoter: quoter,
		logger: logging.WithOperation(logger, "refresh"),
		now:    time.Now,
		subs:   make(map[Key][]*Subscriber),
	}
}

// Start begins the refresh loop. The first refresh runs immediately.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	// Stop closed the previous channel; a restart needs a fresh one.
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	go r.loop(ctx, done)
}

func (r *Refresher) loop(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	r.RefreshOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			r.RefreshOnce(ctx)
		}
	}
}

// Stop halts the loop and closes all subscriber channels.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return
	}

	close(r.done)
	r.started = false

	for key, subs := range r.subs {
		for _, sub := range subs {
			close(sub.Channel)
		}
		delete(r.subs, key)
	}
}

// Subscribe registers interest in a chain and returns a channel of updates.
func (r *Refresher) Subscribe(symbol string, expiry models.Expiry) <-chan *models.OptionChain {
	key := Key{Symbol: models.NormalizeSymbol(symbol), Expiry: expiry}
	sub := &Subscriber{
		Key:       key,
		Channel:   make(chan *models.OptionChain, r.config.SubscriberBuffer),
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	r.subs[key] = append(r.subs[key], sub)
	r.mu.Unlock()

	return sub.Channel
}

// Unsubscribe removes a subscriber channel.
func (r *Refresher) Unsubscribe(ch <-chan *models.OptionChain) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, subs := range r.subs {
		for i, sub := range subs {
			if sub.Channel != ch {
				continue
			}
			close(sub.Channel)
			r.subs[key] = append(subs[:i], subs[i+1:]...)
			if len(r.subs[key]) == 0 {
				delete(r.subs, key)
			}
			return
		}
	}
}

// RefreshOnce re-prices every watched chain against a fresh spot.
// Failures are logged and the key is retried on the next tick.
func (r *Refresher) RefreshOnce(ctx context.Context) {
	r.mu.RLock()
	keys := make([]Key, 0, len(r.subs))
	for key := range r.subs {
		keys = append(keys, key)
	}
	r.mu.RUnlock()

	for _, key := range keys {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		chain, err := r.refresh(ctx, key)

		r.metricsMu.Lock()
		r.refreshes++
		if err != nil {
			r.failures++
		}
		r.metricsMu.Unlock()

		if err != nil {
			symLogger := logging.WithSymbol(r.logger, key.Symbol)
			symLogger.Warn().Err(err).
				Str("expiry", key.Expiry.String()).
				Msg("Chain refresh failed")
			continue
		}
		logging.LogChainRefresh(r.logger, chain, time.Since(start))
		r.broadcast(key, chain)
	}
}

func (r *Refresher) refresh(ctx context.Context, key Key) (*models.OptionChain, error) {
	spot, err := r.source.Spot(ctx, key.Symbol)
	if err != nil {
		return nil, err
	}
	chain, err := r.quoter.Chain(key.Symbol, spot, key.Expiry)
	if err != nil {
		return nil, err
	}
	if chain.GeneratedAt.IsZero() {
		chain.GeneratedAt = r.now()
	}
	return chain, nil
}

// broadcast delivers a chain without blocking. A full buffer has its stale
// chain replaced.
func (r *Refresher) broadcast(key Key, chain *models.OptionChain) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.subs[key] {
		for {
			select {
			case sub.Channel <- chain:
				r.metricsMu.Lock()
				r.published++
				r.metricsMu.Unlock()
			default:
				select {
				case <-sub.Channel:
					sub.DroppedCount++
					r.metricsMu.Lock()
					r.dropped++
					r.metricsMu.Unlock()
				default:
				}
				continue
			}
			break
		}
	}
}

// SubscriberCount returns the number of subscribers across all keys.
func (r *Refresher) SubscriberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, subs := range r.subs {
		count += len(subs)
	}
	return count
}

// GetMetrics returns refresher metrics.
func (r *Refresher) GetMetrics() RefresherMetrics {
	// broadcast takes mu before metricsMu, so count subscribers first.
	subscribers := r.SubscriberCount()

	r.metricsMu.RLock()
	defer r.metricsMu.RUnlock()

	return RefresherMetrics{
		Refreshes:   r.refreshes,
		Failures:    r.failures,
		Published:   r.published,
		Dropped:     r.dropped,
		Subscribers: subscribers,
	}
}

// RefresherMetrics contains refresher counters.
type RefresherMetrics struct {
	Refreshes   uint64
	Failures    uint64
	Published   uint64
	Dropped     uint64
	Subscribers int
}
