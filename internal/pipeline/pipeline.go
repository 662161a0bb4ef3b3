package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/winds-aloft-service/internal/domain"
	"github.com/couchcryptid/winds-aloft-service/internal/observability"
	"github.com/google/go-cmp/cmp"
)

// Publisher delivers a refreshed forecast to a downstream sink and reports
// how many station messages it sent.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, forecast domain.WindsAloftForecast) (int, error)
}

// Refresher owns the cached forecast. It re-fetches the bulletin whenever the
// staleness policy says so, publishes each new forecast, and serves
// snapshots to concurrent readers.
type Refresher struct {
	fetcher    domain.Fetcher
	publishers []Publisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	interval   time.Duration

	refreshMu sync.Mutex // one fetch in flight at a time
	mu        sync.RWMutex
	forecast  domain.WindsAloftForecast
	loaded    atomic.Bool
}

// New creates a Refresher that checks staleness every interval.
func New(fetcher domain.Fetcher, publishers []Publisher, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Refresher {
	return &Refresher{
		fetcher:    fetcher,
		publishers: publishers,
		logger:     logger,
		metrics:    metrics,
		interval:   interval,
		forecast:   domain.NewForecast(),
	}
}

// CheckReadiness returns nil once a forecast has been loaded.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.loaded.Load() {
		return errors.New("no winds aloft forecast loaded yet")
	}
	return nil
}

// Forecast returns the cached forecast. The returned value is never mutated
// by later refreshes.
func (r *Refresher) Forecast() domain.WindsAloftForecast {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.forecast
}

// Station looks up one station in the cached forecast.
func (r *Refresher) Station(code string) (domain.StationForecast, bool) {
	return r.Forecast().Station(code)
}

// Run checks the forecast immediately and then every interval until the
// context is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started", "interval", r.interval)
	r.metrics.RefresherRunning.Set(1)
	defer r.metrics.RefresherRunning.Set(0)

	for {
		if _, err := r.RefreshIfStale(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("forecast refresh failed", "error", err)
		}

		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		case <-domain.Clock().After(r.interval):
		}
	}
}

// RefreshIfStale refreshes when nothing has been loaded yet or the cached
// forecast is stale. It reports whether a refresh succeeded.
func (r *Refresher) RefreshIfStale(ctx context.Context) (bool, error) {
	if r.loaded.Load() && !r.Forecast().NeedsRefresh() {
		return false, nil
	}
	if err := r.Refresh(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Refresh fetches a new bulletin and swaps it in. On failure the cached
// forecast is kept. The forecast is published only when the bulletin differs
// from the cached one, so refetching an unchanged upstream while it is stale
// sends nothing downstream. Publish failures are logged and counted but do
// not undo the swap.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	start := time.Now()
	prev := r.Forecast()
	wasLoaded := r.loaded.Load()
	next := prev
	if err := next.Refresh(ctx, r.fetcher); err != nil {
		r.metrics.RefreshErrors.Inc()
		return err
	}
	r.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	r.mu.Lock()
	r.forecast = next
	r.mu.Unlock()
	r.loaded.Store(true)

	r.metrics.Refreshes.Inc()
	r.metrics.StationsParsed.Set(float64(len(next.Forecasts)))
	r.metrics.ForecastTime.Set(float64(next.ForecastTime))
	r.logger.Info("forecast refreshed",
		"forecast_time", next.ForecastTime,
		"time_retrieved", next.TimeRetrieved,
		"station_count", len(next.Forecasts),
	)

	if wasLoaded && sameBulletin(prev, next) {
		r.logger.Debug("bulletin unchanged, skipping publish", "forecast_time", next.ForecastTime)
		return nil
	}
	r.publish(ctx, next)
	return nil
}

// sameBulletin ignores TimeRetrieved, which changes on every fetch.
func sameBulletin(a, b domain.WindsAloftForecast) bool {
	return a.ForecastTime == b.ForecastTime && cmp.Equal(a.Forecasts, b.Forecasts)
}

func (r *Refresher) publish(ctx context.Context, forecast domain.WindsAloftForecast) {
	for _, p := range r.publishers {
		n, err := p.Publish(ctx, forecast)
		if n > 0 {
			r.metrics.MessagesPublished.WithLabelValues(p.Name()).Add(float64(n))
		}
		if err != nil {
			r.metrics.PublishErrors.WithLabelValues(p.Name()).Inc()
			r.logger.Warn("publish forecast failed", "sink", p.Name(), "error", err)
		}
	}
}
