package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// validityHours is how long a bulletin is used after the hour it is based on.
const validityHours = 6

// ErrFetchFailed wraps any error returned by a Fetcher during Refresh.
var ErrFetchFailed = errors.New("fetch winds aloft report")

// Fetcher retrieves the raw text of the winds aloft bulletin.
type Fetcher interface {
	FetchReport(ctx context.Context) (string, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) (string, error)

// FetchReport calls f(ctx).
func (f FetcherFunc) FetchReport(ctx context.Context) (string, error) {
	return f(ctx)
}

// NewForecast returns an empty forecast. Both times are zero, so it reads as
// a bulletin based on 0000Z.
func NewForecast() WindsAloftForecast {
	return WindsAloftForecast{}
}

// BuildForecast parses a bulletin body retrieved at the given time.
func BuildForecast(body string, retrieved time.Time) WindsAloftForecast {
	return WindsAloftForecast{
		TimeRetrieved: HHMM(retrieved),
		ForecastTime:  ParseForecastTime(body),
		Forecasts:     ParseStations(body),
	}
}

// Refresh fetches a new bulletin and replaces the forecast with it. When the
// fetch fails the forecast is left as it was and the error, wrapping
// ErrFetchFailed, is returned.
func (f *WindsAloftForecast) Refresh(ctx context.Context, fetcher Fetcher) error {
	body, err := fetcher.FetchReport(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	*f = BuildForecast(body, clock.Now())
	return nil
}

// Station looks up a station case-insensitively. When the bulletin lists a
// station more than once the first entry wins.
func (f WindsAloftForecast) Station(station string) (StationForecast, bool) {
	code := strings.ToUpper(station)
	for _, sf := range f.Forecasts {
		if sf.Station == code {
			return sf, true
		}
	}
	return StationForecast{}, false
}

// NeedsRefresh applies NeedsRefreshAt to the current UTC time.
func (f WindsAloftForecast) NeedsRefresh() bool {
	return f.NeedsRefreshAt(HHMM(clock.Now()))
}

// NeedsRefreshAt reports whether the forecast is stale at the given HHMM.
// Only hours are compared since bulletins are issued on the hour. A current
// hour earlier than the forecast hour also counts as stale, which is how a
// forecast from the previous UTC day gets replaced after midnight.
func (f WindsAloftForecast) NeedsRefreshAt(now uint32) bool {
	hour := now / 100
	forecastHour := f.ForecastTime / 100
	return hour > forecastHour+validityHours || hour < forecastHour
}

// HHMM encodes the UTC time of day of t as hour*100 + minute.
func HHMM(t time.Time) uint32 {
	t = t.UTC()
	return uint32(t.Hour()*100 + t.Minute())
}
