package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeClock(t *testing.T, at time.Time) *clockwork.FakeClock {
	t.Helper()
	fake := clockwork.NewFakeClockAt(at)
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })
	return fake
}

func staticFetcher(body string) Fetcher {
	return FetcherFunc(func(_ context.Context) (string, error) {
		return body, nil
	})
}

func TestNeedsRefreshAt(t *testing.T) {
	tests := []struct {
		name         string
		forecastTime uint32
		now          []uint32
		expected     bool
	}{
		{"six hours elapsed from 00Z", 0, []uint32{1200, 1250}, true},
		{"same hour", 1200, []uint32{1200, 1250}, false},
		{"before forecast hour", 1200, []uint32{1000, 1050}, true},
		{"midnight after 12Z", 1200, []uint32{0, 50}, true},
		{"midnight after 18Z", 1800, []uint32{0, 50}, true},
		{"within validity", 600, []uint32{700, 1159, 1200, 1259}, false},
		{"validity boundary", 600, []uint32{1300, 1359}, true},
		{"fresh 00Z at midnight", 0, []uint32{0, 30, 659}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forecast := WindsAloftForecast{ForecastTime: tt.forecastTime, TimeRetrieved: tt.forecastTime}
			for _, now := range tt.now {
				assert.Equal(t, tt.expected, forecast.NeedsRefreshAt(now), "now=%04d", now)
			}
		})
	}
}

func TestNeedsRefresh_UsesClock(t *testing.T) {
	freezeClock(t, time.Date(2024, time.March, 6, 0, 30, 0, 0, time.UTC))
	assert.False(t, NewForecast().NeedsRefresh())

	freezeClock(t, time.Date(2024, time.March, 6, 7, 0, 0, 0, time.UTC))
	assert.True(t, NewForecast().NeedsRefresh())
}

func TestRefresh_Success(t *testing.T) {
	freezeClock(t, time.Date(2024, time.March, 6, 14, 6, 0, 0, time.UTC))
	body := loadReport(t)

	forecast := NewForecast()
	require.NoError(t, forecast.Refresh(context.Background(), staticFetcher(body)))

	assert.Equal(t, uint32(1406), forecast.TimeRetrieved)
	assert.Equal(t, uint32(1200), forecast.ForecastTime)
	assert.Len(t, forecast.Forecasts, 7)
	assert.False(t, forecast.NeedsRefresh())
}

func TestRefresh_FailureKeepsPreviousForecast(t *testing.T) {
	freezeClock(t, time.Date(2024, time.March, 6, 14, 6, 0, 0, time.UTC))

	forecast := BuildForecast(loadReport(t), time.Date(2024, time.March, 6, 13, 0, 0, 0, time.UTC))
	before := forecast

	fetchErr := errors.New("connection refused")
	err := forecast.Refresh(context.Background(), FetcherFunc(func(_ context.Context) (string, error) {
		return "", fetchErr
	}))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, fetchErr)
	if diff := cmp.Diff(before, forecast); diff != "" {
		t.Fatalf("forecast changed after failed refresh (-before +after):\n%s", diff)
	}
}

func TestRefresh_ReplacesAllFields(t *testing.T) {
	fake := freezeClock(t, time.Date(2024, time.March, 6, 14, 6, 0, 0, time.UTC))

	forecast := NewForecast()
	require.NoError(t, forecast.Refresh(context.Background(), staticFetcher(loadReport(t))))

	fake.Advance(5 * time.Hour)
	next := "DATA BASED ON 061800Z\nSFO 2911 3015+11 3017+05 2922+00 2737-13 2649-25 266140 266849 267058\n"
	require.NoError(t, forecast.Refresh(context.Background(), staticFetcher(next)))

	assert.Equal(t, uint32(1906), forecast.TimeRetrieved)
	assert.Equal(t, uint32(1800), forecast.ForecastTime)
	require.Len(t, forecast.Forecasts, 1)
	assert.Equal(t, "SFO", forecast.Forecasts[0].Station)
}

func TestStation(t *testing.T) {
	forecast := BuildForecast(loadReport(t), time.Date(2024, time.March, 6, 14, 6, 0, 0, time.UTC))

	sfo, ok := forecast.Station("sfo")
	require.True(t, ok)
	assert.Equal(t, "SFO", sfo.Station)
	assert.Len(t, sfo.Winds, 9)

	_, ok = forecast.Station("Den")
	assert.True(t, ok)

	_, ok = forecast.Station("XYZ")
	assert.False(t, ok)
}

func TestStation_FirstOccurrenceWins(t *testing.T) {
	forecast := WindsAloftForecast{
		Forecasts: []StationForecast{
			{Station: "BOS", Winds: []Wind{{Direction: 300, Speed: 15, Altitude: 3000}}},
			{Station: "BOS", Winds: []Wind{{Direction: 200, Speed: 10, Altitude: 3000}}},
		},
	}

	bos, ok := forecast.Station("bos")
	require.True(t, ok)
	assert.Equal(t, uint32(300), bos.Winds[0].Direction)
}

func TestWindAt(t *testing.T) {
	forecast := BuildForecast(loadReport(t), time.Now())
	abi, ok := forecast.Station("ABI")
	require.True(t, ok)

	wind, ok := abi.WindAt(18000)
	require.True(t, ok)
	assert.Equal(t, Wind{Direction: 240, Speed: 34, Altitude: 18000}, wind)

	_, ok = abi.WindAt(3000)
	assert.False(t, ok, "ABI has no 3000 ft forecast")

	_, ok = abi.WindAt(45000)
	assert.False(t, ok)
}

func TestHHMM(t *testing.T) {
	assert.Equal(t, uint32(0), HHMM(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, uint32(600), HHMM(time.Date(2024, 1, 1, 6, 0, 59, 0, time.UTC)))
	assert.Equal(t, uint32(2359), HHMM(time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)))

	est := time.FixedZone("EST", -5*60*60)
	assert.Equal(t, uint32(1730), HHMM(time.Date(2024, 1, 1, 12, 30, 0, 0, est)))
}
