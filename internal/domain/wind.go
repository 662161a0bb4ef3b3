package domain

// Altitudes lists the forecast levels of the low-level FD bulletin in column order.
var Altitudes = []uint32{3000, 6000, 9000, 12000, 18000, 24000, 30000, 34000, 39000}

// Wind is the forecast wind at one altitude.
type Wind struct {
	Direction uint32 `json:"direction"` // degrees true, multiple of 10
	Speed     uint32 `json:"speed"`     // knots
	Altitude  uint32 `json:"altitude"`  // feet
}

// StationForecast holds the winds parsed from one station line, in
// ascending altitude order. Altitudes without usable wind data are absent.
type StationForecast struct {
	Station string `json:"station"`
	Winds   []Wind `json:"winds"`
}

// WindAt returns the wind forecast for the given altitude, if the station
// line carried one.
func (s StationForecast) WindAt(altitude uint32) (Wind, bool) {
	for _, w := range s.Winds {
		if w.Altitude == altitude {
			return w, true
		}
	}
	return Wind{}, false
}

// WindsAloftForecast is one parsed bulletin plus the time it was retrieved.
// Both times are HHMM integers in UTC (hour*100 + minute).
type WindsAloftForecast struct {
	TimeRetrieved uint32            `json:"time_retrieved"`
	ForecastTime  uint32            `json:"forecast_time"`
	Forecasts     []StationForecast `json:"forecasts"`
}
