// Package domain models the NWS winds and temperatures aloft forecast (the
// "FD" bulletin, WMO header FBUS31).
//
// # Data Source
//
// The bulletin is published by the NWS four times a day (00Z, 06Z, 12Z, 18Z)
// and served as plain text by aviationweather.gov. A low-level bulletin looks
// like:
//
//	DATA BASED ON 061200Z
//	VALID 061800Z   FOR USE 1400-2100Z. TEMPS NEG ABV 24000
//
//	FT  3000    6000    9000   12000   18000   24000  30000  34000  39000
//	ABI      2213+13 2418+09 2426+03 2434-11 2542-23 245337 246146 246754
//	ALB 3016 3219+01 3128-04 3139-09 3264-22 3273-33 338346 338147 337258
//
// # Column Layout
//
// Each station row is the station code followed by nine fixed-width columns,
// one per altitude, of widths 4, 7, 7, 7, 7, 7, 6, 6, 6. A column is left
// blank (padded with spaces) when the altitude is within 1,500 ft of the
// station elevation, and the 3000 ft column never carries a temperature.
//
// Wind group encoding:
//
//	"ddff"      direction dd*10 degrees true, speed ff knots
//	"ddff+tt"   same, with temperature in degrees Celsius
//	"ddfftt"    above 24000 ft, temperatures are negative and unsigned
//
// Only direction and speed are decoded; the temperature suffix is ignored.
// Groups that do not decode are omitted from the station's winds rather than
// reported as errors.
//
// # Times
//
// Times are HHMM integers in UTC (hour*100 + minute), e.g. 600 is 06:00Z.
// The forecast time comes from the "DATA BASED ON ddhhmmZ" header; the
// retrieval time from the package clock (see [SetClock]).
//
// # Staleness
//
// A forecast is stale when the current hour is more than six hours after the
// forecast hour, or numerically before it. The second rule covers the UTC day
// rollover. See [WindsAloftForecast.NeedsRefreshAt].
package domain
