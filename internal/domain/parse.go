package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// stationLineRe matches one station row of the FD bulletin: the station
	// code followed by nine fixed-width columns (3000 through 39000 ft). The
	// separators are single characters because a blank column is padded with
	// spaces, e.g. "ABI      2213+13 ..." has no 3000 ft forecast.
	stationLineRe = regexp.MustCompile(`(?m)^[ \t]*(?P<station>\w+)` +
		`\s(?P<ft3000>.{4})` +
		`\s(?P<ft6000>.{7})` +
		`\s(?P<ft9000>.{7})` +
		`\s(?P<ft12000>.{7})` +
		`\s(?P<ft18000>.{7})` +
		`\s(?P<ft24000>.{7})` +
		`\s(?P<ft30000>.{6})` +
		`\s(?P<ft34000>.{6})` +
		`\s(?P<ft39000>.{6})` +
		`(?:\s|$)`)

	// forecastTimeRe matches the issuance header, e.g. "DATA BASED ON 061200Z"
	// (day 06, 12:00Z). The second group is the HHMM.
	forecastTimeRe = regexp.MustCompile(`DATA BASED ON (\d{2})(\d{4})Z`)

	windTokenRe = regexp.MustCompile(`\w+`)
)

// altitudeColumn binds a capture group of stationLineRe to its altitude.
type altitudeColumn struct {
	group    int
	altitude uint32
}

var (
	stationGroup    = stationLineRe.SubexpIndex("station")
	altitudeColumns = buildAltitudeColumns()
)

func buildAltitudeColumns() []altitudeColumn {
	cols := make([]altitudeColumn, 0, len(Altitudes))
	for _, alt := range Altitudes {
		name := "ft" + strconv.FormatUint(uint64(alt), 10)
		cols = append(cols, altitudeColumn{group: stationLineRe.SubexpIndex(name), altitude: alt})
	}
	return cols
}

// ParseWind decodes a "ddff" wind group, optionally followed by a temperature
// ("ddff+tt", "ddff-tt" or "ddfftt"), into a Wind at the given altitude. The
// first two characters are the direction in tens of degrees and the next two
// the speed in knots; anything after that is ignored. It reports false when
// the token holds no word characters or either field is not a number.
func ParseWind(token string, altitude uint32) (Wind, bool) {
	if !windTokenRe.MatchString(token) {
		return Wind{}, false
	}

	runes := []rune(token)
	if len(runes) < 4 {
		return Wind{}, false
	}

	direction, err := parseField(string(runes[0:2]))
	if err != nil {
		return Wind{}, false
	}
	speed, err := parseField(string(runes[2:4]))
	if err != nil {
		return Wind{}, false
	}

	return Wind{
		Direction: uint32(direction) * 10,
		Speed:     uint32(speed),
		Altitude:  altitude,
	}, true
}

// parseField reads one two-character numeric field. A single leading '+'
// is accepted, so "+7" is 7.
func parseField(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 32)
}

// ParseStations extracts one StationForecast per station line of the
// bulletin, in the order the lines appear. Columns that are blank or do not
// decode are left out of that station's winds. Stations are not merged, so
// a code listed twice yields two entries.
func ParseStations(body string) []StationForecast {
	var forecasts []StationForecast

	for _, m := range stationLineRe.FindAllStringSubmatchIndex(body, -1) {
		station, ok := submatch(body, m, stationGroup)
		if !ok || station == "" {
			continue
		}

		winds := make([]Wind, 0, len(altitudeColumns))
		for _, col := range altitudeColumns {
			token, ok := submatch(body, m, col.group)
			if !ok {
				continue
			}
			if w, ok := ParseWind(token, col.altitude); ok {
				winds = append(winds, w)
			}
		}

		forecasts = append(forecasts, StationForecast{Station: station, Winds: winds})
	}

	return forecasts
}

// ParseForecastTime returns the HHMM the bulletin is based on, taken from
// the last "DATA BASED ON ddhhmmZ" header in the body, or 0 if there is none.
func ParseForecastTime(body string) uint32 {
	var hhmm uint32
	for _, m := range forecastTimeRe.FindAllStringSubmatch(body, -1) {
		v, err := strconv.ParseUint(m[2], 10, 32)
		if err != nil {
			continue
		}
		hhmm = uint32(v)
	}
	return hhmm
}

// submatch returns capture group i of a FindAllStringSubmatchIndex match.
func submatch(s string, loc []int, i int) (string, bool) {
	if i < 0 || 2*i+1 >= len(loc) {
		return "", false
	}
	start, end := loc[2*i], loc[2*i+1]
	if start < 0 {
		return "", false
	}
	return s[start:end], true
}
