// igc/codec.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package igc

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/constraints"
)

// TimeOfDay is a UTC time of day as recorded by the logger.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Duration returns the time elapsed since midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second
}

// On returns the instant at which the time of day falls on the given date.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, 0, time.UTC)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// parseDigits parses a run of ASCII digits; unlike strconv.Atoi it
// rejects signs and surrounding space. It fails if the value doesn't fit
// in T.
func parseDigits[T constraints.Integer](s string) (T, bool) {
	if !allDigits(s) {
		return 0, false
	}
	var v T
	for i := 0; i < len(s); i++ {
		n := 10 * v
		if n/10 != v {
			return 0, false
		}
		d := T(s[i] - '0')
		if n+d < n {
			return 0, false
		}
		v = n + d
	}
	return v, true
}

func decodeDegrees(deg, min, frac string, degWidth int, maxDeg float64) (float64, error) {
	if len(deg) != degWidth || len(min) != 2 || len(frac) != 3 {
		return 0, formatErr("coordinate %s %s.%s: unexpected field width", deg, min, frac)
	}
	d, ok := parseDigits[int](deg)
	if !ok {
		return 0, formatErr("degrees %q", deg)
	}
	m, ok := parseDigits[int](min)
	if !ok || m >= 60 {
		return 0, formatErr("minutes %q", min)
	}
	f, ok := parseDigits[int](frac)
	if !ok {
		return 0, formatErr("minute fraction %q", frac)
	}

	// The fraction is in thousandths of a minute.
	v := float64(d) + (float64(m)+float64(f)/1000)/60
	if v > maxDeg {
		return 0, formatErr("%.5f degrees out of range", v)
	}
	return v, nil
}

// DecodeLatitude converts the DD MM mmm encoding used by B and C records
// to signed decimal degrees; southern latitudes are negative.
func DecodeLatitude(deg, min, frac string, hemisphere byte) (float64, error) {
	if hemisphere != 'N' && hemisphere != 'S' {
		return 0, formatErr("latitude hemisphere %q", hemisphere)
	}
	v, err := decodeDegrees(deg, min, frac, 2, 90)
	if err != nil {
		return 0, err
	}
	if hemisphere == 'S' {
		v = -v
	}
	return v, nil
}

// DecodeLongitude is the DDD MM mmm counterpart of DecodeLatitude;
// western longitudes are negative.
func DecodeLongitude(deg, min, frac string, hemisphere byte) (float64, error) {
	if hemisphere != 'E' && hemisphere != 'W' {
		return 0, formatErr("longitude hemisphere %q", hemisphere)
	}
	v, err := decodeDegrees(deg, min, frac, 3, 180)
	if err != nil {
		return 0, err
	}
	if hemisphere == 'W' {
		v = -v
	}
	return v, nil
}

// DecodeSentinelAltitude returns nil for an all-zero field, which loggers
// write when they have no altitude, and the signed value otherwise.
func DecodeSentinelAltitude(raw string) (*int, error) {
	if raw != "" && strings.Trim(raw, "0") == "" {
		return nil, nil
	}

	digits, neg := raw, false
	if strings.HasPrefix(raw, "-") {
		digits, neg = raw[1:], true
	}
	v, ok := parseDigits[int](digits)
	if !ok {
		return nil, formatErr("altitude %q", raw)
	}
	if neg {
		v = -v
	}
	return &v, nil
}

// ExpandYear maps a two digit year to four digits: years starting with 8
// or 9 are in the 1900s, everything else in the 2000s.
func ExpandYear(yy string) (int, error) {
	y, ok := parseDigits[int](yy)
	if !ok || len(yy) != 2 {
		return 0, formatErr("year %q", yy)
	}
	if yy[0] == '8' || yy[0] == '9' {
		return 1900 + y, nil
	}
	return 2000 + y, nil
}

// DecodeTimeOfDay decodes HHMMSS.
func DecodeTimeOfDay(hhmmss string) (TimeOfDay, error) {
	if len(hhmmss) != 6 {
		return TimeOfDay{}, formatErr("time %q", hhmmss)
	}
	h, okh := parseDigits[int](hhmmss[0:2])
	m, okm := parseDigits[int](hhmmss[2:4])
	s, oks := parseDigits[int](hhmmss[4:6])
	if !okh || !okm || !oks || h > 23 || m > 59 || s > 59 {
		return TimeOfDay{}, formatErr("time %q", hhmmss)
	}
	return TimeOfDay{Hour: h, Minute: m, Second: s}, nil
}

// DecodeDate decodes DDMMYY to midnight UTC of that day.
func DecodeDate(ddmmyy string) (time.Time, error) {
	if len(ddmmyy) != 6 {
		return time.Time{}, formatErr("date %q", ddmmyy)
	}
	d, okd := parseDigits[int](ddmmyy[0:2])
	m, okm := parseDigits[int](ddmmyy[2:4])
	if !okd || !okm {
		return time.Time{}, formatErr("date %q", ddmmyy)
	}
	y, err := ExpandYear(ddmmyy[4:6])
	if err != nil {
		return time.Time{}, err
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out of range values; reject them instead.
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, formatErr("date %q", ddmmyy)
	}
	return t, nil
}
