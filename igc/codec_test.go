// igc/codec_test.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package igc

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

func TestDecodeLatitude(t *testing.T) {
	for dd := 0; dd < 90; dd += 7 {
		for mm := 0; mm < 60; mm += 11 {
			for _, mmm := range []int{0, 1, 500, 577, 999} {
				for _, ns := range []byte{'N', 'S'} {
					d, m, f := fmt.Sprintf("%02d", dd), fmt.Sprintf("%02d", mm), fmt.Sprintf("%03d", mmm)
					got, err := DecodeLatitude(d, m, f, ns)
					if err != nil {
						t.Fatalf("%s%s%s%c: unexpected error: %v", d, m, f, ns, err)
					}

					want := float64(dd) + (float64(mm)+float64(mmm)/1000)/60
					if ns == 'S' {
						want = -want
					}
					if math.Abs(got-want) > 1e-5 {
						t.Errorf("%s%s%s%c: got %.7f, expected %.7f", d, m, f, ns, got, want)
					}
					if (ns == 'S' && got > 0) || (ns == 'N' && got < 0) {
						t.Errorf("%s%s%s%c: got %.7f with wrong sign", d, m, f, ns, got)
					}
				}
			}
		}
	}
}

func TestDecodeLongitude(t *testing.T) {
	for _, tc := range []struct {
		deg, min, frac string
		ew             byte
		want           float64
	}{
		{"018", "06", "797", 'E', 18.1132833},
		{"122", "30", "000", 'W', -122.5},
		{"000", "00", "000", 'E', 0},
		{"180", "00", "000", 'W', -180},
	} {
		got, err := DecodeLongitude(tc.deg, tc.min, tc.frac, tc.ew)
		if err != nil {
			t.Errorf("%s%s%s%c: unexpected error: %v", tc.deg, tc.min, tc.frac, tc.ew, err)
		} else if math.Abs(got-tc.want) > 1e-5 {
			t.Errorf("%s%s%s%c: got %.7f, expected %.7f", tc.deg, tc.min, tc.frac, tc.ew, got, tc.want)
		}
	}
}

func TestDecodeCoordinateErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		f    func() (float64, error)
	}{
		{"bad latitude hemisphere", func() (float64, error) { return DecodeLatitude("48", "18", "577", 'E') }},
		{"bad longitude hemisphere", func() (float64, error) { return DecodeLongitude("018", "06", "797", 'N') }},
		{"lowercase hemisphere", func() (float64, error) { return DecodeLatitude("48", "18", "577", 'n') }},
		{"minutes out of range", func() (float64, error) { return DecodeLatitude("48", "60", "000", 'N') }},
		{"latitude out of range", func() (float64, error) { return DecodeLatitude("91", "00", "000", 'N') }},
		{"longitude out of range", func() (float64, error) { return DecodeLongitude("181", "00", "000", 'E') }},
		{"wrong width", func() (float64, error) { return DecodeLatitude("048", "18", "577", 'N') }},
		{"non-digit", func() (float64, error) { return DecodeLatitude("4x", "18", "577", 'N') }},
	} {
		if _, err := tc.f(); !errors.Is(err, ErrFormat) {
			t.Errorf("%s: got error %v, want ErrFormat", tc.name, err)
		}
	}
}

func TestDecodeSentinelAltitude(t *testing.T) {
	for _, tc := range []struct {
		raw     string
		want    *int
		wantErr bool
	}{
		{raw: "0000", want: nil},
		{raw: "00000", want: nil},
		{raw: "0759", want: ptr(759)},
		{raw: "00855", want: ptr(855)},
		{raw: "-0012", want: ptr(-12)},
		{raw: " 000", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "12a4", wantErr: true},
	} {
		got, err := DecodeSentinelAltitude(tc.raw)
		if (err != nil) != tc.wantErr {
			t.Errorf("%q: error = %v, wantErr %v", tc.raw, err, tc.wantErr)
			continue
		}
		if tc.wantErr {
			if !errors.Is(err, ErrFormat) {
				t.Errorf("%q: got error %v, want ErrFormat", tc.raw, err)
			}
			continue
		}
		if (got == nil) != (tc.want == nil) || (got != nil && *got != *tc.want) {
			t.Errorf("%q: got %v, want %v", tc.raw, deref(got), deref(tc.want))
		}
	}
}

func TestExpandYear(t *testing.T) {
	for yy, want := range map[string]int{
		"99": 1999,
		"03": 2003,
		"79": 2079,
		"80": 1980,
		"00": 2000,
		"22": 2022,
	} {
		if got, err := ExpandYear(yy); err != nil {
			t.Errorf("%s: unexpected error %v", yy, err)
		} else if got != want {
			t.Errorf("%s: got %d, want %d", yy, got, want)
		}
	}

	for _, bad := range []string{"", "9", "999", "x9"} {
		if _, err := ExpandYear(bad); !errors.Is(err, ErrFormat) {
			t.Errorf("%q: got error %v, want ErrFormat", bad, err)
		}
	}
}

func TestDecodeTimeOfDay(t *testing.T) {
	got, err := DecodeTimeOfDay("111734")
	if err != nil {
		t.Fatal(err)
	}
	if want := (TimeOfDay{Hour: 11, Minute: 17, Second: 34}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got.String() != "11:17:34" {
		t.Errorf("String() = %q", got.String())
	}
	if d := got.Duration(); d != 11*time.Hour+17*time.Minute+34*time.Second {
		t.Errorf("Duration() = %v", d)
	}

	for _, bad := range []string{"240000", "116000", "111760", "11173", "11:173"} {
		if _, err := DecodeTimeOfDay(bad); !errors.Is(err, ErrFormat) {
			t.Errorf("%q: got error %v, want ErrFormat", bad, err)
		}
	}
}

func TestDecodeDate(t *testing.T) {
	got, err := DecodeDate("030922")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2022, time.September, 3, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got, err := DecodeDate("311299"); err != nil || got.Year() != 1999 {
		t.Errorf("311299: got %v, %v", got, err)
	}

	for _, bad := range []string{"300222", "001022", "011322", "0109x2", "01092"} {
		if _, err := DecodeDate(bad); !errors.Is(err, ErrFormat) {
			t.Errorf("%q: got error %v, want ErrFormat", bad, err)
		}
	}
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestParseDigitsRange(t *testing.T) {
	if v, ok := parseDigits[uint8]("255"); !ok || v != 255 {
		t.Errorf("uint8 255: got %d, %v", v, ok)
	}
	if _, ok := parseDigits[uint8]("256"); ok {
		t.Errorf("uint8 256: expected overflow")
	}
	if v, ok := parseDigits[int8]("127"); !ok || v != 127 {
		t.Errorf("int8 127: got %d, %v", v, ok)
	}
	if _, ok := parseDigits[int8]("128"); ok {
		t.Errorf("int8 128: expected overflow")
	}
	if v, ok := parseDigits[int64]("9223372036854775807"); !ok || v != 9223372036854775807 {
		t.Errorf("int64 max: got %d, %v", v, ok)
	}
	if _, ok := parseDigits[int64]("9223372036854775808"); ok {
		t.Errorf("int64 max+1: expected overflow")
	}
	if _, ok := parseDigits[uint64]("99999999999999999999"); ok {
		t.Errorf("20 digit uint64: expected overflow")
	}
	if v, ok := parseDigits[uint64]("00000000000000000000000042"); !ok || v != 42 {
		t.Errorf("leading zeros: got %d, %v", v, ok)
	}
}
