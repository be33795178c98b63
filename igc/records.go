// igc/records.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package igc

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// LoggerIdentity is decoded from the A record.
type LoggerIdentity struct {
	Manufacturer   string  `json:"manufacturer"`
	LoggerID       *string `json:"logger_id,omitempty"`
	FlightNumber   *int    `json:"flight_number,omitempty"`
	AdditionalData *string `json:"additional_data,omitempty"`
}

// Fix is a B record: one GPS position sample.
type Fix struct {
	Time             TimeOfDay         `json:"time"`
	Latitude         float64           `json:"latitude"`
	Longitude        float64           `json:"longitude"`
	Valid            bool              `json:"valid"`
	PressureAltitude *int              `json:"pressure_altitude,omitempty"`
	GPSAltitude      *int              `json:"gps_altitude,omitempty"`
	Extensions       map[string]string `json:"extensions,omitempty"`
	FixAccuracy      *int              `json:"fix_accuracy,omitempty"`
	EngineNoiseLevel *float64          `json:"engine_noise_level,omitempty"`
}

// AuxRecord is a K record; apart from the time, all of its data is
// located through the J extension table.
type AuxRecord struct {
	Time       TimeOfDay         `json:"time"`
	Extensions map[string]string `json:"extensions,omitempty"`
}

// Task is the pre-flight declaration given by the first C record; the C
// records that follow it provide Points.
type Task struct {
	DeclarationDate time.Time   `json:"declaration_date"`
	DeclarationTime TimeOfDay   `json:"declaration_time"`
	FlightDate      *time.Time  `json:"flight_date,omitempty"`
	TaskNumber      *int        `json:"task_number,omitempty"`
	NumTurnpoints   int         `json:"num_turnpoints"`
	Comment         *string     `json:"comment,omitempty"`
	Points          []TaskPoint `json:"points"`
}

// DeclarationTimestamp returns the instant the task was declared.
func (t *Task) DeclarationTimestamp() time.Time {
	return t.DeclarationTime.On(t.DeclarationDate)
}

type TaskPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      *string `json:"name,omitempty"`
}

// Extension codes with a defined meaning in B records.
const (
	CodeFixAccuracy      = "FXA"
	CodeEngineNoiseLevel = "ENL"
)

// matchLayout checks line against a fixed-width layout. In layout, 'd'
// is a digit, 's' a digit or '-', 'a' a letter, 'N' is N or S, 'E' is E
// or W; any other byte must match literally. line may be longer than
// layout.
func matchLayout(line, layout string) bool {
	if len(line) < len(layout) {
		return false
	}
	for i := 0; i < len(layout); i++ {
		c := line[i]
		switch layout[i] {
		case 'd':
			if !isDigit(c) {
				return false
			}
		case 's':
			if !isDigit(c) && c != '-' {
				return false
			}
		case 'a':
			if !(c >= 'A' && c <= 'Z') && !(c >= 'a' && c <= 'z') {
				return false
			}
		case 'N':
			if c != 'N' && c != 'S' {
				return false
			}
		case 'E':
			if c != 'E' && c != 'W' {
				return false
			}
		default:
			if c != layout[i] {
				return false
			}
		}
	}
	return true
}

const (
	// time, latitude, longitude, validity, pressure and GPS altitude
	layoutB         = "B" + "dddddd" + "dddddddN" + "ddddddddE" + "a" + "sdddd" + "sdddd"
	layoutK         = "K" + "dddddd"
	layoutTask      = "C" + "dddddd" + "dddddd" + "dddddd" + "dddd" + "dd"
	layoutTaskPoint = "C" + "dddddddN" + "ddddddddE"
)

var (
	reAStrict = regexp.MustCompile(`^A([A-Za-z0-9]{3})([A-Za-z0-9]+?)(?:(?i:,?FLIGHT:)(\d+))?(?::(.*))?$`)
	reALoose  = regexp.MustCompile(`^A([A-Za-z0-9]{3})(.*)$`)
	reHFDTE   = regexp.MustCompile(`^HFDTE(?:DATE:)?(\d{6})(?:,(\d+))?\s*$`)
)

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// DecodeA decodes the logger identity. Some loggers write only a model
// string after the manufacturer; that shape is tried when the structured
// one does not match and the text is returned as AdditionalData.
func DecodeA(line string) (LoggerIdentity, error) {
	if m := reAStrict.FindStringSubmatch(line); m != nil {
		id := LoggerIdentity{
			Manufacturer:   m[1],
			LoggerID:       optionalString(m[2]),
			AdditionalData: optionalString(m[4]),
		}
		if m[3] != "" {
			n, ok := parseDigits[int](m[3])
			if !ok {
				return LoggerIdentity{}, unparsable('A', "flight number "+m[3])
			}
			id.FlightNumber = &n
		}
		return id, nil
	}
	if m := reALoose.FindStringSubmatch(line); m != nil {
		return LoggerIdentity{
			Manufacturer:   m[1],
			AdditionalData: optionalString(m[2]),
		}, nil
	}
	return LoggerIdentity{}, unparsable('A', "no manufacturer code")
}

// DecodeB decodes a fix. table is the most recent I record's extension
// table and may be nil.
func DecodeB(line string, table []ExtensionField) (Fix, error) {
	if !matchLayout(line, layoutB) {
		return Fix{}, unparsable('B', "does not match fix layout")
	}

	var fix Fix
	var err error
	if fix.Time, err = DecodeTimeOfDay(line[1:7]); err != nil {
		return Fix{}, err
	}
	if fix.Latitude, err = DecodeLatitude(line[7:9], line[9:11], line[11:14], line[14]); err != nil {
		return Fix{}, err
	}
	if fix.Longitude, err = DecodeLongitude(line[15:18], line[18:20], line[20:23], line[23]); err != nil {
		return Fix{}, err
	}
	fix.Valid = line[24] == 'A'
	if fix.PressureAltitude, err = DecodeSentinelAltitude(line[25:30]); err != nil {
		return Fix{}, err
	}
	if fix.GPSAltitude, err = DecodeSentinelAltitude(line[30:35]); err != nil {
		return Fix{}, err
	}

	if fix.Extensions, err = sliceExtensions('B', line, table); err != nil {
		return Fix{}, err
	}
	if v, ok := fix.Extensions[CodeFixAccuracy]; ok {
		fxa, ok := parseDigits[int](v)
		if !ok {
			return Fix{}, formatErr("fix accuracy %q", v)
		}
		fix.FixAccuracy = &fxa
	}
	if v, ok := fix.Extensions[CodeEngineNoiseLevel]; ok {
		// Digits divided by 10^width always lie in [0, 1].
		enl, ok := parseDigits[uint64](v)
		if !ok {
			return Fix{}, formatErr("engine noise level %q", v)
		}
		f := float64(enl) / math.Pow10(len(v))
		fix.EngineNoiseLevel = &f
	}

	return fix, nil
}

// DecodeK decodes an auxiliary data record using the most recent J
// record's extension table.
func DecodeK(line string, table []ExtensionField) (AuxRecord, error) {
	if !matchLayout(line, layoutK) {
		return AuxRecord{}, unparsable('K', "does not match auxiliary layout")
	}
	t, err := DecodeTimeOfDay(line[1:7])
	if err != nil {
		return AuxRecord{}, err
	}
	ext, err := sliceExtensions('K', line, table)
	if err != nil {
		return AuxRecord{}, err
	}
	return AuxRecord{Time: t, Extensions: ext}, nil
}

// DecodeTask decodes the first C record of a declaration.
func DecodeTask(line string) (Task, error) {
	if !matchLayout(line, layoutTask) {
		return Task{}, unparsable('C', "does not match task declaration layout")
	}

	var task Task
	var err error
	if task.DeclarationDate, err = DecodeDate(line[1:7]); err != nil {
		return Task{}, err
	}
	if task.DeclarationTime, err = DecodeTimeOfDay(line[7:13]); err != nil {
		return Task{}, err
	}
	if fd := line[13:19]; fd != "000000" {
		d, err := DecodeDate(fd)
		if err != nil {
			return Task{}, err
		}
		task.FlightDate = &d
	}
	if tn := line[19:23]; tn != "0000" {
		n, _ := parseDigits[int](tn)
		task.TaskNumber = &n
	}
	task.NumTurnpoints, _ = parseDigits[int](line[23:25])
	task.Comment = optionalString(strings.TrimSpace(line[25:]))

	return task, nil
}

// DecodeTaskPoint decodes the C records that follow the declaration.
func DecodeTaskPoint(line string) (TaskPoint, error) {
	if !matchLayout(line, layoutTaskPoint) {
		return TaskPoint{}, unparsable('C', "does not match turnpoint layout")
	}

	lat, err := DecodeLatitude(line[1:3], line[3:5], line[5:8], line[8])
	if err != nil {
		return TaskPoint{}, err
	}
	long, err := DecodeLongitude(line[9:12], line[12:14], line[14:17], line[17])
	if err != nil {
		return TaskPoint{}, err
	}
	return TaskPoint{
		Latitude:  lat,
		Longitude: long,
		Name:      optionalString(strings.TrimSpace(line[18:])),
	}, nil
}

// HeaderCode returns the three letter subtype of an H record, e.g. "DTE"
// for "HFDTE...".
func HeaderCode(line string) string {
	if len(line) < 5 {
		return ""
	}
	return line[2:5]
}

// DecodeDateHeader decodes HFDTE, in either the "HFDTE030922" or the
// "HFDTEDATE:030922,01" form. The flight number is nil when absent.
func DecodeDateHeader(line string) (time.Time, *int, error) {
	m := reHFDTE.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, nil, unparsable('H', "invalid date header")
	}
	date, err := DecodeDate(m[1])
	if err != nil {
		return time.Time{}, nil, err
	}
	if m[2] == "" {
		return date, nil, nil
	}
	n, ok := parseDigits[int](m[2])
	if !ok {
		return time.Time{}, nil, unparsable('H', fmt.Sprintf("flight number %q", m[2]))
	}
	return date, &n, nil
}
