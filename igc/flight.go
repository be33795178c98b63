// igc/flight.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package igc

import (
	"log/slog"
	"strings"
	"time"

	"github.com/mmp/igc/log"
)

// Flight is everything Parse extracts from an IGC file.
type Flight struct {
	Logger *LoggerIdentity `json:"logger,omitempty"`
	Task   *Task           `json:"task,omitempty"`
	Fixes  []Fix           `json:"fixes"`
	Aux    []AuxRecord     `json:"aux,omitempty"`

	// From the HFDTE header.
	Date         *time.Time `json:"date,omitempty"`
	FlightNumber *int       `json:"flight_number,omitempty"`

	// The extension tables in effect at the end of the file.
	FixExtensions []ExtensionField `json:"fix_extensions,omitempty"`
	AuxExtensions []ExtensionField `json:"aux_extensions,omitempty"`
}

// session holds the state that threads through a single Parse call.
type session struct {
	flight  *Flight
	fixExt  []ExtensionField // from the last I record
	auxExt  []ExtensionField // from the last J record
	skipped int
	lg      *log.Logger
}

// Parse assembles a Flight from the lines of an IGC file, which should
// already have their line terminators removed. Blank lines and lines with
// unknown record types are ignored. Any record that fails to decode
// aborts the parse; the returned error is a *LineError.
//
// lg may be nil.
func Parse(lines []string, lg *log.Logger) (*Flight, error) {
	s := &session{
		flight: &Flight{},
		lg:     lg,
	}

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			s.skipped++
			continue
		}
		if err := s.dispatch(line); err != nil {
			return nil, &LineError{Line: i + 1, RecordType: line[0], Raw: line, Err: err}
		}
	}

	s.flight.FixExtensions = s.fixExt
	s.flight.AuxExtensions = s.auxExt

	lg.Debug("Parsed IGC flight", slog.Int("lines", len(lines)), slog.Int("fixes", len(s.flight.Fixes)),
		slog.Int("skipped", s.skipped))

	return s.flight, nil
}

func (s *session) dispatch(line string) error {
	f := s.flight

	switch line[0] {
	case 'A':
		id, err := DecodeA(line)
		if err != nil {
			return err
		}
		if f.Logger != nil {
			s.lg.Debugf("%s: ignoring additional A record", line)
		} else {
			f.Logger = &id
		}

	case 'B':
		fix, err := DecodeB(line, s.fixExt)
		if err != nil {
			return err
		}
		f.Fixes = append(f.Fixes, fix)

	case 'C':
		if f.Task == nil {
			task, err := DecodeTask(line)
			if err != nil {
				return err
			}
			f.Task = &task
		} else {
			pt, err := DecodeTaskPoint(line)
			if err != nil {
				return err
			}
			f.Task.Points = append(f.Task.Points, pt)
		}

	case 'H':
		if HeaderCode(line) == "DTE" {
			date, n, err := DecodeDateHeader(line)
			if err != nil {
				return err
			}
			f.Date, f.FlightNumber = &date, n
		}

	case 'I':
		table, err := ParseExtensionTable(line)
		if err != nil {
			return err
		}
		s.fixExt = table

	case 'J':
		table, err := ParseExtensionTable(line)
		if err != nil {
			return err
		}
		s.auxExt = table

	case 'K':
		rec, err := DecodeK(line, s.auxExt)
		if err != nil {
			return err
		}
		f.Aux = append(f.Aux, rec)

	default:
		s.skipped++
	}
	return nil
}

// Timestamps returns the UTC instant of each fix. The date comes from the
// HFDTE header and advances by a day whenever the time of day goes
// backwards, which happens when a flight crosses midnight UTC. It returns
// nil if the file had no date header.
func (f *Flight) Timestamps() []time.Time {
	if f.Date == nil || len(f.Fixes) == 0 {
		return nil
	}

	ts := make([]time.Time, len(f.Fixes))
	day := f.Date.UTC()
	var prev time.Duration
	for i, fix := range f.Fixes {
		d := fix.Time.Duration()
		if i > 0 && d < prev {
			day = day.AddDate(0, 0, 1)
		}
		prev = d
		ts[i] = fix.Time.On(day)
	}
	return ts
}

// Summary is a compact description of a flight.
type Summary struct {
	Manufacturer string
	LoggerID     string
	Date         string
	NumFixes     int
	NumValid     int
	FirstFix     string
	LastFix      string
	TaskPoints   int

	// RFC 3339 instants; empty when the file has no date header (Start,
	// End) or no task (Declared).
	Start    string
	End      string
	Declared string
}

func (f *Flight) Summary() Summary {
	var s Summary
	if f.Logger != nil {
		s.Manufacturer = f.Logger.Manufacturer
		if f.Logger.LoggerID != nil {
			s.LoggerID = *f.Logger.LoggerID
		}
	}
	if f.Date != nil {
		s.Date = f.Date.UTC().Format(time.DateOnly)
	}
	s.NumFixes = len(f.Fixes)
	for _, fix := range f.Fixes {
		if fix.Valid {
			s.NumValid++
		}
	}
	if n := len(f.Fixes); n > 0 {
		s.FirstFix = f.Fixes[0].Time.String()
		s.LastFix = f.Fixes[n-1].Time.String()
	}
	if ts := f.Timestamps(); len(ts) > 0 {
		s.Start = ts[0].Format(time.RFC3339)
		s.End = ts[len(ts)-1].Format(time.RFC3339)
	}
	if f.Task != nil {
		s.TaskPoints = len(f.Task.Points)
		s.Declared = f.Task.DeclarationTimestamp().Format(time.RFC3339)
	}
	return s
}
