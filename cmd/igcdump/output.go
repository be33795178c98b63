// cmd/igcdump/output.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mmp/igc/igc"

	"github.com/goforj/godump"
	"github.com/iancoleman/orderedmap"
)

// summaryJSON returns the flight summary with the keys in a fixed,
// human-friendly order.
func summaryJSON(name string, f *igc.Flight) *orderedmap.OrderedMap {
	s := f.Summary()

	o := orderedmap.New()
	o.Set("file", name)
	o.Set("manufacturer", s.Manufacturer)
	if s.LoggerID != "" {
		o.Set("logger_id", s.LoggerID)
	}
	if s.Date != "" {
		o.Set("date", s.Date)
	}
	o.Set("fixes", s.NumFixes)
	o.Set("valid_fixes", s.NumValid)
	if s.NumFixes > 0 {
		o.Set("first_fix", s.FirstFix)
		o.Set("last_fix", s.LastFix)
	}
	if s.Start != "" {
		o.Set("start", s.Start)
		o.Set("end", s.End)
	}
	if f.Task != nil {
		o.Set("declared", s.Declared)
		o.Set("task_points", s.TaskPoints)
		o.Set("declared_turnpoints", f.Task.NumTurnpoints)
	}
	if len(f.FixExtensions) > 0 {
		var codes []string
		for _, e := range f.FixExtensions {
			codes = append(codes, e.Code)
		}
		o.Set("fix_extensions", codes)
	}
	return o
}

func writeFlight(w io.Writer, format string, name string, f *igc.Flight) error {
	switch format {
	case "summary":
		b, err := json.Marshal(summaryJSON(name, f))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err

	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			File       string      `json:"file"`
			Flight     *igc.Flight `json:"flight"`
			Timestamps []time.Time `json:"timestamps,omitempty"`
		}{name, f, f.Timestamps()})

	case "dump":
		if _, err := fmt.Fprintf(w, "%s:\n", name); err != nil {
			return err
		}
		godump.Fdump(w, f)
		return nil

	default:
		return fmt.Errorf("%s: unknown output format", format)
	}
}

func writeError(w io.Writer, format string, name string, err error) {
	if format == "dump" {
		fmt.Fprintf(w, "%s: %v\n", name, err)
		return
	}

	o := orderedmap.New()
	o.Set("file", name)
	o.Set("error", err.Error())
	if b, jerr := json.Marshal(o); jerr == nil {
		fmt.Fprintf(w, "%s\n", b)
	}
}
