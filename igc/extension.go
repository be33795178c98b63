// igc/extension.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package igc

import (
	"fmt"
)

// ExtensionField locates a named value inside B (declared by an I record)
// or K (declared by a J record) lines. Start and Length describe the
// zero-based, half-open byte range [Start, Start+Length).
type ExtensionField struct {
	Code   string `json:"code"`
	Start  int    `json:"start"`
	Length int    `json:"length"`
}

// End returns the offset one past the last byte of the field.
func (e ExtensionField) End() int { return e.Start + e.Length }

const extensionGroupLength = 7 // SS EE CCC

// ParseExtensionTable decodes an I or J record. Each group after the two
// digit count gives the 1-based inclusive byte range of a field and its
// three letter code.
func ParseExtensionTable(line string) ([]ExtensionField, error) {
	if len(line) < 3 || (line[0] != 'I' && line[0] != 'J') {
		return nil, fmt.Errorf("%w: %q: missing field count", ErrMalformedExtension, line)
	}
	n, ok := parseDigits[int](line[1:3])
	if !ok {
		return nil, fmt.Errorf("%w: %q: invalid field count", ErrMalformedExtension, line)
	}
	// Check the length before allocating anything sized by n.
	if len(line) < 3+extensionGroupLength*n {
		return nil, fmt.Errorf("%w: %q: %d fields declared but line has %d characters",
			ErrMalformedExtension, line, n, len(line))
	}

	fields := make([]ExtensionField, 0, n)
	for i := range n {
		g := line[3+extensionGroupLength*i : 3+extensionGroupLength*(i+1)]
		start, oks := parseDigits[uint8](g[0:2])
		end, oke := parseDigits[uint8](g[2:4])
		if !oks || !oke || start < 1 || end < start {
			return nil, fmt.Errorf("%w: %q: field %d has invalid range %q", ErrMalformedExtension,
				line, i+1, g[0:4])
		}
		fields = append(fields, ExtensionField{
			Code:   g[4:7],
			Start:  int(start) - 1,
			Length: int(end) - (int(start) - 1),
		})
	}
	return fields, nil
}

// sliceExtensions extracts the raw value of every field in table from
// line. Lines vary in length, so the bounds are checked here rather than
// when the table is declared.
func sliceExtensions(rt byte, line string, table []ExtensionField) (map[string]string, error) {
	if len(table) == 0 {
		return nil, nil
	}
	ext := make(map[string]string, len(table))
	for _, f := range table {
		if f.End() > len(line) {
			return nil, unparsable(rt, fmt.Sprintf("extension %s needs %d characters, line has %d",
				f.Code, f.End(), len(line)))
		}
		ext[f.Code] = line[f.Start:f.End()]
	}
	return ext, nil
}
