// igc/errors.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package igc

import (
	"errors"
	"fmt"
)

var (
	ErrFormat             = errors.New("Invalid field value")
	ErrMalformedExtension = errors.New("Malformed extension declaration")
	ErrPathNotFound       = errors.New("Path does not exist")
	ErrUnparsableLine     = errors.New("Unparsable record")
)

// LineError identifies the input line that caused Parse to fail. Err
// wraps one of the sentinel errors above.
type LineError struct {
	Line       int // 1-based
	RecordType byte
	Raw        string
	Err        error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %c record %q: %v", e.Line, e.RecordType, e.Raw, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

func unparsable(rt byte, why string) error {
	return fmt.Errorf("%w: %c record: %s", ErrUnparsableLine, rt, why)
}

func formatErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrFormat}, args...)...)
}
