package workbook

import (
	"errors"
	"fmt"
)

var ErrWrite = errors.New("workbook write failed")

// WriteError reports a failure while building or persisting a workbook.
// Sections handed to the writer are discarded when it occurs.
type WriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("workbook: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("workbook: %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool {
	return target == ErrWrite || errors.Is(e.Err, target)
}
