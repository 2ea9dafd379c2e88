package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrDataAccess marks any failure talking to the ledger store. It is fatal
	// to a reconciliation run.
	ErrDataAccess = errors.New("ledger store unavailable")

	// ErrInvalidDate is returned for a date bound that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrUnknownRole is returned when a partner role is neither customer nor supplier.
	ErrUnknownRole = errors.New("unknown partner role")
)

// DataAccessError wraps a store failure with the operation and table involved.
type DataAccessError struct {
	// Op is the operation that failed (e.g. "Summarize", "ListPartners").
	Op string

	// Table is the table being read, when known.
	Table string

	// Err is the underlying driver error.
	Err error
}

func (e *DataAccessError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("ledger: %s failed on %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("ledger: %s failed: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// Is reports ErrDataAccess for every DataAccessError so callers can classify
// without knowing the concrete driver error.
func (e *DataAccessError) Is(target error) bool {
	return target == ErrDataAccess || errors.Is(e.Err, target)
}

func newDataAccessError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var dae *DataAccessError
	if errors.As(err, &dae) {
		return err
	}
	return &DataAccessError{Op: op, Table: table, Err: err}
}

// ValidationError describes an input that was rejected and ignored. It never
// stops a run; it is surfaced as a warning instead.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %q ignored: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
