package store

import (
	"errors"
	"fmt"

	"github.com/kjk/catalog/record"
)

// ErrNotFound matches *IndexError with errors.Is
var ErrNotFound = errors.New("not found")

// IndexError is returned when deleting a position that doesn't exist
type IndexError struct {
	Kind  record.Kind
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s at index %d not found (have %d)", e.Kind, e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError wraps I/O failures reading or writing the store file
type PersistenceError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s '%s': %s", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ImportRowError describes one spreadsheet row that couldn't be imported
type ImportRowError struct {
	// Row is the spreadsheet line, the header being line 1
	Row int
	Err error
}

func (e *ImportRowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Err)
}

func (e *ImportRowError) Unwrap() error {
	return e.Err
}
