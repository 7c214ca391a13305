package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Ingest error sentinels.
var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoHeader          = errors.New("no header row found")
	ErrNoRecords         = errors.New("no data rows found")
)

// MissingColumnsError reports required columns absent from the best header candidate.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Is lets errors.Is(err, ErrNoHeader) match missing-column failures.
func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrNoHeader
}
