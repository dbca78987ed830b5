package snapshot

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPathNotFound indicates the root or focus path is missing or not a directory.
	ErrPathNotFound = errors.New("snapshot: path not found")
	// ErrFocusOutsideRoot indicates the focus resolves outside the root.
	ErrFocusOutsideRoot = errors.New("snapshot: focus outside root")
	// ErrMissingDocstring indicates in-focus files without leading documentation
	// when the caller asked for that to be fatal.
	ErrMissingDocstring = errors.New("snapshot: missing leading documentation")
	// ErrWriteFailure indicates the report could not be written.
	ErrWriteFailure = errors.New("snapshot: write failure")
)

// MissingDocstringError lists every offending file. It unwraps to
// ErrMissingDocstring.
type MissingDocstringError struct {
	Paths []string
}

func (e *MissingDocstringError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d file(s)", ErrMissingDocstring.Error(), len(e.Paths))
	for _, p := range e.Paths {
		b.WriteString("\n  ")
		b.WriteString(p)
	}
	return b.String()
}

func (e *MissingDocstringError) Unwrap() error {
	return ErrMissingDocstring
}
