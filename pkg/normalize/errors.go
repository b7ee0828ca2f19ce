package normalize

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is returned when a record lacks the field that gives
// it an identity. Unresolved references are never errors; they are dropped.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError describes a record that cannot be assigned an
// identity.
type MalformedRecordError struct {
	// Compilation is the name (or derived hash) of the owning compilation.
	Compilation string
	// Kind is the record kind: "module", "chunk" or "asset".
	Kind string
	// Index is the record's position in collection order.
	Index int
	// Field is the missing identity field.
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("compilation %q: %s #%d has no %s", e.Compilation, e.Kind, e.Index, e.Field)
}

// Unwrap makes errors.Is(err, ErrMalformedRecord) match.
func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}
