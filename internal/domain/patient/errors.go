package patient

import "errors"

// ErrNotFound is returned when an operation references a patient id absent
// from the store.
var ErrNotFound = errors.New("patient not found")
