package transport

import "errors"

// ErrNotOpen is returned by Read/Write before Open has succeeded, or after
// Close.
var ErrNotOpen = errors.New("transport: not open")
