package driver

import "errors"

var (
	ErrNotOpen       = errors.New("driver: not open")
	ErrAlreadyOpen   = errors.New("driver: already open")
	ErrUnknownValue  = errors.New("driver: unknown value id")
	ErrUnknownNode   = errors.New("driver: unknown node")
	ErrUnknownClass  = errors.New("driver: unsupported command class")
	ErrBadTransport  = errors.New("driver: unrecognized transport URI")
)
