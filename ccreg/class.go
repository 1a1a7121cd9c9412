// Package ccreg is the command-class dispatch table of spec.md §4.5: a
// flat registry mapping a command class id to the Class implementation
// that knows how to build Get/Set payloads for it and decode its reports
// into the node's Value registry. Grounded on the teacher's per-ASDU-type
// decode table (asdu/mproc.go, asdu/cproc.go each expose one function per
// TypeID); here that shape is flattened from "one function per type" to
// "one interface implementation per command class" because, unlike a
// fixed IEC101/104 ASDU catalogue, Z-Wave command classes each carry
// their own private sub-command byte and version-gated payload shape.
package ccreg

import "github.com/go-zwave/zwave/node"

// Class is one command class's parse/build logic.
type Class interface {
	// ID is the command class identifier, e.g. 0x25 for SwitchBinary.
	ID() uint8
	// Name is the human-readable command class name, used in logs.
	Name() string
	// MinVersion and MaxVersion bound the versions this implementation
	// understands; HandleReport must cope with any version in range.
	MinVersion() uint8
	MaxVersion() uint8

	// HandleReport decodes one report payload (the command class id already
	// stripped, so payload[0] is the command byte) for the given
	// node/instance, applies
	// it to n's Value registry, and reports whether the change-confirmation
	// protocol wants a refresh request sent back to the device.
	HandleReport(n *node.Node, version, instance uint8, payload []byte) (requestRefresh bool, err error)

	// BuildGet returns the command bytes (class id, command, args) for a
	// Get/state request against the given instance.
	BuildGet(version, instance uint8) []byte

	// BuildSet returns the command bytes to set newValue on the given
	// instance, or an error if newValue's type doesn't fit this class.
	BuildSet(version, instance uint8, newValue any) ([]byte, error)
}
