// Package persistence implements the XML snapshot format of spec.md §6/
// §4.10: one document per HomeId, round-tripping every known node, its
// command-class support table and its current values. Built on
// encoding/xml — justified in DESIGN.md: no repo in the retrieval pack
// imports a third-party XML library, and the schema here is a straight
// attribute/element tree with no namespaces or streaming requirement that
// would call for anything beyond the standard marshaller.
package persistence

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// Item is one allowed value of a List-typed Value.
type Item struct {
	Label string `xml:"label,attr"`
	Value int    `xml:"value,attr"`
}

// Value is one persisted leaf setting.
type Value struct {
	Genre    string `xml:"genre,attr"`
	Instance uint8  `xml:"instance,attr"`
	Index    uint8  `xml:"index,attr"`
	Type     string `xml:"type,attr"`
	Label    string `xml:"label,attr"`
	Units    string `xml:"units,attr,omitempty"`
	ReadOnly bool   `xml:"read_only,attr"`
	Value    string `xml:"value,attr"`
	Items    []Item `xml:"Item,omitempty"`
}

// CommandClass is one command class a node is recorded as supporting.
type CommandClass struct {
	ID        uint8   `xml:"id,attr"`
	Version   uint8   `xml:"version,attr"`
	Instances uint8   `xml:"instances,attr"`
	Values    []Value `xml:"Value"`
}

// Node is one persisted device.
type Node struct {
	ID            uint8          `xml:"id,attr"`
	Generic       uint8          `xml:"generic,attr"`
	Specific      uint8          `xml:"specific,attr"`
	QueryStage    string         `xml:"query_stage,attr"`
	CommandClasses []CommandClass `xml:"CommandClass"`
}

// Driver is the root element: one snapshot per HomeId.
type Driver struct {
	XMLName xml.Name `xml:"Driver"`
	HomeID  string   `xml:"home_id,attr"`
	Nodes   []Node   `xml:"Node"`
}

// Marshal renders d as an indented XML document with a standard header.
func Marshal(d *Driver) ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("persistence: marshal: %w", err)
	}
	out := append([]byte(xml.Header), body...)
	return append(out, '\n'), nil
}

// Unmarshal parses an XML snapshot produced by Marshal.
func Unmarshal(data []byte) (*Driver, error) {
	var d Driver
	if err := xml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("persistence: unmarshal: %w", err)
	}
	return &d, nil
}

// WriteFile writes d's snapshot to path, creating or truncating it.
func WriteFile(path string, d *Driver) error {
	body, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}

// ReadFile loads a snapshot previously written by WriteFile. It returns
// (nil, nil) if path does not exist — spec.md §4.10's "if a snapshot
// exists" is a soft precondition, not an error.
func ReadFile(path string) (*Driver, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("persistence: open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("persistence: read %s: %w", path, err)
	}
	return Unmarshal(data)
}
