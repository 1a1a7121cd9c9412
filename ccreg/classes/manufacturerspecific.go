package classes

import (
	"encoding/binary"
	"fmt"

	"github.com/go-zwave/zwave/node"
	"github.com/go-zwave/zwave/value"
)

const classManufacturerSpecific = 0x72

const (
	manufacturerSpecificGet    = 0x04
	manufacturerSpecificReport = 0x05
)

// ManufacturerSpecific implements COMMAND_CLASS_MANUFACTURER_SPECIFIC, the
// query-pipeline stage that resolves a node's manufacturer/product id
// triple (spec.md §4.4's ManufacturerSpecific stage) used to index the
// out-of-scope product database.
type ManufacturerSpecific struct{}

func (ManufacturerSpecific) ID() uint8         { return classManufacturerSpecific }
func (ManufacturerSpecific) Name() string      { return "ManufacturerSpecific" }
func (ManufacturerSpecific) MinVersion() uint8 { return 1 }
func (ManufacturerSpecific) MaxVersion() uint8 { return 2 }

// ManufacturerIDValue, ProductTypeValue and ProductIDValue index the three
// fields HandleReport stores, so a caller (the driver's product-config DNS
// lookup) can re-resolve them without hand-rolling the same ValueID.
func (c ManufacturerSpecific) ManufacturerIDValue(n *node.Node) value.ID {
	return value.NewID(n.HomeID, n.NodeID, value.GenreSystem, c.ID(), 1, 0, value.TypeShort)
}

func (c ManufacturerSpecific) ProductTypeValue(n *node.Node) value.ID {
	return value.NewID(n.HomeID, n.NodeID, value.GenreSystem, c.ID(), 1, 1, value.TypeShort)
}

func (c ManufacturerSpecific) ProductIDValue(n *node.Node) value.ID {
	return value.NewID(n.HomeID, n.NodeID, value.GenreSystem, c.ID(), 1, 2, value.TypeShort)
}

func (c ManufacturerSpecific) HandleReport(n *node.Node, version, instance uint8, payload []byte) (bool, error) {
	if len(payload) < 7 || payload[0] != manufacturerSpecificReport {
		return false, fmt.Errorf("classes: ManufacturerSpecific report too short")
	}
	manufacturerID := binary.BigEndian.Uint16(payload[1:3])
	productType := binary.BigEndian.Uint16(payload[3:5])
	productID := binary.BigEndian.Uint16(payload[5:7])

	base := c.ManufacturerIDValue(n)
	n.Values.Add(value.New(base, "Manufacturer ID", ""))
	n.Values.Apply(base, int(manufacturerID))

	typeID := c.ProductTypeValue(n)
	n.Values.Add(value.New(typeID, "Product Type", ""))
	n.Values.Apply(typeID, int(productType))

	prodID := c.ProductIDValue(n)
	n.Values.Add(value.New(prodID, "Product ID", ""))
	n.Values.Apply(prodID, int(productID))

	return false, nil
}

func (ManufacturerSpecific) BuildGet(version, instance uint8) []byte {
	return []byte{classManufacturerSpecific, manufacturerSpecificGet}
}

func (ManufacturerSpecific) BuildSet(version, instance uint8, newValue any) ([]byte, error) {
	return nil, fmt.Errorf("classes: ManufacturerSpecific is read-only")
}
