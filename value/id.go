package value

import "fmt"

// ID is the composite key (HomeId, NodeId, Genre, CommandClassId, Instance,
// Index, Type) packed into a single uint64 for cheap hashing and a stable
// external identity (spec.md §3), the same bit-packing idiom the teacher
// uses for CauseOfTransmission and VariableStruct (asdu/identifier.go) to
// fold several small fields into one wire/key byte — scaled up here to a
// 64-bit key.
//
// Layout, MSB to LSB:
//
//	bits 63-32  HomeId          (32 bits)
//	bits 31-24  NodeId          (8 bits)
//	bits 23-22  Genre           (2 bits)
//	bits 21-14  CommandClassId  (8 bits)
//	bits 13-9   Instance        (5 bits, 0..31)
//	bits 8-4    Index           (5 bits, 0..31)
//	bits 3-0    Type            (4 bits)
//
// Instance and Index are narrowed from a full byte to 5 bits each to fit
// the other five fields into 64 bits alongside the full 32-bit HomeId;
// every Z-Wave command class in practice uses far fewer than 32 instances
// or 32 indices per instance.
type ID uint64

const (
	instanceBits = 5
	indexBits    = 5
	typeBits     = 4

	instanceMask = 1<<instanceBits - 1
	indexMask    = 1<<indexBits - 1
	typeMask     = 1<<typeBits - 1
)

// NewID packs the seven ValueID fields into an ID. Instance and Index are
// truncated to their 5-bit range.
func NewID(homeID uint32, nodeID uint8, genre Genre, classID uint8, instance, index uint8, typ Type) ID {
	var id uint64
	id |= uint64(homeID) << 32
	id |= uint64(nodeID) << 24
	id |= uint64(genre&0x3) << 22
	id |= uint64(classID) << 14
	id |= uint64(instance&instanceMask) << 9
	id |= uint64(index&indexMask) << 4
	id |= uint64(typ & typeMask)
	return ID(id)
}

func (id ID) HomeID() uint32     { return uint32(id >> 32) }
func (id ID) NodeID() uint8      { return uint8(id >> 24) }
func (id ID) Genre() Genre       { return Genre((id >> 22) & 0x3) }
func (id ID) CommandClass() uint8 { return uint8((id >> 14) & 0xFF) }
func (id ID) Instance() uint8    { return uint8((id >> 9) & instanceMask) }
func (id ID) Index() uint8       { return uint8((id >> 4) & indexMask) }
func (id ID) Type() Type         { return Type(id & typeMask) }

func (id ID) String() string {
	return fmt.Sprintf("ValueID{home=0x%08x node=%d genre=%s class=0x%02x inst=%d idx=%d type=%s}",
		id.HomeID(), id.NodeID(), id.Genre(), id.CommandClass(), id.Instance(), id.Index(), id.Type())
}
