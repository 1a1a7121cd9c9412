package classes

import (
	"fmt"

	"github.com/go-zwave/zwave/node"
	"github.com/go-zwave/zwave/value"
)

const classVersion = 0x86

const (
	versionCommandClassGet    = 0x13
	versionCommandClassReport = 0x14
	versionGet                = 0x11
	versionReport             = 0x12
)

// Version implements COMMAND_CLASS_VERSION. The pipeline's Versions stage
// sends one Version Get (BuildGet) per node; per-class versions are
// recorded whenever a VersionCommandClassReport arrives, but the pipeline
// does not request them class by class.
type Version struct{}

func (Version) ID() uint8         { return classVersion }
func (Version) Name() string      { return "Version" }
func (Version) MinVersion() uint8 { return 1 }
func (Version) MaxVersion() uint8 { return 3 }

func (c Version) HandleReport(n *node.Node, version, instance uint8, payload []byte) (bool, error) {
	if len(payload) < 1 {
		return false, fmt.Errorf("classes: Version report too short")
	}
	switch payload[0] {
	case versionCommandClassReport:
		if len(payload) < 3 {
			return false, fmt.Errorf("classes: VersionCommandClassReport too short")
		}
		classID := payload[1]
		classVer := payload[2]
		support, _ := n.Class(classID)
		n.AddClass(classID, classVer, maxU8(support.Instances, 1))
		return false, nil
	case versionReport:
		if len(payload) < 6 {
			return false, fmt.Errorf("classes: VersionReport too short")
		}
		id := value.NewID(n.HomeID, n.NodeID, value.GenreSystem, c.ID(), 1, 0, value.TypeString)
		label := fmt.Sprintf("%d.%d", payload[4], payload[5])
		n.Values.Add(value.New(id, "Application Version", ""))
		n.Values.Apply(id, label)
		return false, nil
	default:
		return false, nil
	}
}

func maxU8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

func (Version) BuildGet(version, instance uint8) []byte {
	return []byte{classVersion, versionGet}
}

// BuildCommandClassGet returns a Get for the version of one specific
// command class. The discovery pipeline does not call it; its Versions
// stage sends the single Version Get from BuildGet.
func (Version) BuildCommandClassGet(classID uint8) []byte {
	return []byte{classVersion, versionCommandClassGet, classID}
}

func (Version) BuildSet(version, instance uint8, newValue any) ([]byte, error) {
	return nil, fmt.Errorf("classes: Version is read-only")
}
