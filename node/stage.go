package node

// Stage is one step of the node discovery pipeline of spec.md §4.4, run in
// this exact order for every newly-added node. The ordered iota sequence
// and its String() lookup table mirror the teacher's TypeID enumeration
// idiom (asdu/identifier.go) rather than a bare set of unordered string
// constants.
type Stage uint8

const (
	StageProtocolInfo Stage = iota
	StageWakeUp
	StageManufacturerSpecific
	StageNodeInfo
	StageNodePlusInfo
	StageSecurityReport
	StageVersions
	StageInstances
	StageStatic
	StageCacheLoad
	StageAssociations
	StageNeighbors
	StageSession
	StageDynamic
	StageConfiguration
	StageComplete
)

var stageName = [...]string{
	StageProtocolInfo:         "ProtocolInfo",
	StageWakeUp:               "WakeUp",
	StageManufacturerSpecific: "ManufacturerSpecific",
	StageNodeInfo:             "NodeInfo",
	StageNodePlusInfo:         "NodePlusInfo",
	StageSecurityReport:       "SecurityReport",
	StageVersions:             "Versions",
	StageInstances:            "Instances",
	StageStatic:               "Static",
	StageCacheLoad:            "CacheLoad",
	StageAssociations:         "Associations",
	StageNeighbors:            "Neighbors",
	StageSession:              "Session",
	StageDynamic:              "Dynamic",
	StageConfiguration:        "Configuration",
	StageComplete:             "Complete",
}

func (s Stage) String() string {
	if int(s) < len(stageName) {
		return stageName[s]
	}
	return "Unknown"
}

// Next returns the stage that follows s and true, or StageComplete and
// false if s is already the terminal stage (StageComplete has no
// successor).
func (s Stage) Next() (Stage, bool) {
	if s >= StageComplete {
		return StageComplete, false
	}
	return s + 1, true
}
