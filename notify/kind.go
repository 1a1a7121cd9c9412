// Package notify implements the driver-wide pub/sub notification bus of
// spec.md §6, grounded on the teacher's connection lifecycle callbacks
// (cs104.Client's onConnect/onConnectionLost/onActivated/onDeactivated in
// the marrasen client, generalized here from four fixed hooks into an open
// set of typed events delivered to any number of registered watchers).
package notify

// Kind enumerates the notification types of spec.md §6.
type Kind uint8

const (
	NodeAdded Kind = iota
	NodeRemoved
	NodeProtocolInfo
	NodeReady
	ValueAdded
	ValueChanged
	ValueRemoved
	Group
	PollingEnabled
	DriverReady
	DriverReset
	DriverFailed
	AwakeNodesQueried
	AllNodesQueried
	NodeQueriesComplete
	SendFailed
	DnsResult
)

var kindName = [...]string{
	NodeAdded:           "NodeAdded",
	NodeRemoved:         "NodeRemoved",
	NodeProtocolInfo:    "NodeProtocolInfo",
	NodeReady:           "NodeReady",
	ValueAdded:          "ValueAdded",
	ValueChanged:        "ValueChanged",
	ValueRemoved:        "ValueRemoved",
	Group:               "Group",
	PollingEnabled:      "PollingEnabled",
	DriverReady:         "DriverReady",
	DriverReset:         "DriverReset",
	DriverFailed:        "DriverFailed",
	AwakeNodesQueried:   "AwakeNodesQueried",
	AllNodesQueried:     "AllNodesQueried",
	NodeQueriesComplete: "NodeQueriesComplete",
	SendFailed:          "SendFailed",
	DnsResult:           "DnsResult",
}

func (k Kind) String() string {
	if int(k) < len(kindName) {
		return kindName[k]
	}
	return "Unknown"
}
