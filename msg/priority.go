// Package msg defines the unit of work carried through the send queue and
// transmit engine (spec.md §4.2/§4.3): a controller-bound payload plus the
// bookkeeping needed to match a reply, retry on failure, and trace it
// through logs. Grounded on the teacher's ASDU-as-message-envelope idiom
// (asdu.NewASDU building one outbound unit with its own identifier and
// cause of transmission) scaled to Z-Wave's frame/function-id model.
package msg

// Priority selects which of the five send queues of spec.md §4.3 a Msg
// enters. Lower values are serviced first; within a priority level queues
// are serviced round-robin across node addresses.
type Priority uint8

const (
	PriorityImmediate Priority = iota
	PriorityCommand
	PriorityNodeQuery
	PriorityPoll
	PriorityWakeUp
)

func (p Priority) String() string {
	switch p {
	case PriorityImmediate:
		return "Immediate"
	case PriorityCommand:
		return "Command"
	case PriorityNodeQuery:
		return "NodeQuery"
	case PriorityPoll:
		return "Poll"
	case PriorityWakeUp:
		return "WakeUp"
	default:
		return "Unknown"
	}
}
