package driver

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// Serial API function identifiers spec.md §6 calls out by example.
const (
	funcSerialAPIGetInitData      = 0x02
	funcApplicationCommandHandler = 0x04
	funcSendData                  = 0x13
)

const txOptionsAckAutoRoute = 0x05

var callbackCounter uint32 = 1

func nextCallbackID() byte {
	n := atomic.AddUint32(&callbackCounter, 1)
	b := byte(n)
	if b == 0 {
		b = 1
	}
	return b
}

// buildSendData wraps a command-class payload (class id, command,
// args...) in the SendData envelope used to address one node, matching
// spec.md §8 scenario 1's exact wire bytes: function 0x13, node id,
// payload length, payload, tx options, callback id.
func buildSendData(nodeID uint8, ccPayload []byte, callbackID byte) []byte {
	out := make([]byte, 0, 4+len(ccPayload))
	out = append(out, funcSendData, nodeID, byte(len(ccPayload)))
	out = append(out, ccPayload...)
	out = append(out, txOptionsAckAutoRoute, callbackID)
	return out
}

// parseApplicationCommand unpacks an unsolicited ApplicationCommandHandler
// report into the originating node id and its command-class payload. Wire
// layout: function id, rxStatus (radio receive flags this driver doesn't
// act on but must skip over to stay bit-exact with the real callback),
// node id, command-class payload length, payload.
func parseApplicationCommand(payload []byte) (nodeID uint8, ccPayload []byte, err error) {
	if len(payload) < 4 || payload[0] != funcApplicationCommandHandler {
		return 0, nil, fmt.Errorf("driver: not an ApplicationCommandHandler frame")
	}
	nodeID = payload[2]
	length := int(payload[3])
	if len(payload) < 4+length {
		return 0, nil, fmt.Errorf("driver: ApplicationCommandHandler payload truncated")
	}
	return nodeID, payload[4 : 4+length], nil
}

// buildGetInitData returns the bare SerialApiGetInitData request: just the
// function id, no arguments.
func buildGetInitData() []byte {
	return []byte{funcSerialAPIGetInitData}
}

// parseInitDataResponse unpacks the controller's SerialApiGetInitData
// reply into the network's HomeId and the list of node ids it reports
// online (spec.md §8 scenario 5). Wire layout: function id, HomeId
// (4 bytes big-endian), node count, node ids.
func parseInitDataResponse(payload []byte) (homeID uint32, nodeIDs []uint8, err error) {
	if len(payload) < 6 || payload[0] != funcSerialAPIGetInitData {
		return 0, nil, fmt.Errorf("driver: not a SerialApiGetInitData response")
	}
	homeID = binary.BigEndian.Uint32(payload[1:5])
	count := int(payload[5])
	if len(payload) < 6+count {
		return 0, nil, fmt.Errorf("driver: SerialApiGetInitData payload truncated")
	}
	return homeID, payload[6 : 6+count], nil
}
