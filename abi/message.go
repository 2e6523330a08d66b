package abi

import "strconv"

// InMsg is the closed set of messages a host can send to the engine.
// Discriminants are part of the ABI and never change once assigned.
type InMsg uint8

const (
	// InMsgPing asks the engine to acknowledge with OutMsgPong.
	InMsgPing InMsg = 0

	inMsgCount = 1
)

// OutMsg is the closed set of messages the engine sends to the host.
type OutMsg uint8

const (
	// OutMsgStarted is queued once, before the first tick.
	OutMsgStarted OutMsg = 0
	// OutMsgPong acknowledges an InMsgPing.
	OutMsgPong OutMsg = 1

	outMsgCount = 2
)

// InMsgs lists every inbound discriminant in order.
func InMsgs() []InMsg {
	out := make([]InMsg, inMsgCount)
	for i := range out {
		out[i] = InMsg(i)
	}
	return out
}

// OutMsgs lists every outbound discriminant in order.
func OutMsgs() []OutMsg {
	out := make([]OutMsg, outMsgCount)
	for i := range out {
		out[i] = OutMsg(i)
	}
	return out
}

// Valid reports whether m is a member of the closed set.
func (m InMsg) Valid() bool { return m < inMsgCount }

// Valid reports whether m is a member of the closed set.
func (m OutMsg) Valid() bool { return m < outMsgCount }

func (m InMsg) String() string {
	switch m {
	case InMsgPing:
		return "ping"
	default:
		return "in-msg(" + strconv.Itoa(int(m)) + ")"
	}
}

func (m OutMsg) String() string {
	switch m {
	case OutMsgStarted:
		return "started"
	case OutMsgPong:
		return "pong"
	default:
		return "out-msg(" + strconv.Itoa(int(m)) + ")"
	}
}
