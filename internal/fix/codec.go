package fix

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownMsgType   = errors.New("unknown message type")
	ErrNoMsgType        = errors.New("message type missing")
	ErrMalformedMessage = errors.New("malformed message")
)

// HeartbeatFrame is the ping sent by the liveness monitor.
const HeartbeatFrame = `{"35":"0"}`

// Codec converts between messages and JSON text frames. The zero value is
// ready to use.
type Codec struct{}

// Encode serialises msg. An empty MsgType is filled in from the message kind.
func (Codec) Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("encode: %w: nil message", ErrMalformedMessage)
	}
	h := msg.MsgHeader()
	if h.MsgType == "" {
		mt, ok := defaultMsgTypes[msg.Kind()]
		if !ok {
			return nil, fmt.Errorf("encode %s: %w", msg.Kind(), ErrNoMsgType)
		}
		h.MsgType = mt
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Kind(), err)
	}
	return data, nil
}

// Decode parses a text frame into its concrete message type.
func (Codec) Decode(data []byte) (Message, error) {
	var probe Header
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if probe.MsgType == "" {
		return nil, ErrNoMsgType
	}
	newMsg, ok := decoders[probe.MsgType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMsgType, probe.MsgType)
	}
	msg := newMsg()
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: type %s: %v", ErrMalformedMessage, probe.MsgType, err)
	}
	return msg, nil
}

// KindOf returns the kind of a message type, if it is one Decode accepts.
func KindOf(msgType string) (Kind, bool) {
	newMsg, ok := decoders[msgType]
	if !ok {
		return "", false
	}
	return newMsg().Kind(), true
}
