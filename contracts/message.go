package contracts

import (
	"fmt"
	"strconv"
)

// MessageType identifies the kind of a message on the wire
type MessageType uint32

const (
	MetadataRequest         MessageType = 1
	MetadataResponse        MessageType = 2
	AccountShareRequest     MessageType = 3
	AccountShareResponse    MessageType = 4
	TransactionSignRequest  MessageType = 5
	TransactionSignResponse MessageType = 6
	MessageSignRequest      MessageType = 7
	MessageSignResponse     MessageType = 8
)

var messageTypeNames = map[MessageType]string{
	MetadataRequest:         "MetadataRequest",
	MetadataResponse:        "MetadataResponse",
	AccountShareRequest:     "AccountShareRequest",
	AccountShareResponse:    "AccountShareResponse",
	TransactionSignRequest:  "TransactionSignRequest",
	TransactionSignResponse: "TransactionSignResponse",
	MessageSignRequest:      "MessageSignRequest",
	MessageSignResponse:     "MessageSignResponse",
}

// String returns the name of a known message type or its number
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return strconv.FormatUint(uint64(t), 10)
}

// ParseMessageType accepts either a message type name or its decimal value
func ParseMessageType(s string) (MessageType, error) {
	for t, name := range messageTypeNames {
		if name == s {
			return t, nil
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown message type %q", s)
	}
	return MessageType(n), nil
}

// Message is the caller-facing unit of the protocol. Payload holds a
// JSON-shaped value (or any Go value that marshals to JSON) described by the
// schema registered for Type and Protocol.
type Message struct {
	ID       string      `json:"id"`
	Type     MessageType `json:"type"`
	Protocol string      `json:"protocol"`
	Payload  interface{} `json:"payload"`
}

// NewMessage creates a message without an id; serializers assign one
func NewMessage(messageType MessageType, protocol string, payload interface{}) Message {
	return Message{
		Type:     messageType,
		Protocol: protocol,
		Payload:  payload,
	}
}
