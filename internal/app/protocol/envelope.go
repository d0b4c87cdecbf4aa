package protocol

import (
	"bytes"
	"encoding/json"

	"typerace/internal/pkg/errs"
)

// Envelope is every frame on the wire. AckID, when a client sets it, is echoed
// on the matching ack frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	AckID string          `json:"ackId,omitempty"`
}

// Decode parses a frame and its payload. The envelope is returned whenever it
// could be read, so errors can still name the event.
func Decode(raw []byte) (*Envelope, Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, errs.NewError(errs.ErrInvalidJSONFormat)
	}

	factory, ok := inboundTypes[env.Event]
	if !ok {
		return &env, nil, errs.NewError(errs.ErrUnknownEvent, env.Event)
	}

	msg := factory()
	data := env.Data
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return &env, nil, errs.NewError(errs.ErrInvalidParams)
	}
	if err := msg.Validate(); err != nil {
		return &env, nil, err
	}
	return &env, msg, nil
}

// Encode builds a server frame.
func Encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// EncodeAck builds the ack frame answering ackID.
func EncodeAck(ackID string, ack Ack) ([]byte, error) {
	raw, err := json.Marshal(ack)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: EventAck, Data: raw, AckID: ackID})
}
