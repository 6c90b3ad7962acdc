package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownKind = errors.New("envelope: unknown kind")
	ErrMalformed   = errors.New("envelope: malformed")
	ErrNil         = errors.New("envelope: nil envelope")
)

// Raw is the flat wire form of an envelope. Pointer and raw fields keep
// presence observable so field population can be checked against Type.
type Raw struct {
	Type    Kind            `json:"type"`
	Time    *int64          `json:"time,omitempty"`
	Code    *int            `json:"code,omitempty"`
	Ticket  *string         `json:"ticket,omitempty"`
	Path    *string         `json:"path,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (r Raw) hasPayload() bool {
	return len(r.Payload) > 0
}

func isNull(data json.RawMessage) bool {
	return string(bytes.TrimSpace(data)) == "null"
}

// Encode converts env to its wire form.
func Encode(env Envelope) (Raw, error) {
	if env == nil {
		return Raw{}, ErrNil
	}
	ts := env.Time()
	raw := Raw{Type: env.Kind(), Time: &ts}
	var err error
	switch e := env.(type) {
	case Ready, RefreshTicket:
	case Go:
		path, ticket := e.Path, e.Ticket
		raw.Path = &path
		raw.Ticket = &ticket
		raw.Payload, err = json.Marshal(e.Payload)
	case Message:
		raw.Payload, err = json.Marshal(e.Payload)
	case Error:
		code := int(e.Code)
		raw.Code = &code
		if e.Payload != nil {
			raw.Payload, err = json.Marshal(e.Payload)
		}
	case SyncPath:
		raw.Payload, err = json.Marshal(e.Payload)
	default:
		return Raw{}, fmt.Errorf("%w: %T", ErrUnknownKind, env)
	}
	if err != nil {
		return Raw{}, fmt.Errorf("envelope: encode %s payload: %w", env.Kind(), err)
	}
	return raw, nil
}

// Marshal encodes env as a JSON object.
func Marshal(env Envelope) ([]byte, error) {
	raw, err := Encode(env)
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

// Decode parses data into its flat wire form without checking field
// population.
func Decode(data []byte) (Raw, error) {
	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return Raw{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return raw, nil
}

// Unmarshal parses and validates data, returning the typed envelope.
// Go, Message and Error payloads are returned as json.RawMessage.
func Unmarshal(data []byte) (Envelope, error) {
	raw, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return raw.Envelope()
}

// Envelope validates r and converts it to the typed envelope.
func (r Raw) Envelope() (Envelope, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	ts := *r.Time
	switch r.Type {
	case KindReady:
		return Ready{SentAt: ts}, nil
	case KindGo:
		return Go{Path: *r.Path, Ticket: *r.Ticket, Payload: r.Payload, SentAt: ts}, nil
	case KindMessage:
		return Message{Payload: r.Payload, SentAt: ts}, nil
	case KindError:
		e := Error{Code: Code(*r.Code), SentAt: ts}
		if r.hasPayload() && !isNull(r.Payload) {
			e.Payload = r.Payload
		}
		return e, nil
	case KindRefreshTicket:
		return RefreshTicket{SentAt: ts}, nil
	case KindSyncPath:
		var payload SyncPathPayload
		if err := json.Unmarshal(r.Payload, &payload); err != nil {
			return nil, fmt.Errorf("%w: sync path payload: %v", ErrMalformed, err)
		}
		return SyncPath{Payload: payload, SentAt: ts}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, r.Type)
	}
}
