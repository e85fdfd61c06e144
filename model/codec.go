package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrNoEvent      = errors.New("frame has no event name")
	ErrUnknownCodec = errors.New("unknown codec")
)

// Frame is a decoded inbound envelope whose payload has not been read yet.
type Frame struct {
	Event string
	data  []byte
	codec Codec
}

// Decode reads the payload into v.
func (f Frame) Decode(v any) error {
	if len(f.data) == 0 {
		return fmt.Errorf("%s: missing data", f.Event)
	}
	return f.codec.unmarshal(f.data, v)
}

// HasData reports whether the envelope carried a payload.
func (f Frame) HasData() bool { return len(f.data) > 0 }

// Codec turns envelopes {event, data} into websocket frames and back.
type Codec interface {
	Name() string
	// Binary reports whether frames go out as binary websocket messages.
	Binary() bool
	Marshal(event string, data any) ([]byte, error)
	Unmarshal(frame []byte) (Frame, error)
	unmarshal(data []byte, v any) error
}

func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "msgpack":
		return Msgpack{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownCodec)
	}
}

type JSON struct{}

type jsonEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (JSON) Name() string { return "json" }
func (JSON) Binary() bool { return false }

func (JSON) Marshal(event string, data any) ([]byte, error) {
	return json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{event, data})
}

func (c JSON) Unmarshal(frame []byte) (Frame, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Frame{}, err
	}
	if env.Event == "" {
		return Frame{}, ErrNoEvent
	}
	data := []byte(env.Data)
	if bytes.Equal(data, []byte("null")) {
		data = nil
	}
	return Frame{Event: env.Event, data: data, codec: c}, nil
}

func (JSON) unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Msgpack encodes the same envelope in MessagePack, reusing the json tags.
type Msgpack struct{}

type msgpackEnvelope struct {
	Event string             `json:"event"`
	Data  msgpack.RawMessage `json:"data,omitempty"`
}

func (Msgpack) Name() string { return "msgpack" }
func (Msgpack) Binary() bool { return true }

func (Msgpack) Marshal(event string, data any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	err := enc.Encode(struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{event, data})
	return buf.Bytes(), err
}

func (c Msgpack) Unmarshal(frame []byte) (Frame, error) {
	var env msgpackEnvelope
	if err := c.unmarshal(frame, &env); err != nil {
		return Frame{}, err
	}
	if env.Event == "" {
		return Frame{}, ErrNoEvent
	}
	return Frame{Event: env.Event, data: []byte(env.Data), codec: c}, nil
}

func (Msgpack) unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
