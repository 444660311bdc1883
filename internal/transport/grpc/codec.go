package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// The event bus speaks plain JSON over gRPC through a registered codec and a
// hand-declared service descriptor. This keeps the wire format identical to
// the NATS payloads without maintaining generated stubs.

const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
