package gamerpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// CodecName is registered for both the Connect unary content type
// (application/json) and the streaming one (application/connect+json).
const CodecName = "json"

// jsonCodec lets connect carry plain Go structs instead of generated
// protobuf messages.
type jsonCodec struct{}

func (jsonCodec) Name() string { return CodecName }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// WithJSON is the option every handler and client of this package uses.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
