// Package rpc defines the SmartQ auth gRPC service: its messages, a JSON
// wire codec, the service descriptor and a client stub.
//
// Messages are plain Go structs encoded as JSON, so no generated protobuf
// code is needed. Clients select the codec with the "json" content subtype,
// which the stub in this package does automatically.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype ("application/grpc+json").
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
