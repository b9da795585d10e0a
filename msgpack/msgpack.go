// Package msgpack provides a MessagePack codec for the aspect Printer.
// Output is binary, so the Printer shows it hex-encoded after the content
// type:
//
//	[aspect] parameter #0: (main.User) application/msgpack 83a26964a137...
package msgpack

import (
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/aspect"
)

type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() aspect.Codec {
	return msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}
