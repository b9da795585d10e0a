// Package bson provides a BSON codec for the aspect Printer.
//
// BSON documents must be structs or maps; other composite values fail to
// encode and the Printer falls back to its placeholder. NewExtJSON output
// is textual and printed as is; binary BSON is hex-encoded.
package bson

import (
	"github.com/zoobzio/aspect"
	"go.mongodb.org/mongo-driver/bson"
)

type bsonCodec struct {
	ext bool
}

// New returns a binary BSON codec.
func New() aspect.Codec {
	return bsonCodec{}
}

// NewExtJSON returns a codec writing relaxed Extended JSON, which reads
// better in diagnostic output than raw BSON.
func NewExtJSON() aspect.Codec {
	return bsonCodec{ext: true}
}

// ContentType returns the MIME type of the encoded form.
func (c bsonCodec) ContentType() string {
	if c.ext {
		return "application/json"
	}
	return "application/bson"
}

// Marshal encodes v as BSON or Extended JSON.
func (c bsonCodec) Marshal(v any) ([]byte, error) {
	if c.ext {
		return bson.MarshalExtJSON(v, false, false)
	}
	return bson.Marshal(v)
}
