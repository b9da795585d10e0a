package aspect

import (
	"encoding/json"
	"strings"
)

// Codec renders composite values (structs, maps, slices) for the Printer.
// The yaml, msgpack, bson and xml subpackages provide alternatives to the
// default JSON codec.
type Codec interface {
	// ContentType returns the MIME type of the encoded form.
	ContentType() string

	// Marshal encodes v.
	Marshal(v any) ([]byte, error)
}

type jsonCodec struct{}

// JSON returns the default codec.
func JSON() Codec {
	return jsonCodec{}
}

func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// textual reports whether a codec's output is human-readable as is.
func textual(contentType string) bool {
	switch {
	case strings.HasPrefix(contentType, "text/"),
		strings.HasSuffix(contentType, "json"),
		strings.HasSuffix(contentType, "yaml"),
		strings.HasSuffix(contentType, "xml"):
		return true
	}
	return false
}
