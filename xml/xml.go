// Package xml provides an XML codec for the aspect Printer.
//
// Output is a single element named after the value's type, or its XMLName
// field. Maps and other values encoding/xml rejects render as the Printer's
// placeholder.
package xml

import (
	"encoding/xml"

	"github.com/zoobzio/aspect"
)

type xmlCodec struct{}

// New returns an XML codec.
func New() aspect.Codec {
	return xmlCodec{}
}

// ContentType returns the MIME type for XML.
func (xmlCodec) ContentType() string {
	return "application/xml"
}

// Marshal encodes v as XML.
func (xmlCodec) Marshal(v any) ([]byte, error) {
	return xml.Marshal(v)
}
