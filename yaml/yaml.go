// Package yaml provides a YAML codec for the aspect Printer.
//
// The Printer folds the multi-line document onto one report line, joining
// lines with "; ":
//
//	[aspect] parameter #0: (main.User) id: "7"; email: a***@example.com
package yaml

import (
	"github.com/zoobzio/aspect"
	"gopkg.in/yaml.v3"
)

type yamlCodec struct{}

// New returns a YAML codec.
func New() aspect.Codec {
	return yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML.
func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}
