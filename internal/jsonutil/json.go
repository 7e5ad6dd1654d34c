// internal/jsonutil/json.go
package jsonutil

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

// API is the encoder configuration shared by every JSON writer.
var API = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodePretty writes v as indented JSON to w.
func EncodePretty(w io.Writer, v any) error {
	enc := API.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
