package output

import (
	"encoding/json"
	"io"

	"github.com/blackwell-systems/permaudit/internal/analyzer"
)

// RenderJSON writes v as indented JSON.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RenderErrorJSON writes {"error":{"kind":...,"message":...}}. Errors outside
// the audit taxonomy are reported with kind "Error".
func RenderErrorJSON(w io.Writer, err error) error {
	kind := string(analyzer.KindOf(err))
	if kind == "" {
		kind = "Error"
	}
	return RenderJSON(w, map[string]errorBody{
		"error": {Kind: kind, Message: err.Error()},
	})
}
