package cli

import (
	"bytes"
	"encoding/json"
	"io"
)

// printJSON writes data as 2-space indented JSON. The document is encoded in
// full before anything reaches w, so a failed encode prints nothing
func printJSON(w io.Writer, data interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
