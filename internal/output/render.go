package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// Writer renders command results. In JSON mode every result is printed as
// indented JSON; otherwise the per-command text renderer runs.
type Writer struct {
	Out  io.Writer
	JSON bool
}

// Result prints v. text renders the human-readable form and may be nil when
// there is nothing beyond the JSON shape to show.
func (w *Writer) Result(v any, text func(io.Writer) error) error {
	if w.JSON || text == nil {
		enc := json.NewEncoder(w.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w.Out)
}

// Err prints err to out with an optional hint line.
func Err(out io.Writer, err error) {
	fmt.Fprintf(out, "error: %s\n", err)
	if hint := Hint(err); hint != "" {
		fmt.Fprintf(out, "hint: %s\n", hint)
	}
}
