// Package output renders events and aggregates as NDJSON, JSON documents or
// human-readable tables.
package output

import (
	"encoding/json"
	"io"

	"github.com/minelog/minelog/internal/domain"
)

// NDJSONWriter writes one JSON record per line
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewNDJSONWriter creates a new NDJSON writer
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep chat text unescaped and avoid extra allocations
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
	}
}

// WriteEvent writes one classified event
func (w *NDJSONWriter) WriteEvent(ev domain.Event) error {
	return w.encoder.Encode(ev)
}

// WriteValue writes any record as one line
func (w *NDJSONWriter) WriteValue(v any) error {
	return w.encoder.Encode(v)
}

// ErrorOutput is a machine-readable failure record
type ErrorOutput struct {
	Type    string `json:"type"` // Always "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes an error record
func (w *NDJSONWriter) WriteError(code, message string) error {
	return w.encoder.Encode(ErrorOutput{Type: "error", Code: code, Message: message})
}

// WriteDocument pretty-prints v as a single indented JSON document. Used for
// aggregate objects, whose consumers expect one document rather than a
// stream; map keys come out sorted, matching the cache blob layout.
func WriteDocument(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
