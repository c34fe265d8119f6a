package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DecodeError reports a deserialization failure at a specific field path.
type DecodeError struct {
	Field   string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// EncodeDocument serializes a document to JSON. Optional provenance is
// omitted entirely when absent (never a null placeholder), and HTML
// escaping is disabled so predicates like "a < b" round-trip verbatim.
func EncodeDocument(d *Document) ([]byte, error) {
	return EncodeJSON(d)
}

// DecodeDocument parses a document from JSON, rejecting structurally
// impossible states (unknown enum tags, out-of-range confidence,
// evidence records without an id). Set-by-identity lists are normalized
// so duplicate keys collapse to one entry, first seen wins.
func DecodeDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, &DecodeError{Message: fmt.Sprintf("parse document: %v", err)}
	}
	if errs := d.Validate(); len(errs) > 0 {
		return nil, decodeErrors(errs)
	}
	return d.Normalize(), nil
}

// decodeErrors converts validation errors to a single joined decode
// error so every failing path is reported, not just the first.
func decodeErrors(errs []ValidationError) error {
	joined := make([]error, len(errs))
	for i, ve := range errs {
		joined[i] = &DecodeError{Field: ve.Field, Message: ve.Message}
	}
	return errors.Join(joined...)
}

// EncodeJSON marshals v with HTML escaping disabled and no trailing
// newline. Shared by every codec that serializes IR-bearing structures.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}
