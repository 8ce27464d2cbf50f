package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OutputMode is the encoding of everything a command prints.
type OutputMode string

const (
	// OutputHuman is free-form, optionally colored text for terminals.
	OutputHuman OutputMode = "human"
	// OutputJSON is the pretty-printed response envelope.
	OutputJSON OutputMode = "json"
	// OutputCSV is a header line followed by one line per record.
	OutputCSV OutputMode = "csv"
)

// ValidOutputModes lists the accepted values of --output.
var ValidOutputModes = []OutputMode{OutputHuman, OutputJSON, OutputCSV}

// ParseOutputMode validates a --output value.
func ParseOutputMode(s string) (OutputMode, error) {
	for _, m := range ValidOutputModes {
		if string(m) == strings.ToLower(s) {
			return m, nil
		}
	}
	return "", ValidationError("unsupported output format %q: valid formats are human, json, csv", s)
}

// Field is one named value of a Record.
type Field struct {
	Key   string
	Value any
}

// F creates a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Record is an ordered set of fields. The order decides CSV column order and
// the order of attributes in human output; JSON object key order is not
// significant but follows it as well.
type Record []Field

// Keys returns the field names in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value of key.
func (r Record) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the record as a JSON object preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalNoEscape(f.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %q: %w", f.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Envelope is the machine-readable shape of messages and errors. The message
// is always present, even when empty.
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	NextSteps []Hint `json:"nextSteps,omitempty"`
}

// dataEnvelope is the shape of raw values, tables and attributes, which
// carry no message.
type dataEnvelope struct {
	Code int `json:"code"`
	Data any `json:"data"`
}

// encodeJSON pretty-prints v with two-space indentation.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", InternalError(fmt.Errorf("failed to encode JSON output: %w", err))
	}
	return buf.String(), nil
}
