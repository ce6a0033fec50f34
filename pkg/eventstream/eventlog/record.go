package eventlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// Record is one persisted event.
type Record struct {
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
	ID        string         `json:"id,omitempty"`
}

// Encode serializes a record to its single-line form, including the trailing newline.
// A nil payload is written as an empty object.
func Encode(rec Record) ([]byte, error) {
	if rec.Type == "" {
		return nil, ErrEmptyType
	}
	if rec.Payload == nil {
		rec.Payload = map[string]any{}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a single encoded record. A trailing newline is allowed.
// Payload numbers decode as json.Number.
func Decode(line []byte) (Record, error) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	if len(bytes.TrimSpace(line)) == 0 {
		return Record{}, ErrBlankRecord
	}

	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	if !atEOF(dec) {
		return Record{}, errors.New("decode record: trailing data after object")
	}
	if rec.Type == "" {
		return Record{}, ErrEmptyType
	}
	if rec.Payload == nil {
		rec.Payload = map[string]any{}
	}
	return rec, nil
}

// Canonical returns rec as it reads back from any backend: payload numbers
// become json.Number and nested values become plain maps and slices.
func Canonical(rec Record) (Record, error) {
	line, err := Encode(rec)
	if err != nil {
		return Record{}, err
	}
	return Decode(line)
}

// atEOF reports whether nothing but whitespace follows the decoded value.
func atEOF(dec *json.Decoder) bool {
	_, err := dec.Token()
	return err == io.EOF
}

// decodePayload parses a payload column stored on its own.
func decodePayload(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if !atEOF(dec) {
		return nil, errors.New("decode payload: trailing data after object")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

// stamp fills in the persistence timestamp when the caller left it unset.
func stamp(rec Record) Record {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	return rec
}
