package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type jsonCodec struct{}

// JSON rejects unknown fields and trailing documents on decode, and does not
// HTML-escape on encode.
var JSON Codec = jsonCodec{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("json decode: empty body")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("json decode: trailing content after document")
	}
	return nil
}

func (jsonCodec) ContentType() string { return "application/json" }
