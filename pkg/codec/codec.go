package codec

// Codec encodes REST callback replies and decodes request payloads.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

// ByName resolves a codec name as written in a manifest. "" means JSON.
func ByName(name string) (Codec, bool) {
	switch name {
	case "", "json":
		return JSON, true
	case "form":
		return Form, true
	default:
		return nil, false
	}
}
