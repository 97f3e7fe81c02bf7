package codec

import (
	"fmt"
	"net/http"

	"github.com/joeydtaylor/steeze-dispatch/pkg/params"
)

type form struct{}

// Form speaks application/x-www-form-urlencoded, limited to flat string maps.
var Form Codec = form{}

func (form) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case params.Map:
		return []byte(params.Encode(m)), nil
	case map[string]string:
		return []byte(params.Encode(params.Map(m))), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("form encode: unsupported type %T", v)
	}
}

func (form) Unmarshal(data []byte, v any) error {
	decoded := params.Decode(string(data), http.MethodPost)
	switch dst := v.(type) {
	case *params.Map:
		*dst = decoded
	case *map[string]string:
		*dst = decoded
	default:
		return fmt.Errorf("form decode: unsupported type %T", v)
	}
	return nil
}

func (form) ContentType() string { return "application/x-www-form-urlencoded" }
