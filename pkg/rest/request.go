package rest

import (
	"fmt"
	"io"
	"net/http"

	"github.com/joeydtaylor/steeze-dispatch/pkg/codec"
	"github.com/joeydtaylor/steeze-dispatch/pkg/dispatch"
	"github.com/joeydtaylor/steeze-dispatch/pkg/params"
)

// Request is what a Callback sees: the raw request plus its decoded
// parameters and the route's reply codec.
type Request struct {
	HTTP   *http.Request
	Params params.Map
	Codec  codec.Codec
}

// Reply encodes v with the route codec into a handled result.
func (r *Request) Reply(status int, v any) (dispatch.Result, error) {
	b, err := r.Codec.Marshal(v)
	if err != nil {
		return dispatch.Result{}, fmt.Errorf("encode reply: %w", err)
	}
	return dispatch.Handled(dispatch.Response{
		Status:      status,
		ContentType: r.Codec.ContentType(),
		Body:        b,
	}), nil
}

// Decode unmarshals the request body with the route codec.
func (r *Request) Decode(v any) error {
	if r.HTTP.Body == nil {
		return r.Codec.Unmarshal(nil, v)
	}
	b, err := io.ReadAll(r.HTTP.Body)
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	return r.Codec.Unmarshal(b, v)
}

// Text replies with a plain body, typed from the caller's Accept header.
func (r *Request) Text(status int, body string) dispatch.Result {
	return dispatch.Handled(dispatch.Response{
		Status:      status,
		ContentType: dispatch.NegotiateContentType(r.HTTP.Header.Get("Accept"), "text/plain; charset=utf-8"),
		Body:        []byte(body),
	})
}

// Decline passes the request to the next handler in the chain.
func (r *Request) Decline() (dispatch.Result, error) { return dispatch.Deferred(), nil }
