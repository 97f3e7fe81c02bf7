package dispatch

import "net/http"

// Response is a fully composed reply. Nothing reaches the client until a
// Response exists, so a failing handler never leaves a partial write.
type Response struct {
	Status      int
	ContentType string
	Header      http.Header
	Body        []byte
}

// Result is what a handler hands back to the chain: either a Response or
// a deferral to the next handler. The zero Result is a deferral.
type Result struct {
	resp    Response
	handled bool
}

// Handled wraps resp as a terminal result. A zero status becomes 200.
func Handled(resp Response) Result {
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	return Result{resp: resp, handled: true}
}

// Deferred lets the next matching handler try the request.
func Deferred() Result { return Result{} }

// Status is shorthand for a Handled result carrying only a status code and
// its standard text.
func Status(code int) Result {
	return Handled(Response{
		Status:      code,
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(http.StatusText(code)),
	})
}

func (r Result) IsHandled() bool  { return r.handled }
func (r Result) IsDeferred() bool { return !r.handled }

// Response returns the wrapped response; ok is false for a deferral.
func (r Result) Response() (Response, bool) { return r.resp, r.handled }

// Write sends resp in one go.
func (resp Response) Write(w http.ResponseWriter) {
	h := w.Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	if resp.ContentType != "" {
		h.Set("Content-Type", resp.ContentType)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}
