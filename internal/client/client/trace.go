package client

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"sync"
)

// traceTransport dumps every request and response to w while delegating the
// round trip.
type traceTransport struct {
	delegate http.RoundTripper
	w        io.Writer
	mu       sync.Mutex
}

func newTraceTransport(delegate http.RoundTripper, w io.Writer) *traceTransport {
	if delegate == nil {
		delegate = http.DefaultTransport
	}
	return &traceTransport{delegate: delegate, w: w}
}

func (t *traceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if dump, err := httputil.DumpRequestOut(req, true); err == nil {
		t.print(dump)
	}
	resp, err := t.delegate.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if dump, dumpErr := httputil.DumpResponse(resp, true); dumpErr == nil {
		t.print(dump)
	}
	return resp, nil
}

func (t *traceTransport) print(dump []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, string(dump))
}
