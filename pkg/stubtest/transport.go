// Package stubtest wires real HTTP clients to an in-process simulator.
//
// Client code under test usually accepts an *http.Client. Handing it
// stubtest.Client(server.Handler()) routes every call the code makes through
// the simulation engine without opening a socket.
package stubtest

import (
	"net/http"
	"net/http/httptest"
)

// RoundTripper implements http.RoundTripper by serving each request
// in-process through the wrapped handler.
type RoundTripper struct {
	Handler http.Handler
}

// RoundTrip serves the request through the handler and returns the recorded
// response. It never returns a transport error; every outcome is an HTTP
// response, like the simulated services themselves.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// Server handlers are promised a non-nil Body; client requests without a
	// body carry nil.
	if req.Body == nil {
		req.Body = http.NoBody
	}

	rec := httptest.NewRecorder()
	rt.Handler.ServeHTTP(rec, req)

	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// Client returns an *http.Client whose transport dispatches to the handler
// in-process.
func Client(handler http.Handler) *http.Client {
	return &http.Client{Transport: &RoundTripper{Handler: handler}}
}
