// Package sim contains the protocol-agnostic core of the API simulation
// engine: request and response descriptors, the error taxonomy, and the
// ordered pattern router shared by every service emulator.
//
// A service emulator implements Service. The hosting layer (pkg/engine or a
// test transport) converts real HTTP traffic into Requests, hands them to the
// service, and writes the resulting Response back out. Nothing in this package
// touches the network.
package sim

import "net/url"

// Request is the abstract descriptor of an inbound API call.
type Request struct {
	// Method is the HTTP method, e.g. "GET".
	Method string
	// Path is the absolute URL path, e.g. "/v0/meta/whoami".
	Path string
	// Query holds the parsed query string.
	Query url.Values
	// Body is the raw request body. May be empty.
	Body []byte
	// Authorization is the raw Authorization header value.
	Authorization string
	// Params holds path placeholders captured by the router,
	// keyed by placeholder name.
	Params map[string]string
}

// Response is the abstract descriptor of the simulated API's answer.
// Body is marshaled to JSON by the hosting layer.
type Response struct {
	Status int
	Body   any
}

// Service is a simulated third-party API: a request router plus the state it
// mutates. One Service instance owns one independent copy of that state.
type Service interface {
	// Name identifies the emulated service, e.g. "airtable".
	Name() string
	// Handle routes the request to an operation and classifies the result.
	// It never panics; every outcome is a Response.
	Handle(req *Request) *Response
}

// HandlerFunc is a single routed operation. It returns either a response body
// or a classified error, never both.
type HandlerFunc func(req *Request) (any, *Error)
