package sim

import "strings"

// Methods maps an HTTP method to the operation bound to it under one pattern.
type Methods map[string]HandlerFunc

// Route binds a URL pattern to its per-method operations.
//
// Pattern syntax: literal segments match exactly, "{name}" segments match any
// single segment and are captured into Request.Params under "name".
// A pattern only matches paths with the same segment count.
type Route struct {
	Pattern  string
	Handlers Methods
}

// Router is an ordered list of routes, evaluated top to bottom.
//
// The first route whose URL shape matches wins, regardless of method; the
// method then selects the operation within that route. A matched pattern with
// no operation for the method yields an unknown-endpoint error rather than
// falling through to a later route.
//
// Order is the precedence mechanism: routes whose patterns carry literal
// segments (e.g. "meta", "bases", "comments") must be registered ahead of
// routes that would swallow the same paths with placeholders, so that
// "/v0/{base}/{table}/{record}/comments" is never claimed by the shorter
// single-record pattern and "/v0/meta/bases" is never read as a record list
// for a base called "meta".
type Router struct {
	routes []Route
}

// NewRouter builds a router from an ordered route list.
func NewRouter(routes []Route) *Router {
	compiled := make([]Route, len(routes))
	copy(compiled, routes)
	return &Router{routes: compiled}
}

// Dispatch selects and runs the operation for the request. Unmatched paths
// and unmatched methods under a matched path both return a NOT_FOUND error.
func (r *Router) Dispatch(req *Request) (any, *Error) {
	for _, route := range r.routes {
		params, ok := matchPattern(route.Pattern, req.Path)
		if !ok {
			continue
		}
		handler, ok := route.Handlers[req.Method]
		if !ok {
			return nil, NotFound("unknown endpoint: %s %s", req.Method, req.Path)
		}
		routed := *req
		routed.Params = params
		return handler(&routed)
	}
	return nil, NotFound("unknown endpoint: %s %s", req.Method, req.Path)
}

// matchPattern checks whether path has the same shape as pattern and captures
// placeholder segments. Both must have the same segment count; literal
// segments must match exactly.
func matchPattern(pattern, path string) (map[string]string, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	var params map[string]string
	for i, part := range patternParts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			if pathParts[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[part[1:len(part)-1]] = pathParts[i]
			continue
		}
		if part != pathParts[i] {
			return nil, false
		}
	}

	return params, true
}
