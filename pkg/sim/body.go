package sim

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DecodeBody decodes the request body into dst.
//
// Bodies are only parsed for POST, PATCH and PUT; other methods leave dst
// untouched. An absent or empty body is treated as an empty object, never as
// an error. A present but unparsable body yields INVALID_REQUEST_BODY, which
// handlers must return before touching any state.
func DecodeBody(req *Request, dst any) *Error {
	switch req.Method {
	case http.MethodPost, http.MethodPatch, http.MethodPut:
	default:
		return nil
	}

	body := bytes.TrimSpace(req.Body)
	if len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return InvalidRequestBody("The request body could not be parsed as JSON: %v", err)
	}
	return nil
}

// RecordIDs collects record ids from the query string. Both of Airtable's
// forms are accepted and merged: the repeated array notation
// "records[]=a&records[]=b" and the comma-joined "records=a,b". Order of
// occurrence is preserved and duplicates are kept.
func RecordIDs(query url.Values) []string {
	var ids []string
	ids = append(ids, query["records[]"]...)
	for _, joined := range query["records"] {
		for _, part := range strings.Split(joined, ",") {
			if part != "" {
				ids = append(ids, part)
			}
		}
	}
	return ids
}

// QueryInt parses an integer query parameter. Absent or malformed values
// return def.
func QueryInt(query url.Values, key string, def int) int {
	raw := query.Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
