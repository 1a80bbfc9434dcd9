// Package notiontest provides an in-memory notion.Transport for tests.
package notiontest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Call is one recorded request.
type Call struct {
	Method string
	Path   string
	Body   json.RawMessage
}

// Decode unmarshals the request body into a generic map.
func (c Call) Decode() map[string]any {
	var out map[string]any
	_ = json.Unmarshal(c.Body, &out)
	return out
}

// HandlerFunc answers one call. The returned value is marshalled to JSON
// unless it already is a json.RawMessage or string.
type HandlerFunc func(call Call) (any, error)

type route struct {
	method string
	path   string
	fn     HandlerFunc
}

// Transport routes requests by method and path (query string ignored) to
// registered handlers and records every call.
type Transport struct {
	mu     sync.Mutex
	routes []route
	calls  []Call
}

// New returns an empty Transport.
func New() *Transport {
	return &Transport{}
}

// Handle registers fn for method and path. Later registrations win.
func (t *Transport) Handle(method, path string, fn HandlerFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = append([]route{{method: method, path: path, fn: fn}}, t.routes...)
}

// Respond registers a handler returning responses in order. The last
// response is repeated once the others are used up.
func (t *Transport) Respond(method, path string, responses ...any) {
	next := 0
	var mu sync.Mutex
	t.Handle(method, path, func(Call) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(responses) == 0 {
			return map[string]any{}, nil
		}
		r := responses[min(next, len(responses)-1)]
		next++
		return r, nil
	})
}

// Calls returns every recorded call in order.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// CallsTo returns the recorded calls matching method and path.
func (t *Transport) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range t.Calls() {
		if c.Method == method && stripQuery(c.Path) == path {
			out = append(out, c)
		}
	}
	return out
}

// Request implements notion.Transport.
func (t *Transport) Request(_ context.Context, method, path string, body any) (json.RawMessage, error) {
	call := Call{Method: method, Path: path}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		call.Body = data
	}

	t.mu.Lock()
	t.calls = append(t.calls, call)
	var fn HandlerFunc
	for _, r := range t.routes {
		if r.method == method && r.path == stripQuery(path) {
			fn = r.fn
			break
		}
	}
	t.mu.Unlock()

	if fn == nil {
		return nil, fmt.Errorf("notiontest: no handler for %s %s", method, path)
	}
	resp, err := fn(call)
	if err != nil {
		return nil, err
	}
	switch v := resp.(type) {
	case json.RawMessage:
		return v, nil
	case string:
		return json.RawMessage(v), nil
	default:
		return json.Marshal(v)
	}
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// ErrorObject returns an API error body.
func ErrorObject(status int, code, message string) map[string]any {
	return map[string]any{
		"object":  "error",
		"status":  status,
		"code":    code,
		"message": message,
	}
}

// List returns a listing envelope.
func List(results []any, nextCursor string) map[string]any {
	out := map[string]any{
		"object":   "list",
		"results":  results,
		"has_more": nextCursor != "",
	}
	if nextCursor != "" {
		out["next_cursor"] = nextCursor
	} else {
		out["next_cursor"] = nil
	}
	return out
}
