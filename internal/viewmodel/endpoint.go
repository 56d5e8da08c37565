package viewmodel

import (
	"net/url"
	"strings"
)

// Params fills {name} placeholders of an endpoint path.
type Params map[string]string

// Endpoint describes one upstream read endpoint.
type Endpoint struct {
	Path  string     // e.g. "/topics/trader/{id}"
	Query url.Values // fixed query parameters, e.g. limit=500
}

// Request is an endpoint resolved against concrete params.
type Request struct {
	Path  string
	Query url.Values
}

// Resolve substitutes every {name} placeholder with the path-escaped param value.
// Missing params resolve to the empty string; no guard is applied.
func (e Endpoint) Resolve(p Params) Request {
	var b strings.Builder
	rest := e.Path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		name := rest[open+1 : open+end]
		b.WriteString(url.PathEscape(p[name]))
		rest = rest[open+end+1:]
	}

	var q url.Values
	if len(e.Query) > 0 {
		q = make(url.Values, len(e.Query))
		for k, vs := range e.Query {
			q[k] = append([]string(nil), vs...)
		}
	}
	return Request{Path: b.String(), Query: q}
}

// String renders path and encoded query, e.g. "/footprint/scatter?limit=500".
func (r Request) String() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}
