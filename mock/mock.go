// Package mock holds a registry of method+URL handlers consulted before any
// request reaches the real transport. URLs register either exactly or as
// patterns with colon-prefixed segments (`/api/pets/:id`) whose values are
// captured into the handler's params.
package mock

// Marker is the (status, headers, body) triple a handler returns to simulate
// a network response.
type Marker struct {
	Status int
	Header map[string]string
	Body   string
}

// Request is the context a handler is invoked with.
type Request struct {
	// URL is the full URL being dispatched, including any query string.
	URL string
	// Body is the exact request body string, empty when the request has none.
	Body string
	// Params holds query parameters and pattern captures. Values are
	// percent-decoded and then opportunistically JSON-parsed, so numeric and
	// object literals arrive typed while everything else stays a string.
	Params map[string]interface{}
}

// Result is what a handler returns: either a response marker, or a decline
// which sends the dispatch down the unmatched path. A declining handler
// consumes its match; the search does not continue elsewhere.
type Result struct {
	handled bool
	marker  Marker
}

// Respond wraps a marker into a handled Result.
func Respond(m Marker) Result {
	return Result{handled: true, marker: m}
}

// Reply is shorthand for Respond with a status and body.
func Reply(status int, body string) Result {
	return Respond(Marker{Status: status, Body: body})
}

// Decline signals the handler is not handling this call.
func Decline() Result {
	return Result{}
}

// Response returns the marker and whether the handler produced one.
func (r Result) Response() (Marker, bool) {
	return r.marker, r.handled
}

// Handler inspects a request and either produces a response marker or
// declines.
type Handler func(req Request) Result
