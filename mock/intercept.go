package mock

import "strings"

// Intercept attempts to satisfy a dispatch from the registry. It returns the
// marker and true when a handler produced a response, or false when the
// request should fall through to unmatched handling.
//
// Lookup order:
//
//  1. exact key (method, full URL), then (method, URL without query string).
//     A registered exact handler may decline a specific call; the decline is
//     final, the pattern scan is not entered.
//  2. only when no exact key exists: scan pattern keys in registration
//     order. The first structurally eligible key is invoked and the scan
//     stops there even if that handler declines. A later, more specific
//     pattern is never tried; this linear first-match policy is a documented
//     limitation, not specificity ranking.
func (r *Registry) Intercept(method, rawURL, body string) (Marker, bool) {
	h, req, ok := r.lookup(method, rawURL, body)
	if !ok {
		return Marker{}, false
	}
	return h(req).Response()
}

func (r *Registry) lookup(method, rawURL, body string) (Handler, Request, bool) {
	method = strings.ToUpper(method)

	r.mu.RLock()
	defer r.mu.RUnlock()

	ent, ok := r.methods[method]
	if !ok {
		return nil, Request{}, false
	}

	base, rawQuery := splitURL(rawURL)
	req := Request{
		URL:    rawURL,
		Body:   body,
		Params: parseQuery(rawQuery),
	}

	if h, ok := ent.handlers[rawURL]; ok {
		return h, req, true
	}
	if base != rawURL {
		if h, ok := ent.handlers[base]; ok {
			return h, req, true
		}
	}

	for _, key := range ent.order {
		if !isPattern(key) {
			continue
		}
		params, ok := matchPattern(key, rawURL, req.Params)
		if !ok {
			continue
		}
		req.Params = params
		return ent.handlers[key], req, true
	}
	return nil, Request{}, false
}
