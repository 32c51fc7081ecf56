package mock

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"
)

// parseValue percent-decodes raw and then opportunistically parses it as
// JSON: numeric, boolean, object and array literals become typed values,
// anything that is not valid JSON stays a string. Decode failures fall back
// to the raw string, never error. Note ISO-8601 date strings are not valid
// JSON documents, so they intentionally stay strings.
func parseValue(raw string, unescape func(string) (string, error)) interface{} {
	s, err := unescape(raw)
	if err != nil {
		s = raw
	}
	if gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}
	return s
}

func queryValue(raw string) interface{} {
	return parseValue(raw, url.QueryUnescape)
}

func pathValue(raw string) interface{} {
	return parseValue(raw, url.PathUnescape)
}

// splitURL separates a URL into its path part and raw query string.
func splitURL(u string) (path, rawQuery string) {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i], u[i+1:]
	}
	return u, ""
}

// parseQuery splits a raw query string on '&' then '=' and parses each value
// with queryValue. Keys are percent-decoded; a key with no '=' gets the
// empty string.
func parseQuery(rawQuery string) map[string]interface{} {
	params := map[string]interface{}{}
	if rawQuery == "" {
		return params
	}
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		params[key] = queryValue(value)
	}
	return params
}

// isPattern reports whether the registered key contains a colon-prefixed
// path segment, which makes it eligible for the pattern scan.
func isPattern(key string) bool {
	path, _ := splitURL(key)
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, ":") {
			return true
		}
	}
	return false
}

// matchPattern structurally matches a registered pattern key against an
// incoming URL whose query has already been parsed into reqParams.
//
// The key must have the same number of slash-delimited path segments as the
// URL. If the key carries query parameters, each must equal the incoming
// request's parsed value exactly. Literal segments must match verbatim;
// colon segments capture the incoming segment into the returned params under
// the name with the colon stripped. The returned params also carry the
// incoming query parameters.
func matchPattern(key, reqURL string, reqParams map[string]interface{}) (map[string]interface{}, bool) {
	keyPath, keyQuery := splitURL(key)
	reqPath, _ := splitURL(reqURL)

	keySegs := strings.Split(keyPath, "/")
	reqSegs := strings.Split(reqPath, "/")
	if len(keySegs) != len(reqSegs) {
		return nil, false
	}

	if keyQuery != "" {
		for k, want := range parseQuery(keyQuery) {
			got, ok := reqParams[k]
			if !ok || !reflect.DeepEqual(got, want) {
				return nil, false
			}
		}
	}

	params := make(map[string]interface{}, len(reqParams)+2)
	for k, v := range reqParams {
		params[k] = v
	}
	for i, seg := range keySegs {
		if strings.HasPrefix(seg, ":") {
			params[seg[1:]] = pathValue(reqSegs[i])
			continue
		}
		if seg != reqSegs[i] {
			return nil, false
		}
	}
	return params, true
}
