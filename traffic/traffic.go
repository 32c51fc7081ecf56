// Package traffic records which requests a client has dispatched, keyed so
// the record can be exported as a fixture and later re-imported as mock
// handlers. The recorder intentionally never stores response payloads, only
// a presence placeholder: its purpose is to snapshot which requests occur,
// not what they returned.
package traffic

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Placeholder marks an observed call in a Map without recording its payload.
const Placeholder = "OK"

// Map is the nested record of observed request activity:
//
//	method -> url -> Placeholder                  (get, delete)
//	method -> url -> body -> Placeholder          (post, put)
//
// Method keys are lowercase. POST and PUT nest one level deeper because
// distinct bodies are distinct observed calls. Marshalling a Map produces
// all key levels in sorted order, so two runs touching the same endpoints in
// different order serialize identically.
type Map map[string]map[string]interface{}

// bodyKeyed reports whether calls with this method are keyed by request body.
func bodyKeyed(method string) bool {
	switch strings.ToLower(method) {
	case "post", "put":
		return true
	}
	return false
}

// add appends one observed call. Append-only: existing entries are never
// replaced with anything other than the same placeholder.
func (m Map) add(method, url, body string) {
	method = strings.ToLower(method)
	urls, ok := m[method]
	if !ok {
		urls = map[string]interface{}{}
		m[method] = urls
	}
	if !bodyKeyed(method) {
		urls[url] = Placeholder
		return
	}
	bodies, ok := urls[url].(map[string]string)
	if !ok {
		bodies = map[string]string{}
		urls[url] = bodies
	}
	bodies[body] = Placeholder
}

// clone returns a deep copy, safe for the caller to hold after the
// recorder's lock is released.
func (m Map) clone() Map {
	out := make(Map, len(m))
	for method, urls := range m {
		cu := make(map[string]interface{}, len(urls))
		for url, v := range urls {
			if bodies, ok := v.(map[string]string); ok {
				cb := make(map[string]string, len(bodies))
				for b, p := range bodies {
					cb[b] = p
				}
				cu[url] = cb
				continue
			}
			cu[url] = v
		}
		out[method] = cu
	}
	return out
}

// dump serializes the map deterministically. encoding/json emits map keys in
// sorted order at every level, which also yields the fixed method order
// delete, get, post, put.
func (m Map) dump() (string, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("traffic: dump failed: %w", err)
	}
	return string(b) + "\n", nil
}

// Parse reads a Map from serialized fixture data, validating the nested
// shape so a malformed fixture fails at load time rather than at dispatch.
func Parse(data []byte) (Map, error) {
	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("traffic: parse failed: %w", err)
	}
	m := Map{}
	for method, urls := range raw {
		lm := strings.ToLower(method)
		mu := map[string]interface{}{}
		m[lm] = mu
		for url, v := range urls {
			if !bodyKeyed(lm) {
				s, ok := v.(string)
				if !ok {
					return nil, fmt.Errorf("traffic: %s %s: expected string marker, got %T", method, url, v)
				}
				mu[url] = s
				continue
			}
			bodies, ok := v.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("traffic: %s %s: expected body map, got %T", method, url, v)
			}
			mb := map[string]string{}
			mu[url] = mb
			for body, marker := range bodies {
				s, ok := marker.(string)
				if !ok {
					return nil, fmt.Errorf("traffic: %s %s: expected string marker for body %q, got %T",
						method, url, body, marker)
				}
				mb[body] = s
			}
		}
	}
	return m, nil
}

// Recorder holds the two traffic maps for a session: requests that completed
// with a response (mocked or real), and requests no mock handler matched.
// Both maps accumulate for the life of the recorder; clearing a mock
// registry does not touch them.
type Recorder struct {
	mu       sync.Mutex
	recorded Map
	unmocked Map
}

func NewRecorder() *Recorder {
	return &Recorder{
		recorded: Map{},
		unmocked: Map{},
	}
}

// Record appends a completed request to the recorded traffic map.
func (r *Recorder) Record(method, url, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded.add(method, url, body)
}

// RecordUnmocked appends a request that fell through the mock registry
// unmatched.
func (r *Recorder) RecordUnmocked(method, url, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unmocked.add(method, url, body)
}

// Recorded returns a snapshot of the recorded traffic map.
func (r *Recorder) Recorded() Map {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recorded.clone()
}

// Unmocked returns a snapshot of the unmocked traffic map.
func (r *Recorder) Unmocked() Map {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unmocked.clone()
}

// DumpRecorded serializes the recorded traffic map with all key levels
// sorted. Output is byte-identical across runs that observed the same calls
// in any order.
func (r *Recorder) DumpRecorded() (string, error) {
	return r.Recorded().dump()
}

// DumpUnmocked serializes the unmocked traffic map, sorted as DumpRecorded.
func (r *Recorder) DumpUnmocked() (string, error) {
	return r.Unmocked().dump()
}
