package mock

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/mockwire/mockwire/traffic"
)

// Registry maps HTTP method and URL (exact or pattern) to handlers. It is
// safe for concurrent use; handlers are invoked outside the registry lock so
// they may themselves register or clear mocks.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]*entries
}

// entries keeps the handlers for one method. order preserves registration
// order: the pattern scan must try keys in the order they were registered,
// and Go map iteration would not give that.
type entries struct {
	handlers map[string]Handler
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{methods: map[string]*entries{}}
}

// Register binds a handler to method and urlPattern, replacing any existing
// handler for the same key. A replaced key keeps its original position in
// the pattern scan order.
func (r *Registry) Register(method, urlPattern string, h Handler) {
	method = strings.ToUpper(method)
	r.mu.Lock()
	defer r.mu.Unlock()
	ent, ok := r.methods[method]
	if !ok {
		ent = &entries{handlers: map[string]Handler{}}
		r.methods[method] = ent
	}
	if _, exists := ent.handlers[urlPattern]; !exists {
		ent.order = append(ent.order, urlPattern)
	}
	ent.handlers[urlPattern] = h
}

// Import bulk-registers handlers from a traffic map, typically one produced
// by a recorder dump. GET and DELETE entries answer every call to their URL
// with status 200 and the stored marker string. POST and PUT entries answer
// only the request bodies present in the map, and decline anything else.
// Keys are registered in sorted order so the resulting pattern scan order is
// reproducible.
func (r *Registry) Import(m traffic.Map) {
	methods := make([]string, 0, len(m))
	for method := range m {
		methods = append(methods, method)
	}
	sort.Strings(methods)

	for _, method := range methods {
		urls := m[method]
		keys := make([]string, 0, len(urls))
		for u := range urls {
			keys = append(keys, u)
		}
		sort.Strings(keys)

		for _, u := range keys {
			switch v := urls[u].(type) {
			case map[string]string:
				bodies := make(map[string]string, len(v))
				for b, marker := range v {
					bodies[b] = marker
				}
				r.Register(method, u, func(req Request) Result {
					marker, ok := bodies[req.Body]
					if !ok {
						return Decline()
					}
					return Reply(http.StatusOK, marker)
				})
			case string:
				marker := v
				r.Register(method, u, func(Request) Result {
					return Reply(http.StatusOK, marker)
				})
			}
		}
	}
}

// Clear drops every registered handler. Traffic already recorded elsewhere
// is unaffected.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods = map[string]*entries{}
}

// Empty reports whether no handlers are registered at all. Dispatchers use
// it as a fast path to skip interception entirely.
func (r *Registry) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ent := range r.methods {
		if len(ent.handlers) > 0 {
			return false
		}
	}
	return true
}
