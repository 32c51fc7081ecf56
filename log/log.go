// Package log provides an o11y.Provider that emits each completed span as an
// indented JSON document, intended for local development and tests.
package log

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mockwire/mockwire/o11y"
)

type logKey struct{}

type Client struct {
	mu     sync.Mutex
	out    io.Writer
	global map[string]interface{}
}

// New returns a provider writing spans to stdout.
func New() *Client {
	return NewWriter(os.Stdout)
}

// NewWriter returns a provider writing spans to w.
func NewWriter(w io.Writer) *Client {
	return &Client{
		out:    w,
		global: map[string]interface{}{},
	}
}

type trace struct {
	id     uuid.UUID
	fields map[string]interface{}
}

type span struct {
	client   *Client
	name     string
	trace    *trace
	id       uuid.UUID
	parentID uuid.UUID
	started  time.Time
	fields   map[string]interface{}
}

func (s *span) AddField(key string, val interface{}) {
	s.fields[key] = val
}

func (s *span) End() {
	s.send()
}

func (s *span) send() {
	st := struct {
		Name     string                 `json:"name"`
		ID       uuid.UUID              `json:"id"`
		TraceID  uuid.UUID              `json:"trace_id"`
		ParentID uuid.UUID              `json:"parent_id"`
		Started  time.Time              `json:"started"`
		Duration time.Duration          `json:"duration"`
		Fields   map[string]interface{} `json:"fields"`
	}{
		Name:     s.name,
		ID:       s.id,
		TraceID:  s.trace.id,
		ParentID: s.parentID,
		Started:  s.started,
		Fields:   map[string]interface{}{},
		Duration: time.Since(s.started),
	}
	s.client.mu.Lock()
	defer s.client.mu.Unlock()
	for k, v := range s.client.global {
		st.Fields[k] = v
	}
	for k, v := range s.trace.fields {
		st.Fields[k] = v
	}
	for k, v := range s.fields {
		st.Fields[k] = v
	}
	e := json.NewEncoder(s.client.out)
	e.SetIndent("", "  ")
	_ = e.Encode(st) // who cares if we fail
}

func (c *Client) AddGlobalField(key string, val interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.global[key] = val
}

func (c *Client) StartSpan(ctx context.Context, name string) (context.Context, o11y.Span) {
	parent := c.getSpan(ctx)
	span := &span{
		client:  c,
		name:    name,
		id:      uuid.New(),
		started: time.Now(),
		fields:  map[string]interface{}{},
	}
	if parent == nil {
		span.trace = &trace{
			id:     uuid.New(),
			fields: map[string]interface{}{},
		}
	} else {
		span.parentID = parent.id
		span.trace = parent.trace
	}
	return context.WithValue(ctx, logKey{}, span), span
}

func (c *Client) AddField(ctx context.Context, key string, val interface{}) {
	span := c.getSpan(ctx)
	if span == nil {
		return
	}
	span.fields[key] = val
}

func (c *Client) AddFieldToTrace(ctx context.Context, key string, val interface{}) {
	span := c.getSpan(ctx)
	if span == nil {
		return
	}
	span.trace.fields[key] = val
}

func (c *Client) Close(_ context.Context) {}

func (c *Client) getSpan(ctx context.Context) *span {
	if span, ok := ctx.Value(logKey{}).(*span); ok {
		return span
	}
	return nil
}

var _ o11y.Provider = (*Client)(nil)
