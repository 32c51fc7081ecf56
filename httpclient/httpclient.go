// Package httpclient provides the request dispatcher: a fluent builder that
// assembles an outbound request, an interception step that consults a mock
// registry before any network traffic happens, a response pipeline applied
// to the outcome, and traffic recording for fixture export.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mockwire/mockwire/mock"
	"github.com/mockwire/mockwire/o11y"
	"github.com/mockwire/mockwire/traffic"
)

// JSONType is the content type set by the JSON body constructors.
const JSONType = "application/json"

// ErrUnmatched is wrapped into the error returned when no mock handler
// matched and the client is offline. It is a warning: in a recording or
// test session unmatched requests are expected, not exceptional.
var ErrUnmatched = o11y.NewWarning("unmatched request")

// Config provides the client configuration. The registry, recorder and
// observers are plain fields on purpose: all dispatch state is owned by the
// Client value constructed from this config, there are no package-level
// singletons to reset between tests.
type Config struct {
	// Name is used to identify the client in spans.
	Name string
	// BaseURL is prefixed to every request URL when the real transport is
	// used. Mock matching and traffic recording always use the URL as given
	// to NewRequest, so fixtures recorded against one base replay against
	// another.
	BaseURL string
	// Timeout is the per-call timeout applied to real transport dispatches.
	// Zero means a 5 second default. Mocked responses resolve immediately
	// and are not subject to it.
	Timeout time.Duration
	// MaxConnectionsPerHost sets the connection pool size, default 10.
	MaxConnectionsPerHost int
	// Transport overrides the underlying round tripper, mainly for tests.
	Transport http.RoundTripper

	// DefaultHeaders are merged into every request; request headers win.
	DefaultHeaders map[string]string
	// DefaultPipeline applies to every request that does not set its own.
	DefaultPipeline *Pipeline

	// Registry is consulted before the real transport. Nil disables
	// interception.
	Registry *mock.Registry
	// Recorder observes completed and unmatched dispatches. Nil disables
	// recording.
	Recorder *traffic.Recorder

	// Offline makes unmatched requests fail with ErrUnmatched instead of
	// reaching the network, for pure-test environments.
	Offline bool

	// OnUnmatched, if set, is invoked for every request no handler
	// satisfied, after the miss has been recorded. It may respond with a
	// marker of its own; a decline continues to the real transport.
	OnUnmatched func(method, url, body string) mock.Result
	// OnRecord, if set, is offered each completed response before default
	// recording. Returning true suppresses the default placeholder write.
	OnRecord func(req RequestInfo, v interface{}) bool
}

// RequestInfo identifies a dispatched request to the OnRecord observer.
type RequestInfo struct {
	Method string
	URL    string
	Body   string
}

// Status is the resolved value of any non-200 response. No body decoding is
// attempted for these; the status code is all the caller gets.
type Status struct {
	Code int
}

// Client dispatches requests through mock interception with real-transport
// fallback. It is safe for concurrent use.
type Client struct {
	name            string
	baseURL         string
	httpClient      *http.Client
	timeout         time.Duration
	defaultHeaders  map[string]string
	defaultPipeline *Pipeline
	registry        *mock.Registry
	recorder        *traffic.Recorder
	offline         bool
	onUnmatched     func(method, url, body string) mock.Result
	onRecord        func(req RequestInfo, v interface{}) bool
}

// New creates a client configured with the config param.
func New(cfg Config) *Client {
	rt := cfg.Transport
	if rt == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.MaxConnectionsPerHost == 0 {
			cfg.MaxConnectionsPerHost = 10
		}
		t.MaxConnsPerHost = cfg.MaxConnectionsPerHost
		t.MaxIdleConnsPerHost = cfg.MaxConnectionsPerHost
		rt = t
	}
	return &Client{
		name:            cfg.Name,
		baseURL:         cfg.BaseURL,
		httpClient:      &http.Client{Transport: rt},
		timeout:         cfg.Timeout,
		defaultHeaders:  cfg.DefaultHeaders,
		defaultPipeline: cfg.DefaultPipeline,
		registry:        cfg.Registry,
		recorder:        cfg.Recorder,
		offline:         cfg.Offline,
		onUnmatched:     cfg.OnUnmatched,
		onRecord:        cfg.OnRecord,
	}
}

// CloseIdleConnections is only used for testing.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Call dispatches the request and returns the resolved value after the
// response pipeline has run.
//
// Resolution: a mocked or real response with status 200 has its body
// JSON-decoded into the returned value, except the literal recorder
// placeholder "OK" which resolves to nil. Any other status resolves to
// Status carrying just the code, with no body decoding.
//
// Cancellation via ctx applies only to the real transport. A request the
// mock registry satisfies resolves immediately and cannot be canceled
// mid-flight.
func (c *Client) Call(ctx context.Context, r *Request) (v interface{}, err error) {
	ctx, span := o11y.StartSpan(ctx, fmt.Sprintf("httpclient: %s %s %s", c.name, r.method, r.url))
	defer o11y.End(span, &err)
	span.AddField("http.client_name", c.name)
	span.AddField("http.method", r.method)
	span.AddField("http.url", r.url)

	var body []byte
	if r.body != nil {
		if r.body.err != nil {
			return nil, fmt.Errorf("call: %s %s: %w", r.method, r.url, r.body.err)
		}
		body = r.body.data
	}

	marker, matched := mock.Marker{}, false
	if c.registry != nil && !c.registry.Empty() {
		marker, matched = c.registry.Intercept(r.method, r.url, string(body))
	}
	span.AddField("mocked", matched)

	if !matched {
		if c.recorder != nil {
			c.recorder.RecordUnmocked(r.method, r.url, string(body))
		}
		if c.onUnmatched != nil {
			if m, ok := c.onUnmatched(r.method, r.url, string(body)).Response(); ok {
				marker, matched = m, true
			}
		}
	}

	responded := false
	switch {
	case matched:
		v, err = resolve(r.method, r.url, marker)
		responded = err == nil
	case c.offline:
		err = fmt.Errorf("%w: %s %s reached the transport with network dispatch disabled",
			ErrUnmatched, r.method, r.url)
	default:
		marker, err = c.fetch(ctx, r, body)
		if err == nil {
			span.AddField("http.status_code", marker.Status)
			v, err = resolve(r.method, r.url, marker)
			responded = err == nil
		}
	}

	v, err = runPipeline(ctx, r.jobs(c.defaultPipeline), v, err)

	if responded && err == nil && c.recorder != nil {
		info := RequestInfo{Method: r.method, URL: r.url, Body: string(body)}
		if c.onRecord == nil || !c.onRecord(info, v) {
			c.recorder.Record(info.Method, info.URL, info.Body)
		}
	}
	return v, err
}

// fetch performs the real transport dispatch and folds the response into a
// marker so mocked and real responses resolve identically.
func (c *Client) fetch(ctx context.Context, r *Request, body []byte) (mock.Marker, error) {
	timeout := c.timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if r.body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.url, reader)
	if err != nil {
		return mock.Marker{}, err
	}
	for k, val := range c.defaultHeaders {
		req.Header.Set(k, val)
	}
	for k, val := range r.headers {
		req.Header.Set(k, val)
	}
	if r.creds == CredsOmit {
		req.Header.Del("Authorization")
		req.Header.Del("Cookie")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		// url errors repeat the method and url which clutters logging
		e := &url.Error{}
		if errors.As(err, &e) {
			err = e.Err
		}
		return mock.Marker{}, fmt.Errorf("call: %s %s failed with: %w", r.method, r.url, err)
	}
	defer func() {
		// drain anything left in the body and close it, to ensure we can
		// take advantage of keep alive; best-efforts
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return mock.Marker{}, fmt.Errorf("call: %s %s reading response failed with: %w", r.method, r.url, err)
	}
	header := make(map[string]string, len(res.Header))
	for k := range res.Header {
		header[k] = res.Header.Get(k)
	}
	return mock.Marker{Status: res.StatusCode, Header: header, Body: string(payload)}, nil
}

// resolve turns a response marker into the dispatch outcome.
func resolve(method, reqURL string, m mock.Marker) (interface{}, error) {
	if m.Status != http.StatusOK {
		return Status{Code: m.Status}, nil
	}
	// The recorder placeholder means "a response occurred but no payload was
	// recorded". It must not be JSON-decoded as the string literal "OK".
	if m.Body == traffic.Placeholder {
		return nil, nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(m.Body), &v); err != nil {
		return nil, fmt.Errorf("call: %s %s returned an undecodable 200 body: %w", method, reqURL, err)
	}
	return v, nil
}
