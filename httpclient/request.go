package httpclient

// CredentialsPolicy mirrors the fetch credentials modes. The default client
// transport honours Omit by stripping Authorization and Cookie headers
// before the request leaves the process; custom transports receive the
// policy and may interpret it further.
type CredentialsPolicy string

const (
	CredsSameOrigin CredentialsPolicy = "same-origin"
	CredsInclude    CredentialsPolicy = "include"
	CredsOmit       CredentialsPolicy = "omit"
)

// Request is an individual request the Client will dispatch. It is built up
// with chained setters and consumed exactly once by Call; calling a setter
// after dispatch has been triggered is a programmer error with undefined
// effect, it is not defended against. A Request must not be reused or
// resent.
type Request struct {
	url     string
	method  string
	headers map[string]string
	body    *Body
	creds   CredentialsPolicy

	pipeline   *Pipeline
	useDefault bool
}

// NewRequest starts building a request for url. The method defaults to GET
// (there is no GET setter) and the credentials policy to same-origin.
func NewRequest(url string) *Request {
	return &Request{
		url:     url,
		method:  "GET",
		headers: map[string]string{},
		creds:   CredsSameOrigin,
	}
}

// WithBody sets the request body. The body's content type — or the explicit
// contentType override, when given — is merged into the headers without
// disturbing any unrelated header already set.
func (r *Request) WithBody(b Body, contentType ...string) *Request {
	r.body = &b
	ct := b.ContentType()
	if len(contentType) > 0 {
		ct = contentType[0]
	}
	if ct != "" {
		r.headers["Content-Type"] = ct
	}
	return r
}

// WithJSONBody JSON-encodes v as the request body and sets the JSON content
// type.
func (r *Request) WithJSONBody(v interface{}) *Request {
	return r.WithBody(JSON(v))
}

// WithRawJSONBody sets an already-encoded JSON string as the request body,
// skipping encoding, and still sets the JSON content type.
func (r *Request) WithRawJSONBody(s string) *Request {
	return r.WithBody(RawJSON(s))
}

// Accept merges an Accept header.
func (r *Request) Accept(mimeType string) *Request {
	r.headers["Accept"] = mimeType
	return r
}

// WithHeader merges a single header.
func (r *Request) WithHeader(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Post sets the method to POST.
func (r *Request) Post() *Request {
	r.method = "POST"
	return r
}

// Put sets the method to PUT.
func (r *Request) Put() *Request {
	r.method = "PUT"
	return r
}

// Delete sets the method to DELETE.
func (r *Request) Delete() *Request {
	r.method = "DELETE"
	return r
}

// WithCreds sets the credentials policy.
func (r *Request) WithCreds(policy CredentialsPolicy) *Request {
	r.creds = policy
	return r
}

// Then appends a normal stage to this request's response pipeline. A request
// with any of its own stages does not inherit the client default pipeline.
func (r *Request) Then(s Stage) *Request {
	r.ensurePipeline().Then(s)
	return r
}

// Catch appends an error-handling stage to this request's response pipeline.
func (r *Request) Catch(s ErrStage) *Request {
	r.ensurePipeline().Catch(s)
	return r
}

// WithPipeline replaces the request's pipeline wholesale.
func (r *Request) WithPipeline(p *Pipeline) *Request {
	r.pipeline = p
	r.useDefault = false
	return r
}

// UseDefaultPipeline discards any stages added so far and resets the request
// to the client's configured default pipeline.
func (r *Request) UseDefaultPipeline() *Request {
	r.pipeline = nil
	r.useDefault = true
	return r
}

func (r *Request) ensurePipeline() *Pipeline {
	if r.pipeline == nil {
		r.pipeline = &Pipeline{}
		r.useDefault = false
	}
	return r.pipeline
}

// jobs resolves which pipeline applies: the request's own when it has one,
// otherwise the client default.
func (r *Request) jobs(def *Pipeline) []Job {
	if r.pipeline != nil && !r.useDefault {
		return r.pipeline.Build()
	}
	if def != nil {
		return def.Build()
	}
	return nil
}
