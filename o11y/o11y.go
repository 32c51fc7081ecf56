// Package o11y provides observability in the form of tracing spans that
// double as structured log events. A Provider is carried on the context;
// code that traces work does not need to know which backend is wired up.
package o11y

import "context"

type Provider interface {
	// AddGlobalField adds data which should apply to every span in the application
	//
	// eg. version, service
	AddGlobalField(key string, val interface{})

	// StartSpan begins a new span that'll represent a unit of work
	//
	// `name` should be a short human readable identifier of the work.
	// It can and should include some details to distinguish it from other
	// similar spans - like the URL or the mock pattern matched.
	//
	// The caller is responsible for calling End(), usually via defer:
	//
	//   ctx, span := o11y.StartSpan(ctx, "GET /help")
	//   defer span.End()
	StartSpan(ctx context.Context, name string) (context.Context, Span)

	// AddField is for adding useful information to the currently active span
	AddField(ctx context.Context, key string, val interface{})

	// AddFieldToTrace is for adding useful information to the root span.
	//
	// This will be propagated onto every child span.
	AddFieldToTrace(ctx context.Context, key string, val interface{})

	Close(ctx context.Context)
}

type Span interface {
	// AddField is for adding useful information to the span
	//
	// eg. result, http.status_code
	AddField(key string, val interface{})

	// End sets the duration of the span and tells the related provider that the span is complete
	// so it can do it's appropriate processing. The span should not be used after End is called.
	End()
}

type providerKey struct{}

// WithProvider returns a child context which contains the Provider. The Provider
// can be retrieved with FromContext.
func WithProvider(ctx context.Context, p Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// FromContext returns the provider stored in the context, or nil if none exists.
func FromContext(ctx context.Context) Provider {
	provider, ok := ctx.Value(providerKey{}).(Provider)
	if !ok {
		return nil
	}
	return provider
}

// StartSpan starts a span from a context that may contain a provider.
// If no provider exists a noop span is returned, so callers never need to
// nil check the span.
func StartSpan(ctx context.Context, name string) (context.Context, Span) {
	p := FromContext(ctx)
	if p == nil {
		return ctx, noopSpan{}
	}
	return p.StartSpan(ctx, name)
}

// AddField adds the field to the currently active span, if any.
func AddField(ctx context.Context, key string, val interface{}) {
	if p := FromContext(ctx); p != nil {
		p.AddField(ctx, key, val)
	}
}

// AddFieldToTrace adds the field to the root span, if any.
func AddFieldToTrace(ctx context.Context, key string, val interface{}) {
	if p := FromContext(ctx); p != nil {
		p.AddFieldToTrace(ctx, key, val)
	}
}

// Close closes the provider stored in the context, if any.
func Close(ctx context.Context) {
	if p := FromContext(ctx); p != nil {
		p.Close(ctx)
	}
}

// End ends span, setting an error field first if *err is non nil.
// It is designed to be deferred with a named error return:
//
//	func do(ctx context.Context) (err error) {
//		ctx, span := o11y.StartSpan(ctx, "do")
//		defer o11y.End(span, &err)
//		...
//	}
func End(span Span, err *error) {
	if err != nil && *err != nil {
		span.AddField("error", (*err).Error())
		span.AddField("warning", IsWarning(*err))
	}
	span.End()
}

type noopSpan struct{}

func (noopSpan) AddField(string, interface{}) {}
func (noopSpan) End()                         {}
