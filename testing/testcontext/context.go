package testcontext

import (
	"context"

	"github.com/mockwire/mockwire/log"
	"github.com/mockwire/mockwire/o11y"
)

// ctx is a global singleton, initialised at package time to avoid racy
// initiation inside individual tests.
var ctx = newContext()

// Background returns a context for use in tests which contains a working o11y, so you get logs.
func Background() context.Context {
	return ctx
}

func newContext() context.Context {
	return o11y.WithProvider(context.Background(), log.New())
}
