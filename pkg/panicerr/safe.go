// Package panicerr turns panics in goroutines into errors so a pool can
// report them instead of crashing the process.
package panicerr

import (
	"context"

	"github.com/sourcegraph/conc/panics"
)

func try(fn func() error) error {
	var (
		catcher panics.Catcher
		err     error
	)
	catcher.Try(func() {
		err = fn()
	})
	if err != nil {
		return err
	}
	return catcher.Recovered().AsError()
}

// Safe wraps fn so that a panic is returned as an error.
func Safe(fn func() error) func() error {
	return func() error {
		return try(fn)
	}
}

// SafeContext is Safe for functions that take a context, as run by a
// conc ContextPool.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return try(func() error { return fn(ctx) })
	}
}

// SafeResult is Safe for functions that also return a value, as run by a
// conc ResultErrorPool. The value is the zero value after a panic.
func SafeResult[T any](fn func() (T, error)) func() (T, error) {
	return func() (T, error) {
		var out T
		err := try(func() error {
			var err error
			out, err = fn()
			return err
		})
		return out, err
	}
}
