// Package clog carries request-scoped log attributes in a context and
// provides slog handlers that emit them.
package clog

import (
	"context"
	"maps"
	"sync"
)

const (
	ErrorAttributeKey = "error.message"
	StackAttributeKey = "error.stack"
)

type bag struct {
	mu    sync.RWMutex
	attrs map[string]any
}

type bagKey struct{}

// ContextWithSlog returns a context that collects attributes added by
// AddAttribute. Attributes added to a context without a bag are dropped.
func ContextWithSlog(ctx context.Context) context.Context {
	return context.WithValue(ctx, bagKey{}, &bag{attrs: make(map[string]any)})
}

func bagFrom(ctx context.Context) *bag {
	b, _ := ctx.Value(bagKey{}).(*bag)
	return b
}

func AddAttribute(ctx context.Context, key string, value any) {
	AddAttributes(ctx, map[string]any{key: value})
}

// AddAttributes merges attrs into the context bag. Nested maps are merged
// key by key.
func AddAttributes(ctx context.Context, attrs map[string]any) {
	b := bagFrom(ctx)
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	merge(b.attrs, attrs)
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		if existing, ok := dst[k].(map[string]any); ok {
			merge(existing, sub)
			continue
		}
		dst[k] = sub
	}
}

// GetAttribute returns the attribute stored under key, or the zero value if
// it is missing or of another type.
func GetAttribute[T any](ctx context.Context, key string) T {
	var zero T
	b := bagFrom(ctx)
	if b == nil {
		return zero
	}
	b.mu.RLock()
	v, ok := b.attrs[key].(T)
	b.mu.RUnlock()
	if !ok {
		return zero
	}
	return v
}

// GetAttributes returns a copy of every attribute in the context.
func GetAttributes(ctx context.Context) map[string]any {
	b := bagFrom(ctx)
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.attrs)
}

func AddError(ctx context.Context, err error) {
	AddAttribute(ctx, ErrorAttributeKey, err)
}

func GetError(ctx context.Context) error {
	return GetAttribute[error](ctx, ErrorAttributeKey)
}

func AddStack(ctx context.Context, stack string) {
	AddAttribute(ctx, StackAttributeKey, stack)
}

func GetStack(ctx context.Context) string {
	return GetAttribute[string](ctx, StackAttributeKey)
}
