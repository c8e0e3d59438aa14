// Package dialog models a question put to the user that is answered exactly
// once: one producer resolves, one consumer waits.
package dialog

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Request is a single-shot result channel. The first Resolve wins and later
// calls are ignored.
type Request[T any] struct {
	once   sync.Once
	result chan T
}

// New creates an unresolved request.
func New[T any]() *Request[T] {
	return &Request[T]{result: make(chan T, 1)}
}

// Resolve delivers the answer. It reports whether this call resolved the
// request.
func (r *Request[T]) Resolve(value T) bool {
	resolved := false
	r.once.Do(func() {
		r.result <- value
		close(r.result)
		resolved = true
	})
	return resolved
}

// Wait blocks until the request is resolved or ctx is done. Only the first
// Wait receives the value; the request has a single consumer.
func (r *Request[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	select {
	case value, ok := <-r.result:
		if !ok {
			return zero, fmt.Errorf("dialog result already consumed")
		}
		return value, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Choice is the closed set of answers to "which strategy should be kept?".
type Choice string

const (
	Keep   Choice = "keep"
	Switch Choice = "switch"
	Cancel Choice = "cancel"
)

// ParseChoice maps free-form user input onto a Choice. Anything unrecognised
// is treated as Cancel.
func ParseChoice(input string) Choice {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "k", "keep", "previous":
		return Keep
	case "s", "switch", "current", "adopt":
		return Switch
	default:
		return Cancel
	}
}
