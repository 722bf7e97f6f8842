package dapp

import (
	"context"
	"fmt"
)

// Handler serves one or more RPC methods. Handle runs when the request
// arrives; for requests that need user approval it returns a pending
// outcome and Approve runs after the user consents.
type Handler interface {
	Methods() []string
	Handle(ctx context.Context, req *Request) Outcome
	Approve(ctx context.Context, req *Request, displayData interface{}) Outcome
}

// Registry routes methods to their handlers.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds a registry from the given handlers. Registering the
// same method twice is a configuration bug and fails construction.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler)}
	for _, h := range handlers {
		for _, m := range h.Methods() {
			if _, dup := r.handlers[m]; dup {
				return nil, fmt.Errorf("method %s registered twice", m)
			}
			r.handlers[m] = h
		}
	}
	return r, nil
}

// Get returns the handler for a method.
func (r *Registry) Get(method string) (Handler, bool) {
	h, ok := r.handlers[method]
	return h, ok
}

// Methods returns all registered method names.
func (r *Registry) Methods() []string {
	out := make([]string, 0, len(r.handlers))
	for m := range r.handlers {
		out = append(out, m)
	}
	return out
}
