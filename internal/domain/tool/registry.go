// Package tool provides name-indexed dispatch from model-requested tool
// calls to local functions.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
)

// Call is the parsed form of a JSON object the model emits in place of
// natural-language text.
type Call struct {
	Tool  string `json:"tool"`
	Query string `json:"query"`
}

// Func executes one tool invocation. The returned value must be
// JSON-serializable.
type Func func(ctx context.Context, query string) (any, error)

// Registry maps tool names to their implementations.
type Registry struct {
	tools map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Func)}
}

// Register adds or replaces a tool under the given name.
func (r *Registry) Register(name string, fn Func) {
	r.tools[name] = fn
}

// Has reports whether a tool with this name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Execute dispatches a call and returns the JSON-serialized result. A
// hallucinated tool name or a failing tool never surfaces as an error to
// the caller; both are folded into an error-shaped payload so the model
// can recover conversationally.
func (r *Registry) Execute(ctx context.Context, name, query string) string {
	fn, ok := r.tools[name]
	if !ok {
		return `{"error": "tool not found"}`
	}

	result, err := safeInvoke(ctx, fn, query)
	if err != nil {
		return errorPayload(err.Error())
	}

	data, err := json.Marshal(result)
	if err != nil {
		return errorPayload(fmt.Sprintf("serialize result: %v", err))
	}
	return string(data)
}

// safeInvoke shields the turn from a panicking tool implementation.
func safeInvoke(ctx context.Context, fn Func, query string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return fn(ctx, query)
}

func errorPayload(msg string) string {
	data, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return `{"error": "tool execution failed"}`
	}
	return string(data)
}
