package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestRegistryExecute(t *testing.T) {
	reg := NewRegistry()
	reg.Register("echo", func(ctx context.Context, query string) (any, error) {
		return map[string]string{"echo": query}, nil
	})
	reg.Register("boom", func(ctx context.Context, query string) (any, error) {
		return nil, errors.New("backend unreachable")
	})
	reg.Register("panics", func(ctx context.Context, query string) (any, error) {
		panic("nil map write")
	})

	tests := []struct {
		name     string
		tool     string
		query    string
		wantKey  string
		wantText string
	}{
		{name: "known tool", tool: "echo", query: "hello", wantKey: "echo", wantText: "hello"},
		{name: "unknown tool", tool: "get_weather", wantKey: "error", wantText: "tool not found"},
		{name: "failing tool", tool: "boom", wantKey: "error", wantText: "backend unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := reg.Execute(context.Background(), tt.tool, tt.query)

			var payload map[string]string
			if err := json.Unmarshal([]byte(raw), &payload); err != nil {
				t.Fatalf("result is not valid JSON: %q", raw)
			}
			if payload[tt.wantKey] != tt.wantText {
				t.Fatalf("payload = %v, want %s=%q", payload, tt.wantKey, tt.wantText)
			}
		})
	}
}

func TestRegistryExecuteRecoversPanic(t *testing.T) {
	reg := NewRegistry()
	reg.Register("panics", func(ctx context.Context, query string) (any, error) {
		panic("nil map write")
	})

	raw := reg.Execute(context.Background(), "panics", "x")

	var payload map[string]string
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("result is not valid JSON: %q", raw)
	}
	if payload["error"] == "" {
		t.Fatalf("panic not converted to error payload: %v", payload)
	}
}

func TestRegistryHas(t *testing.T) {
	reg := NewRegistry()
	if reg.Has("get_info") {
		t.Fatal("empty registry claims to have get_info")
	}
	reg.Register("get_info", func(ctx context.Context, query string) (any, error) { return nil, nil })
	if !reg.Has("get_info") {
		t.Fatal("registered tool not found")
	}
}
