package reqctx

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWithRequestContextKeepsExisting(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	ctx = WithRequestContext(ctx)

	if ID(ctx) != "abc" {
		t.Errorf("Expected existing id to be kept, got %s", ID(ctx))
	}
}

func TestWithRequestContextGeneratesID(t *testing.T) {
	ctx := WithRequestContext(context.Background())
	if id := ID(ctx); id == "" || id == "unknown" {
		t.Errorf("Expected generated id, got %q", id)
	}
	if ID(context.Background()) != "unknown" {
		t.Errorf("Expected unknown for bare context")
	}
}

func TestNewRequestError(t *testing.T) {
	base := errors.New("home page unreachable")
	err := NewRequestError(WithRequestID(context.Background(), "req-1"), base)

	if !errors.Is(err, base) {
		t.Errorf("Expected wrapped error")
	}
	if !strings.HasPrefix(err.Error(), "[req-1]") {
		t.Errorf("Expected request id prefix, got %q", err.Error())
	}
	if NewRequestError(context.Background(), nil) != nil {
		t.Errorf("Expected nil for nil error")
	}
}
