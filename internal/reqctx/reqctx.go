// Package reqctx carries a request id and start time through a context so
// logs and errors from one analysis can be correlated.
package reqctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type key int

const requestKey key = 0

type RequestContext struct {
	RequestID string
	StartTime time.Time
}

// WithRequestContext returns ctx carrying a fresh request id, unless ctx
// already has one.
func WithRequestContext(ctx context.Context) context.Context {
	if _, ok := ctx.Value(requestKey).(*RequestContext); ok {
		return ctx
	}
	return WithRequestID(ctx, uuid.NewString())
}

// WithRequestID returns ctx carrying the given request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestKey, &RequestContext{
		RequestID: id,
		StartTime: time.Now(),
	})
}

func GetRequestContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestKey).(*RequestContext); ok {
		return rc
	}
	return &RequestContext{
		RequestID: "unknown",
		StartTime: time.Now(),
	}
}

// ID returns the request id stored in ctx, or "unknown".
func ID(ctx context.Context) string {
	return GetRequestContext(ctx).RequestID
}

// RequestError wraps an error with the id of the request that produced it.
type RequestError struct {
	RequestID string
	Err       error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RequestID, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func NewRequestError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &RequestError{
		RequestID: ID(ctx),
		Err:       err,
	}
}
