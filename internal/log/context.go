package log

import (
	"context"
)

type requestId struct{}

func RequestIDFromContext(c context.Context) string {
	if v, ok := c.Value(requestId{}).(string); ok {
		return v
	}
	return ""
}

func AttachRequestIDToContext(c context.Context, id string) context.Context {
	return context.WithValue(c, requestId{}, id)
}
