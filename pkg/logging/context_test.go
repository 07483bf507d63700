package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetControlID(ctx))
	assert.Empty(t, GetServiceName(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithControlID(ctx, "MSG001")
	ctx = WithServiceName(ctx, "interop-service")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "MSG001", GetControlID(ctx))
	assert.Equal(t, "interop-service", GetServiceName(ctx))
}

func TestGetLogFields(t *testing.T) {
	assert.Empty(t, GetLogFields(context.Background()))

	ctx := WithControlID(WithRequestID(context.Background(), "req-2"), "MSG002")
	fields := GetLogFields(ctx)

	assert.Equal(t, []interface{}{
		"request_id", "req-2",
		"message_control_id", "MSG002",
	}, fields)
}
