package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Run("round-trips through the context", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-123")
		assert.Equal(t, "req-123", RequestIDFrom(ctx))
	})

	t.Run("empty without a stored ID", func(t *testing.T) {
		assert.Empty(t, RequestIDFrom(context.Background()))
	})

	t.Run("later value shadows the earlier one", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "first")
		ctx = WithRequestID(ctx, "second")
		assert.Equal(t, "second", RequestIDFrom(ctx))
	})
}
