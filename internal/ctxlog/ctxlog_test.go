package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWith_AddsAttributes(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	ctx, logger := With(ctx, "document", "a.nif.yaml")
	FromContext(ctx).Info("one")
	logger.Info("two")

	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("document=a.nif.yaml")))
}

func TestFromContext_PanicsWithoutLogger(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { FromContext(context.Background()) })
}
