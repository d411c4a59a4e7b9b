package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	local := New("local")
	assert.True(t, local.Enabled(context.Background(), slog.LevelDebug))
	_, isText := local.Handler().(*slog.TextHandler)
	assert.True(t, isText)

	prod := New("prod")
	assert.False(t, prod.Enabled(context.Background(), slog.LevelDebug))
	_, isJSON := prod.Handler().(*slog.JSONHandler)
	assert.True(t, isJSON)
}
