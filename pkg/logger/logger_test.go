package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFields(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, []any{"k", 1}, fields([]any{"k", 1}))
	assert.Equal(t, []any{"error", err}, fields([]any{err}))
	assert.Equal(t, []any{"k", 1, "error", err}, fields([]any{"k", 1, err}))
	assert.Empty(t, fields(nil))
}

func TestInitDoesNotPanic(t *testing.T) {
	Init("development")
	Info("hello", "k", "v")
	Error("odd args", errors.New("x"))

	Init("production")
	Debug("dropped at info level")
	Sync()
}
