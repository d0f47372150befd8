package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestInit_LevelFilters(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})

	Info().Msg("hidden")
	Warn().Str("email", "ann@example.com").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, "shown", gjson.Get(out, "message").String())
	assert.Equal(t, "ann@example.com", gjson.Get(out, "email").String())
	assert.Equal(t, "warn", gjson.Get(out, "level").String())
}

func TestCtx_RequestID(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	Ctx(ctx).Info().Msg("handled")
	assert.Equal(t, "req-42", gjson.Get(buf.String(), "request_id").String())

	buf.Reset()
	Ctx(context.Background()).Info().Msg("plain")
	assert.False(t, gjson.Get(buf.String(), "request_id").Exists())
}
