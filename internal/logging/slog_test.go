package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufLogger() (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	ctx := context.Background()
	log, buf := newBufLogger()

	log.Debug(ctx, "d")
	log.Info(ctx, "i")
	log.Warn(ctx, "w")
	log.Error(ctx, "e")

	out := buf.String()
	for _, want := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		require.Contains(t, out, want)
	}
}

func TestSlogLogger_WithAddsAttrs(t *testing.T) {
	ctx := context.Background()
	log, buf := newBufLogger()

	child := log.With("component", "vault")
	child.Info(ctx, "saved")

	require.Contains(t, buf.String(), "component=vault")
}

func TestNopLogger_DoesNothing(t *testing.T) {
	var l Logger = NewNopLogger()
	l.Info(context.Background(), "ignored")
	require.Equal(t, l, l.With("k", "v"))
}
