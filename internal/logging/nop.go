package logging

import "context"

// NopLogger discards everything. Handy as a default in constructors and in
// tests that do not assert on log output.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (NopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (NopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (NopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (NopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l NopLogger) With(args ...any) Logger                          { return l }
