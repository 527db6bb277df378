package testutil

import (
	"context"
	"testing"
	"time"
)

// pulling postgres:16-alpine on a cold CI runner
const containerStartTimeout = 2 * time.Minute

// ContextWithTimeout возвращает context с timeout, отменяемый в Cleanup теста.
func ContextWithTimeout(tb testing.TB, d time.Duration) context.Context {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	tb.Cleanup(cancel)
	return ctx
}
