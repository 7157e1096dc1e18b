package logctx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestFromContextNil(t *testing.T) {
	// Must not panic and must return a usable logger.
	logger := FromContext(nil)
	logger.Debug().Msg("ok")
}

func TestFromContextWithoutLogger(t *testing.T) {
	logger := FromContext(context.Background())
	logger.Debug().Msg("ok")
}

func TestWithLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), logger)
	fromCtx := FromContext(ctx)
	fromCtx.Info().Msg("hello")

	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("log output = %q, want it to contain %q", buf.String(), "hello")
	}
}

func TestWithStr(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), logger)
	ctx = WithStr(ctx, "sample", "S1")
	fromCtx := FromContext(ctx)
	fromCtx.Info().Msg("tagged")

	out := buf.String()
	if !strings.Contains(out, `"sample":"S1"`) {
		t.Errorf("log output = %q, want sample field", out)
	}
}
