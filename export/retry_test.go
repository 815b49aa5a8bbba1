package export_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reggroux/loop-to-markdown/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	attempts := 0
	render := func(ctx context.Context, url string) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "<html>ok</html>", nil
	}

	var logged int
	logf := func(format string, args ...any) { logged++ }

	delays := []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	html, err := export.RenderWithRetry(context.Background(), "https://x", render, logf, delays)

	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", html)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, logged)
}

func TestRenderWithRetry_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("permanent")
	attempts := 0
	render := func(ctx context.Context, url string) (string, error) {
		attempts++
		return "", wantErr
	}

	delays := []time.Duration{time.Millisecond}
	_, err := export.RenderWithRetry(context.Background(), "https://x", render, nil, delays)

	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 2, attempts, "1 initial + 1 retry")
}

func TestRenderWithRetry_NoDelaysMeansSingleAttempt(t *testing.T) {
	t.Parallel()

	attempts := 0
	render := func(ctx context.Context, url string) (string, error) {
		attempts++
		return "", errors.New("fail")
	}

	_, err := export.RenderWithRetry(context.Background(), "https://x", render, nil, nil)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRenderWithRetry_ContextCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	render := func(ctx context.Context, url string) (string, error) {
		cancel()
		return "", errors.New("fail")
	}

	delays := []time.Duration{time.Minute}
	_, err := export.RenderWithRetry(ctx, "https://x", render, nil, delays)

	require.ErrorIs(t, err, context.Canceled)
}
