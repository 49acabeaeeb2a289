package resource

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Mapped(t *testing.T) {
	c := NewController(Config{MappedBytesLimit: 100})

	require.NoError(t, c.AcquireMapped(50))
	require.NoError(t, c.AcquireMapped(40))
	assert.Equal(t, int64(90), c.MappedBytes())

	assert.ErrorIs(t, c.AcquireMapped(20), ErrMappedLimitExceeded)
	assert.Equal(t, int64(90), c.MappedBytes())

	c.ReleaseMapped(50)
	assert.Equal(t, int64(40), c.MappedBytes())
	require.NoError(t, c.AcquireMapped(20))
	assert.Equal(t, int64(60), c.MappedBytes())
	assert.Equal(t, int64(100), c.MappedLimit())
}

func TestController_UnlimitedMapped(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMapped(1000))
	assert.Equal(t, int64(1000), c.MappedBytes())
	c.ReleaseMapped(500)
	assert.Equal(t, int64(500), c.MappedBytes())
}

func TestController_Background(t *testing.T) {
	c := NewController(Config{MaxBackgroundWorkers: 2})

	require.NoError(t, c.AcquireBackground(context.Background()))
	require.NoError(t, c.AcquireBackground(context.Background()))
	assert.False(t, c.TryAcquireBackground())

	c.ReleaseBackground()
	assert.True(t, c.TryAcquireBackground())
}

func TestController_NilSafe(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMapped(10))
	c.ReleaseMapped(10)
	assert.Zero(t, c.MappedBytes())
	assert.Zero(t, c.MappedLimit())
	assert.NoError(t, c.AcquireBackground(context.Background()))
	assert.True(t, c.TryAcquireBackground())
	c.ReleaseBackground()
	assert.NoError(t, c.AcquireIO(context.Background(), 1<<20))
	assert.True(t, c.TryAcquireIO(1<<20))
}

func TestController_IOLargerThanBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	// 1.5x the burst: split into two waits instead of failing.
	require.NoError(t, c.AcquireIO(context.Background(), 3<<19))
}

func TestRateLimitedReaderWriter(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	ctx := context.Background()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, c)
	n, err := w.Write([]byte("index-0"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	r := NewRateLimitedReader(ctx, &buf, c)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "index-0", string(got))
}
