package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmallet/valuecheck/internal/common"
	"github.com/pmallet/valuecheck/internal/models"
)

func newTestCache(t *testing.T) *ratioCache {
	t.Helper()

	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewRatioCache(store, common.NewSilentLogger()).(*ratioCache)
}

func testSnapshot(ticker string) models.RatioSnapshot {
	return models.RatioSnapshot{
		Ticker: ticker,
		Name:   "Test Corp",
		Ratios: models.RatioValues{models.RatioPE: 14.2, models.RatioPB: 1.8},
		AsOf:   time.Now().UTC(),
	}
}

func TestRatioCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	put, err := c.Put(ctx, "cap.pa", testSnapshot("CAP.PA"), models.SourceFMP, time.Hour, 250*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "CAP.PA", put.Ticker)
	assert.EqualValues(t, 250, put.FetchDurationMs)

	got, err := c.Get(ctx, "CAP.PA")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.SourceFMP, got.Source)
	assert.Equal(t, 0, got.ErrorCount)

	pe, ok := got.Data.Ratios.Get(models.RatioPE)
	require.True(t, ok)
	assert.InDelta(t, 14.2, pe, 1e-9)
}

func TestRatioCache_GetMissing(t *testing.T) {
	c := newTestCache(t)

	got, err := c.Get(context.Background(), "GHOST")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRatioCache_RecordError(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	// No entry: no-op, no error
	require.NoError(t, c.RecordError(ctx, "GHOST"))
	got, err := c.Get(ctx, "GHOST")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = c.Put(ctx, "AAPL", testSnapshot("AAPL"), models.SourceAlphaVantage, time.Hour, 0)
	require.NoError(t, err)

	require.NoError(t, c.RecordError(ctx, "AAPL"))
	require.NoError(t, c.RecordError(ctx, "AAPL"))

	got, err = c.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, got.ErrorCount)

	// Success resets the counter
	_, err = c.Put(ctx, "AAPL", testSnapshot("AAPL"), models.SourceFMP, time.Hour, 0)
	require.NoError(t, err)
	got, err = c.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 0, got.ErrorCount)
}

func TestRatioCache_InvalidateAndClear(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, err := c.Put(ctx, "AAPL", testSnapshot("AAPL"), models.SourceFMP, time.Hour, 0)
	require.NoError(t, err)
	_, err = c.Put(ctx, "MSFT", testSnapshot("MSFT"), models.SourceFMP, time.Hour, 0)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, "AAPL"))
	got, err := c.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Invalidating again is harmless
	require.NoError(t, c.Invalidate(ctx, "AAPL"))

	require.NoError(t, c.Clear(ctx))
	got, err = c.Get(ctx, "MSFT")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRatioCache_StaleEntrySurvives(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	fixed := time.Now()
	c.now = func() time.Time { return fixed }

	_, err := c.Put(ctx, "AAPL", testSnapshot("AAPL"), models.SourceFMP, time.Minute, 0)
	require.NoError(t, err)

	// Read well past expiry: the entry is stale but still there.
	got, err := c.Get(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Fresh(fixed.Add(2*time.Minute)))
	assert.True(t, got.Fresh(fixed.Add(30*time.Second)))
}
