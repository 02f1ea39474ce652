package cache

import (
	"context"
	"testing"
	"time"

	"github.com/segyhp/loan-ledger/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func TestOpenRedis_Success(t *testing.T) {
	s := miniredis.RunT(t)

	c, err := OpenRedis(s.Addr(), "", 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, 2, c.Options().DB)
	require.NoError(t, c.Set(context.Background(), "k", "v", 0).Err())
}

func TestOpenRedis_Failure(t *testing.T) {
	_, err := OpenRedis("127.0.0.1:1", "", 0)
	assert.Error(t, err)
}

func TestStatusCache_RoundTrip(t *testing.T) {
	s := miniredis.RunT(t)
	rdb, err := OpenRedis(s.Addr(), "", 0)
	require.NoError(t, err)
	c := NewStatusCache(rdb, 5*time.Second)
	ctx := context.Background()

	_, found, err := c.Get(ctx, 1, today)
	require.NoError(t, err)
	assert.False(t, found)

	req := &domain.DailyPaymentRequest{ID: 3, LoanID: 1, PaymentDate: today, CorrelationID: "TXN-1-x", Status: domain.DailyStatusPending}
	require.NoError(t, c.Set(ctx, 1, today, 0, req))

	got, found, err := c.Get(ctx, 1, today)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "TXN-1-x", got.CorrelationID)
	assert.True(t, got.PaymentDate.Equal(today))

	require.NoError(t, c.Invalidate(ctx, 1, today))
	_, found, err = c.Get(ctx, 1, today)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStatusCache_CachesAbsence(t *testing.T) {
	s := miniredis.RunT(t)
	rdb, err := OpenRedis(s.Addr(), "", 0)
	require.NoError(t, err)
	c := NewStatusCache(rdb, 5*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, today, 0, nil))

	got, found, err := c.Get(ctx, 1, today)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, got)
}

func TestStatusCache_Expires(t *testing.T) {
	s := miniredis.RunT(t)
	rdb, err := OpenRedis(s.Addr(), "", 0)
	require.NoError(t, err)
	c := NewStatusCache(rdb, 5*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, today, 0, &domain.DailyPaymentRequest{ID: 1}))
	s.FastForward(6 * time.Second)

	_, found, err := c.Get(ctx, 1, today)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStatusCache_ZeroTTLDisablesWrites(t *testing.T) {
	s := miniredis.RunT(t)
	rdb, err := OpenRedis(s.Addr(), "", 0)
	require.NoError(t, err)
	c := NewStatusCache(rdb, 0)

	require.NoError(t, c.Set(context.Background(), 1, today, 0, &domain.DailyPaymentRequest{ID: 1}))
	assert.Empty(t, s.Keys())
}

func TestStatusCache_InvalidateBetweenReadAndFillDropsFill(t *testing.T) {
	s := miniredis.RunT(t)
	rdb, err := OpenRedis(s.Addr(), "", 0)
	require.NoError(t, err)
	c := NewStatusCache(rdb, 5*time.Second)
	ctx := context.Background()

	gen, err := c.Generation(ctx, 1, today)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	// A writer commits and invalidates while the reader holds a pending row.
	require.NoError(t, c.Invalidate(ctx, 1, today))
	stale := &domain.DailyPaymentRequest{ID: 3, LoanID: 1, Status: domain.DailyStatusPending}
	require.NoError(t, c.Set(ctx, 1, today, gen, stale))

	_, found, err := c.Get(ctx, 1, today)
	require.NoError(t, err)
	assert.False(t, found, "a fill older than the last invalidation must be dropped")

	// A reader that starts after the invalidation fills normally.
	gen, err = c.Generation(ctx, 1, today)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	fresh := &domain.DailyPaymentRequest{ID: 3, LoanID: 1, Status: domain.DailyStatusConfirmed}
	require.NoError(t, c.Set(ctx, 1, today, gen, fresh))

	got, found, err := c.Get(ctx, 1, today)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.DailyStatusConfirmed, got.Status)
	assert.True(t, s.TTL(generationKey(1, today)) > 0)
}

func TestStatusCache_GenerationsAreScopedPerLoanAndDay(t *testing.T) {
	s := miniredis.RunT(t)
	rdb, err := OpenRedis(s.Addr(), "", 0)
	require.NoError(t, err)
	c := NewStatusCache(rdb, 5*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Invalidate(ctx, 1, today))
	require.NoError(t, c.Invalidate(ctx, 1, today))

	gen, err := c.Generation(ctx, 1, today)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)

	other, err := c.Generation(ctx, 2, today)
	require.NoError(t, err)
	assert.Equal(t, int64(0), other)

	tomorrow, err := c.Generation(ctx, 1, today.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(0), tomorrow)
}
