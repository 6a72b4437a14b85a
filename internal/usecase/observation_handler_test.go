package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservationHandlerStoresMarketPoint(t *testing.T) {
	series := newFakeSeries()
	metrics := newFakeMetrics()
	h := NewObservationHandler("upgraderisk.observations", series, metrics)
	assert.Equal(t, "upgraderisk.observations", h.Topic())

	msg := `{"kind":"market","protocol":"  Uniswap V3 ","ts":"1717243200000","priceUsd":7.5,"tvlUsd":4200000000,"volume24h":120000000}`
	require.NoError(t, h.Handle(context.Background(), []byte(msg)))

	obs := series.obs["uniswap v3"]
	require.Len(t, obs, 1)
	assert.Equal(t, time.UnixMilli(1717243200000).Unix(), obs[0].Timestamp.Unix())
	assert.Equal(t, 7.5, obs[0].PriceUSD)
	assert.Equal(t, 4.2e9, obs[0].TVLUSD)
	assert.Equal(t, 1.2e8, obs[0].Volume24h)
}

func TestObservationHandlerStoresPost(t *testing.T) {
	series := newFakeSeries()
	h := NewObservationHandler("t", series, nil)

	msg := `{"kind":"post","protocol":"GMX","ts":"2024-06-01T10:00:00Z","text":"bullish","likes":3,"shares":2,"replies":1}`
	require.NoError(t, h.Handle(context.Background(), []byte(msg)))

	posts := series.posts["gmx"]
	require.Len(t, posts, 1)
	assert.Equal(t, 6, posts[0].Sample().Engagement)
	assert.True(t, posts[0].Timestamp.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)))
}

func TestObservationHandlerDefaultsTimestamp(t *testing.T) {
	series := newFakeSeries()
	h := NewObservationHandler("t", series, nil)
	h.now = func() time.Time { return testNow }

	require.NoError(t, h.Handle(context.Background(), []byte(`{"kind":"market","protocol":"gmx","ts":1717236000,"priceUsd":1}`)))
	require.NoError(t, h.Handle(context.Background(), []byte(`{"kind":"market","protocol":"gmx","priceUsd":2}`)))

	obs := series.obs["gmx"]
	require.Len(t, obs, 2)
	assert.Equal(t, int64(1717236000), obs[0].Timestamp.Unix())
	assert.Equal(t, testNow, obs[1].Timestamp)
}

func TestObservationHandlerRejects(t *testing.T) {
	series := newFakeSeries()
	metrics := newFakeMetrics()
	h := NewObservationHandler("t", series, metrics)
	ctx := context.Background()

	assert.Error(t, h.Handle(ctx, []byte(`{not json`)))
	assert.Error(t, h.Handle(ctx, []byte(`{"kind":"market"}`)))
	assert.Error(t, h.Handle(ctx, []byte(`{"kind":"trade","protocol":"gmx"}`)))
	assert.Error(t, h.Handle(ctx, []byte(`{"kind":"market","protocol":"gmx","ts":"yesterday"}`)))

	series.err = errBoom
	err := h.Handle(ctx, []byte(`{"kind":"post","protocol":"gmx","text":"x"}`))
	assert.ErrorIs(t, err, errBoom)

	assert.Equal(t, 2, metrics.errors["consumer_unmarshal"])
	assert.Equal(t, 2, metrics.errors["consumer_invalid"])
	assert.Equal(t, 1, metrics.errors["consumer_store"])
	assert.Empty(t, series.obs)
}
