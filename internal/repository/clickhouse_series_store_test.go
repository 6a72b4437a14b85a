package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UpgradeRisk/internal/domain/models"
)

func newCHMock(t *testing.T) (*CHSeriesStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCHSeriesStore(db, ""), mock
}

func TestCHSeriesStoreInit(t *testing.T) {
	store, mock := newCHMock(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE DATABASE IF NOT EXISTS upgraderisk")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS upgraderisk.market_observations")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS upgraderisk.social_posts")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Init(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCHSeriesStoreStoreObservationsSkipsInvalid(t *testing.T) {
	store, mock := newCHMock(t)
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO upgraderisk.market_observations (protocol, ts, price_usd, tvl_usd, volume_24h) VALUES (?, ?, ?, ?, ?)")).
		WithArgs("aave v2", sqlmock.AnyArg(), 91.5, 5.8e9, 2.1e8).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.StoreObservations(context.Background(), []models.MarketObservation{
		{ProtocolID: " Aave V2", Timestamp: ts, PriceUSD: 91.5, TVLUSD: 5.8e9, Volume24h: 2.1e8},
		{ProtocolID: "", Timestamp: ts},
		{ProtocolID: "gmx"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCHSeriesStoreRecentObservationsAscending(t *testing.T) {
	store, mock := newCHMock(t)
	t1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)

	rows := sqlmock.NewRows([]string{"protocol", "ts", "price_usd", "tvl_usd", "volume_24h"}).
		AddRow("gmx", t2, 41.0, 4.6e8, 3e7).
		AddRow("gmx", t1, 40.0, 4.5e8, 2e7)
	mock.ExpectQuery(regexp.QuoteMeta("FROM upgraderisk.market_observations FINAL")).
		WithArgs("gmx", 2).
		WillReturnRows(rows)

	got, err := store.RecentObservations(context.Background(), "GMX", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Timestamp.Equal(t1))
	assert.Equal(t, 40.0, got[0].PriceUSD)
	assert.Equal(t, 4.6e8, got[1].TVLUSD)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCHSeriesStorePostsSince(t *testing.T) {
	store, mock := newCHMock(t)
	since := time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC)
	ts := since.Add(48 * time.Hour)

	rows := sqlmock.NewRows([]string{"protocol", "ts", "text", "likes", "shares", "replies"}).
		AddRow("compound", ts, "bullish on the new rate model", int64(12), int64(3), int64(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM upgraderisk.social_posts")).
		WithArgs("compound", since, 100).
		WillReturnRows(rows)

	got, err := store.PostsSince(context.Background(), "Compound", since, 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 16, got[0].Sample().Engagement)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCHSeriesStoreWrapsQueryErrors(t *testing.T) {
	store, mock := newCHMock(t)
	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	_, err := store.RecentObservations(context.Background(), "gmx", 10)
	assert.ErrorIs(t, err, assert.AnError)
}
