package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"UpgradeRisk/internal/domain/models"
	domrepo "UpgradeRisk/internal/domain/repository"
	applogger "UpgradeRisk/pkg/logger"
	"UpgradeRisk/pkg/util"
)

const insertChunkSize = 2000

// CHSeriesStore implements SeriesStore backed by ClickHouse.
type CHSeriesStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHSeriesStore(db *sql.DB, database string) *CHSeriesStore {
	if database == "" {
		database = "upgraderisk"
	}
	return &CHSeriesStore{db: db, database: database}
}

// SetLogger injects a structured logger.
func (s *CHSeriesStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSeriesStore) observationsTable() string { return s.database + ".market_observations" }
func (s *CHSeriesStore) postsTable() string        { return s.database + ".social_posts" }

// SchemaStatements returns the idempotent DDL for the series tables.
func (s *CHSeriesStore) SchemaStatements() []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            protocol LowCardinality(String),
            ts DateTime64(3, 'UTC'),
            price_usd Float64,
            tvl_usd Float64,
            volume_24h Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (protocol, ts)`, s.observationsTable()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            protocol LowCardinality(String),
            ts DateTime64(3, 'UTC'),
            text String,
            likes UInt32,
            shares UInt32,
            replies UInt32
        ) ENGINE = MergeTree
        ORDER BY (protocol, ts)
        TTL toDateTime(ts) + INTERVAL 90 DAY`, s.postsTable()),
	}
}

func (s *CHSeriesStore) Init(ctx context.Context) error {
	for _, stmt := range s.SchemaStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init series schema: %w", err)
		}
	}
	return nil
}

func (s *CHSeriesStore) StoreObservations(ctx context.Context, obs []models.MarketObservation) error {
	if len(obs) == 0 {
		return nil
	}
	start := time.Now()
	for lo := 0; lo < len(obs); lo += insertChunkSize {
		hi := min(lo+insertChunkSize, len(obs))

		values := make([]string, 0, hi-lo)
		args := make([]interface{}, 0, (hi-lo)*5)
		for _, o := range obs[lo:hi] {
			protocol := util.NormalizeKey(o.ProtocolID)
			if protocol == "" || o.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args, protocol, o.Timestamp.UTC(), o.PriceUSD, o.TVLUSD, o.Volume24h)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (protocol, ts, price_usd, tvl_usd, volume_24h) VALUES %s",
			s.observationsTable(), strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.logError("clickhouse store_observations error", err, applogger.Int("rows", len(values)))
			return fmt.Errorf("insert observations: %w", err)
		}
	}
	s.logDebug("clickhouse store_observations ok", applogger.Int("rows", len(obs)), applogger.Duration("duration_ms", time.Since(start)))
	return nil
}

func (s *CHSeriesStore) StorePosts(ctx context.Context, posts []models.SocialPost) error {
	if len(posts) == 0 {
		return nil
	}
	for lo := 0; lo < len(posts); lo += insertChunkSize {
		hi := min(lo+insertChunkSize, len(posts))

		values := make([]string, 0, hi-lo)
		args := make([]interface{}, 0, (hi-lo)*6)
		for _, p := range posts[lo:hi] {
			protocol := util.NormalizeKey(p.Protocol)
			if protocol == "" || p.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args, protocol, p.Timestamp.UTC(), p.Text,
				uint32(max(p.Likes, 0)), uint32(max(p.Shares, 0)), uint32(max(p.Replies, 0)))
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (protocol, ts, text, likes, shares, replies) VALUES %s",
			s.postsTable(), strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.logError("clickhouse store_posts error", err, applogger.Int("rows", len(values)))
			return fmt.Errorf("insert posts: %w", err)
		}
	}
	return nil
}

func (s *CHSeriesStore) RecentObservations(ctx context.Context, protocol string, n int) ([]models.MarketObservation, error) {
	start := time.Now()
	key := util.NormalizeKey(protocol)
	q := fmt.Sprintf(`
        SELECT protocol, ts, price_usd, tvl_usd, volume_24h
        FROM %s FINAL
        WHERE protocol = ?
        ORDER BY ts DESC
        LIMIT ?
    `, s.observationsTable())
	rows, err := s.db.QueryContext(ctx, q, key, n)
	if err != nil {
		s.logError("clickhouse recent_observations query error", err, applogger.String("protocol", key))
		return nil, fmt.Errorf("recent observations: %w", err)
	}
	defer rows.Close()

	out := make([]models.MarketObservation, 0, n)
	for rows.Next() {
		var o models.MarketObservation
		if err := rows.Scan(&o.ProtocolID, &o.Timestamp, &o.PriceUSD, &o.TVLUSD, &o.Volume24h); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	s.logDebug("clickhouse recent_observations ok",
		applogger.String("protocol", key),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHSeriesStore) PostsSince(ctx context.Context, protocol string, since time.Time, limit int) ([]models.SocialPost, error) {
	key := util.NormalizeKey(protocol)
	q := fmt.Sprintf(`
        SELECT protocol, ts, text, likes, shares, replies
        FROM %s
        WHERE protocol = ? AND ts >= ?
        ORDER BY ts DESC
        LIMIT ?
    `, s.postsTable())
	rows, err := s.db.QueryContext(ctx, q, key, since.UTC(), limit)
	if err != nil {
		s.logError("clickhouse posts_since query error", err, applogger.String("protocol", key))
		return nil, fmt.Errorf("posts since: %w", err)
	}
	defer rows.Close()

	var out []models.SocialPost
	for rows.Next() {
		var (
			p                      models.SocialPost
			likes, shares, replies uint32
		)
		if err := rows.Scan(&p.Protocol, &p.Timestamp, &p.Text, &likes, &shares, &replies); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Likes, p.Shares, p.Replies = int(likes), int(shares), int(replies)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *CHSeriesStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHSeriesStore) Close() error {
	return nil // Managed by pkg
}

func (s *CHSeriesStore) logError(msg string, err error, fields ...applogger.Field) {
	if s.l != nil {
		s.l.Error(msg, append(fields, applogger.Error(err))...)
	}
}

func (s *CHSeriesStore) logDebug(msg string, fields ...applogger.Field) {
	if s.l != nil {
		s.l.Debug(msg, fields...)
	}
}

var _ domrepo.SeriesStore = (*CHSeriesStore)(nil)
