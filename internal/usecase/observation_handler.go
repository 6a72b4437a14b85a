package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"UpgradeRisk/internal/domain/models"
	domrepo "UpgradeRisk/internal/domain/repository"
	pkgkafka "UpgradeRisk/pkg/kafka"
	"UpgradeRisk/pkg/util"
)

// ObservationHandler consumes the ingestion topic and writes to the series store.
type ObservationHandler struct {
	topic   string
	series  domrepo.SeriesStore
	metrics domrepo.Metrics
	now     func() time.Time
}

func NewObservationHandler(topic string, series domrepo.SeriesStore, metrics domrepo.Metrics) *ObservationHandler {
	return &ObservationHandler{topic: topic, series: series, metrics: metrics, now: time.Now}
}

func (h *ObservationHandler) Topic() string { return h.topic }

// flexTime accepts RFC3339 strings and unix seconds or milliseconds, quoted or not.
type flexTime struct{ time.Time }

func (t *flexTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if uq, err := strconv.Unquote(s); err == nil {
		s = uq
	}
	if s == "" || s == "null" {
		return nil
	}
	parsed, ok := util.ParseTime(s)
	if !ok {
		return fmt.Errorf("invalid timestamp %q", s)
	}
	t.Time = parsed
	return nil
}

// incoming message schema:
//
//	{kind:"market", protocol, ts, priceUsd, tvlUsd, volume24h}
//	{kind:"post", protocol, ts, text, likes, shares, replies}
type observationMessage struct {
	Kind      string   `json:"kind"`
	Protocol  string   `json:"protocol"`
	TS        flexTime `json:"ts"`
	PriceUSD  float64  `json:"priceUsd"`
	TVLUSD    float64  `json:"tvlUsd"`
	Volume24h float64  `json:"volume24h"`
	Text      string   `json:"text"`
	Likes     int      `json:"likes"`
	Shares    int      `json:"shares"`
	Replies   int      `json:"replies"`
}

func (h *ObservationHandler) Handle(ctx context.Context, b []byte) error {
	var m observationMessage
	if err := json.Unmarshal(b, &m); err != nil {
		h.recordError("consumer_unmarshal")
		return fmt.Errorf("decode observation: %w", err)
	}
	if m.Protocol == "" {
		h.recordError("consumer_invalid")
		return fmt.Errorf("observation without protocol")
	}
	ts := m.TS.Time
	if ts.IsZero() {
		ts = h.now()
	}
	if h.metrics != nil {
		h.metrics.RecordLatency("ingest_e2e", h.now().Sub(ts).Seconds())
	}

	start := time.Now()
	var err error
	switch m.Kind {
	case "market":
		err = h.series.StoreObservations(ctx, []models.MarketObservation{{
			ProtocolID: util.NormalizeKey(m.Protocol),
			Timestamp:  ts,
			PriceUSD:   m.PriceUSD,
			TVLUSD:     m.TVLUSD,
			Volume24h:  m.Volume24h,
		}})
	case "post":
		err = h.series.StorePosts(ctx, []models.SocialPost{{
			Protocol:  util.NormalizeKey(m.Protocol),
			Timestamp: ts,
			Text:      m.Text,
			Likes:     m.Likes,
			Shares:    m.Shares,
			Replies:   m.Replies,
		}})
	default:
		h.recordError("consumer_invalid")
		return fmt.Errorf("unknown observation kind %q", m.Kind)
	}
	if h.metrics != nil {
		h.metrics.RecordLatency("series_insert", time.Since(start).Seconds())
	}
	if err != nil {
		h.recordError("consumer_store")
		return fmt.Errorf("store %s observation: %w", m.Kind, err)
	}
	return nil
}

func (h *ObservationHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

var _ pkgkafka.MessageHandler = (*ObservationHandler)(nil)
