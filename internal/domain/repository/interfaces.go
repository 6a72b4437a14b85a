package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"UpgradeRisk/internal/domain/models"
)

// ErrNotFound is returned by stores when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// CatalogStore holds networks, protocols, upgrades and the assessments made for them.
type CatalogStore interface {
	ListNetworks(ctx context.Context) ([]models.Network, error)
	ListProtocols(ctx context.Context, network string, limit int) ([]models.Protocol, error)
	GetProtocolByAddress(ctx context.Context, address string) (models.Protocol, error)
	ListUpgrades(ctx context.Context, protocol string, limit int) ([]models.ProtocolUpgrade, error)
	GetUpgrade(ctx context.Context, id uuid.UUID) (models.ProtocolUpgrade, error)
	SaveAssessment(ctx context.Context, rec models.RiskAssessmentRecord) error

	UpsertNetwork(ctx context.Context, n *models.Network) error
	UpsertProtocol(ctx context.Context, p *models.Protocol) error
	UpsertUpgrade(ctx context.Context, u *models.ProtocolUpgrade) error

	Health(ctx context.Context) error // ping
	Close() error
}

// SeriesStore holds market observations and social posts keyed by protocol name.
type SeriesStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreObservations(ctx context.Context, obs []models.MarketObservation) error
	StorePosts(ctx context.Context, posts []models.SocialPost) error
	// RecentObservations returns at most n points, oldest first.
	RecentObservations(ctx context.Context, protocol string, n int) ([]models.MarketObservation, error)
	PostsSince(ctx context.Context, protocol string, since time.Time, limit int) ([]models.SocialPost, error)
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher fans assessment events out to downstream consumers.
type EventPublisher interface {
	PublishAssessment(ctx context.Context, ev models.AssessmentEvent) error
	Close() error
}

// Broadcaster pushes events to live dashboard subscribers.
type Broadcaster interface {
	Broadcast(v any)
}

type Metrics interface {
	RecordScore(kind string, value float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
