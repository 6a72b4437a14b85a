package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"UpgradeRisk/internal/domain/models"
	domrepo "UpgradeRisk/internal/domain/repository"
)

type fakeCatalog struct {
	mu          sync.Mutex
	networks    []models.Network
	protocols   []models.Protocol
	upgrades    []models.ProtocolUpgrade
	assessments []models.RiskAssessmentRecord
	saveErr     error
}

func (f *fakeCatalog) ListNetworks(context.Context) ([]models.Network, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Network(nil), f.networks...), nil
}

func (f *fakeCatalog) ListProtocols(_ context.Context, network string, limit int) ([]models.Protocol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Protocol
	for _, p := range f.protocols {
		if network == "" || strings.EqualFold(p.NetworkName, network) {
			out = append(out, p)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetProtocolByAddress(_ context.Context, address string) (models.Protocol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.protocols {
		if strings.EqualFold(p.ContractAddress, address) {
			return p, nil
		}
	}
	return models.Protocol{}, domrepo.ErrNotFound
}

func (f *fakeCatalog) ListUpgrades(_ context.Context, protocol string, limit int) ([]models.ProtocolUpgrade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProtocolUpgrade
	for _, u := range f.upgrades {
		if protocol == "" || strings.EqualFold(u.ProtocolName, protocol) {
			out = append(out, u)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetUpgrade(_ context.Context, id uuid.UUID) (models.ProtocolUpgrade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.upgrades {
		if u.ID == id {
			return u, nil
		}
	}
	return models.ProtocolUpgrade{}, domrepo.ErrNotFound
}

func (f *fakeCatalog) SaveAssessment(_ context.Context, rec models.RiskAssessmentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.assessments = append(f.assessments, rec)
	return nil
}

func (f *fakeCatalog) UpsertNetwork(_ context.Context, n *models.Network) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.networks {
		if f.networks[i].Name == n.Name {
			n.ID = f.networks[i].ID
			f.networks[i] = *n
			return nil
		}
	}
	n.ID = uuid.New()
	f.networks = append(f.networks, *n)
	return nil
}

func (f *fakeCatalog) UpsertProtocol(_ context.Context, p *models.Protocol) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.protocols {
		if f.protocols[i].ContractAddress == p.ContractAddress {
			p.ID = f.protocols[i].ID
			f.protocols[i] = *p
			return nil
		}
	}
	p.ID = uuid.New()
	f.protocols = append(f.protocols, *p)
	return nil
}

func (f *fakeCatalog) UpsertUpgrade(_ context.Context, u *models.ProtocolUpgrade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.upgrades {
		if f.upgrades[i].ProposalID == u.ProposalID {
			u.ID = f.upgrades[i].ID
			f.upgrades[i] = *u
			return nil
		}
	}
	u.ID = uuid.New()
	f.upgrades = append(f.upgrades, *u)
	return nil
}

func (f *fakeCatalog) Health(context.Context) error { return nil }
func (f *fakeCatalog) Close() error                 { return nil }

type fakeSeries struct {
	mu    sync.Mutex
	obs   map[string][]models.MarketObservation
	posts map[string][]models.SocialPost
	err   error
}

func newFakeSeries() *fakeSeries {
	return &fakeSeries{obs: map[string][]models.MarketObservation{}, posts: map[string][]models.SocialPost{}}
}

func (f *fakeSeries) Init(context.Context) error { return nil }

func (f *fakeSeries) StoreObservations(_ context.Context, obs []models.MarketObservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, o := range obs {
		f.obs[o.ProtocolID] = append(f.obs[o.ProtocolID], o)
	}
	return nil
}

func (f *fakeSeries) StorePosts(_ context.Context, posts []models.SocialPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, p := range posts {
		f.posts[p.Protocol] = append(f.posts[p.Protocol], p)
	}
	return nil
}

func (f *fakeSeries) RecentObservations(_ context.Context, protocol string, n int) ([]models.MarketObservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	all := f.obs[strings.ToLower(protocol)]
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return append([]models.MarketObservation(nil), all...), nil
}

func (f *fakeSeries) PostsSince(_ context.Context, protocol string, since time.Time, limit int) ([]models.SocialPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.SocialPost
	for _, p := range f.posts[strings.ToLower(protocol)] {
		if !p.Timestamp.Before(since) {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSeries) Health(context.Context) error { return nil }
func (f *fakeSeries) Close() error                 { return nil }

type fakePublisher struct {
	mu     sync.Mutex
	events []models.AssessmentEvent
	err    error
}

func (f *fakePublisher) PublishAssessment(_ context.Context, ev models.AssessmentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeBroadcaster struct {
	mu   sync.Mutex
	msgs []any
}

func (f *fakeBroadcaster) Broadcast(v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, v)
}

type fakeMetrics struct {
	mu     sync.Mutex
	scores map[string]int
	errors map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{scores: map[string]int{}, errors: map[string]int{}}
}

func (m *fakeMetrics) RecordScore(kind string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[kind]++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

var errBoom = errors.New("boom")

// marketSeries builds n daily observations ending at end.
func marketSeries(protocol string, end time.Time, prices, tvl []float64) []models.MarketObservation {
	out := make([]models.MarketObservation, len(prices))
	for i := range prices {
		out[i] = models.MarketObservation{
			ProtocolID: protocol,
			Timestamp:  end.Add(-time.Duration(len(prices)-1-i) * 24 * time.Hour),
			PriceUSD:   prices[i],
			TVLUSD:     tvl[i],
			Volume24h:  tvl[i] / 10,
		}
	}
	return out
}
