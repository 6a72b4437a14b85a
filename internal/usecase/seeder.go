package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"UpgradeRisk/internal/domain/models"
	domrepo "UpgradeRisk/internal/domain/repository"
	"UpgradeRisk/pkg/cache"
	applogger "UpgradeRisk/pkg/logger"
)

const seedLockKey = "seed:lock"

// SeedSummary counts what a seed run wrote.
type SeedSummary struct {
	Networks    int `json:"networks"`
	Protocols   int `json:"protocols"`
	Upgrades    int `json:"upgrades"`
	Assessments int `json:"assessments"`
}

// Seeder loads the demo catalog and scores every seeded upgrade.
type Seeder struct {
	catalog domrepo.CatalogStore
	reports *UpgradeReportUseCase
	lock    cache.Service
	l       *applogger.Logger
	now     func() time.Time
}

func NewSeeder(catalog domrepo.CatalogStore, reports *UpgradeReportUseCase, lock cache.Service, l *applogger.Logger) *Seeder {
	if l == nil {
		l = applogger.NewNop()
	}
	return &Seeder{catalog: catalog, reports: reports, lock: lock, l: l, now: time.Now}
}

type seedProtocol struct {
	network  string
	protocol models.Protocol
}

type seedUpgrade struct {
	protocol string
	upgrade  models.ProtocolUpgrade
	// offsets from now for voting start, voting end and execution
	starts, ends, eta time.Duration
}

func seedNetworks() []models.Network {
	return []models.Network{
		{Name: "Ethereum", ChainID: 1, Status: "active"},
		{Name: "Polygon", ChainID: 137, Status: "active"},
		{Name: "Arbitrum", ChainID: 42161, Status: "active"},
	}
}

func seedProtocols() []seedProtocol {
	return []seedProtocol{
		{"Ethereum", models.Protocol{Name: "Uniswap V3", ContractAddress: "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", ProtocolType: "dex", TVLUSD: decimal.NewFromInt(4_200_000_000), RiskScore: 25}},
		{"Ethereum", models.Protocol{Name: "Compound", ContractAddress: "0xA0b86a33E6441d8A2F4F5C87094A16E8b03F85E9", ProtocolType: "lending", TVLUSD: decimal.NewFromInt(3_100_000_000), RiskScore: 35}},
		{"Ethereum", models.Protocol{Name: "Aave V2", ContractAddress: "0x7d2768dE32b0b80b7a3454c06BdAc94A69DDc7A9", ProtocolType: "lending", TVLUSD: decimal.NewFromInt(5_800_000_000), RiskScore: 20}},
		{"Polygon", models.Protocol{Name: "QuickSwap", ContractAddress: "0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff", ProtocolType: "dex", TVLUSD: decimal.NewFromInt(120_000_000), RiskScore: 45}},
		{"Arbitrum", models.Protocol{Name: "GMX", ContractAddress: "0xfc5A1A6EB076a2C7aD06eD22C90d7E710E35ad0a", ProtocolType: "perpetuals", TVLUSD: decimal.NewFromInt(450_000_000), RiskScore: 55}},
	}
}

func seedUpgrades() []seedUpgrade {
	const day = 24 * time.Hour
	return []seedUpgrade{
		{
			protocol: "Uniswap V3",
			upgrade: models.ProtocolUpgrade{
				ProposalID: "UNI-042", Title: "Fee tier adjustment for stablecoin pairs",
				Description: "Proposal to adjust fee tiers for major stablecoin trading pairs to improve capital efficiency",
				UpgradeType: models.UpgradeGovernance, Status: "active",
				RiskScore: 85, VolatilityImpact: 12.5, LiquidityShift: -8.2, VotingProgress: 67,
			},
			starts: -day, ends: 2 * day, eta: 5 * day,
		},
		{
			protocol: "Compound",
			upgrade: models.ProtocolUpgrade{
				ProposalID: "COMP-156", Title: "Interest rate model upgrade",
				Description: "Implementation of new interest rate model to optimize borrowing costs and lending yields",
				UpgradeType: models.UpgradeImplementation, Status: "upcoming",
				RiskScore: 72, VolatilityImpact: 18.3, LiquidityShift: 15.6, VotingProgress: 23,
			},
			starts: day, ends: 5 * day, eta: 10 * day,
		},
		{
			protocol: "Aave V2",
			upgrade: models.ProtocolUpgrade{
				ProposalID: "AIP-89", Title: "Collateral factor adjustments",
				Description: "Adjustment of collateral factors for various assets to manage protocol risk",
				UpgradeType: models.UpgradeParameter, Status: "active",
				RiskScore: 45, VolatilityImpact: 6.8, LiquidityShift: 3.2, VotingProgress: 89,
			},
			starts: -12 * time.Hour, ends: day, eta: 3 * day,
		},
		{
			protocol: "GMX",
			upgrade: models.ProtocolUpgrade{
				ProposalID: "GMX-23", Title: "Trading fee structure update",
				Description: "Updating trading fees to enhance competitiveness and improve trader experience",
				UpgradeType: models.UpgradeParameter, Status: "upcoming",
				RiskScore: 58, VolatilityImpact: 9.4, LiquidityShift: 5.7, VotingProgress: 0,
			},
			starts: 3 * day, ends: 7 * day, eta: 14 * day,
		},
	}
}

// Run is idempotent: every record is upserted on its natural key.
func (s *Seeder) Run(ctx context.Context) (SeedSummary, error) {
	var sum SeedSummary

	if s.lock != nil {
		token, ok, err := s.lock.Acquire(ctx, seedLockKey, 5*time.Minute)
		if err != nil {
			return sum, fmt.Errorf("acquire seed lock: %w", err)
		}
		if !ok {
			return sum, fmt.Errorf("another seed run is in progress")
		}
		defer func() {
			if err := s.lock.Release(context.Background(), seedLockKey, token); err != nil {
				s.l.Warn("seed unlock error", applogger.Error(err))
			}
		}()
	}

	now := s.now()
	networks := map[string]models.Network{}
	for _, n := range seedNetworks() {
		n.UpdatedAt = now
		if err := s.catalog.UpsertNetwork(ctx, &n); err != nil {
			return sum, fmt.Errorf("upsert network %s: %w", n.Name, err)
		}
		networks[n.Name] = n
		sum.Networks++
	}

	protocols := map[string]models.Protocol{}
	for _, sp := range seedProtocols() {
		p := sp.protocol
		net, ok := networks[sp.network]
		if !ok {
			return sum, fmt.Errorf("network %s not seeded", sp.network)
		}
		p.NetworkID = net.ID
		p.NetworkName = net.Name
		p.UpdatedAt = now
		if err := s.catalog.UpsertProtocol(ctx, &p); err != nil {
			return sum, fmt.Errorf("upsert protocol %s: %w", p.Name, err)
		}
		protocols[p.Name] = p
		sum.Protocols++
	}

	for _, su := range seedUpgrades() {
		u := su.upgrade
		p, ok := protocols[su.protocol]
		if !ok {
			return sum, fmt.Errorf("protocol %s not seeded", su.protocol)
		}
		u.ProtocolID = p.ID
		u.ProtocolName = p.Name
		starts, ends, eta := now.Add(su.starts), now.Add(su.ends), now.Add(su.eta)
		u.VotingStartsAt, u.VotingEndsAt, u.ExecutionETA = &starts, &ends, &eta
		if err := s.catalog.UpsertUpgrade(ctx, &u); err != nil {
			return sum, fmt.Errorf("upsert upgrade %s: %w", u.ProposalID, err)
		}
		sum.Upgrades++

		if s.reports == nil {
			continue
		}
		rep, err := s.reports.Assess(ctx, u)
		if err != nil {
			return sum, fmt.Errorf("assess upgrade %s: %w", u.ProposalID, err)
		}
		if _, failed := rep.Errors["persist"]; !failed {
			sum.Assessments++
		}
	}

	s.l.Info("seed completed",
		applogger.Int("networks", sum.Networks),
		applogger.Int("protocols", sum.Protocols),
		applogger.Int("upgrades", sum.Upgrades),
		applogger.Int("assessments", sum.Assessments),
	)
	return sum, nil
}
