package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"UpgradeRisk/internal/domain/models"
	domrepo "UpgradeRisk/internal/domain/repository"
)

// CatalogSchema is the idempotent DDL for the catalog tables.
var CatalogSchema = []string{
	`CREATE TABLE IF NOT EXISTS networks (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		chain_id BIGINT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		current_block_height BIGINT,
		gas_price DOUBLE PRECISION,
		tvl_usd NUMERIC NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS protocols (
		id UUID PRIMARY KEY,
		network_id UUID NOT NULL REFERENCES networks(id),
		name TEXT NOT NULL,
		contract_address TEXT NOT NULL UNIQUE,
		protocol_type TEXT NOT NULL,
		tvl_usd NUMERIC NOT NULL DEFAULT 0,
		risk_score INT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS protocol_upgrades (
		id UUID PRIMARY KEY,
		protocol_id UUID NOT NULL REFERENCES protocols(id),
		proposal_id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		upgrade_type TEXT NOT NULL,
		status TEXT NOT NULL,
		voting_starts_at TIMESTAMPTZ,
		voting_ends_at TIMESTAMPTZ,
		execution_eta TIMESTAMPTZ,
		risk_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		volatility_impact DOUBLE PRECISION NOT NULL DEFAULT 0,
		liquidity_shift DOUBLE PRECISION NOT NULL DEFAULT 0,
		voting_progress INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS risk_assessments (
		id UUID PRIMARY KEY,
		upgrade_id UUID NOT NULL REFERENCES protocol_upgrades(id),
		technical_risk INT NOT NULL,
		governance_risk INT NOT NULL,
		market_risk INT NOT NULL,
		liquidity_risk INT NOT NULL,
		overall_risk INT NOT NULL,
		confidence_score DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS risk_assessments_upgrade_idx ON risk_assessments (upgrade_id, created_at DESC)`,
}

const (
	protocolColumns = `p.id, p.network_id, n.name AS network_name, p.name, p.contract_address,
		p.protocol_type, p.tvl_usd, p.risk_score, p.updated_at`
	upgradeColumns = `u.id, u.protocol_id, p.name AS protocol_name, u.proposal_id, u.title, u.description,
		u.upgrade_type, u.status, u.voting_starts_at, u.voting_ends_at, u.execution_eta,
		u.risk_score, u.volatility_impact, u.liquidity_shift, u.voting_progress`
)

// PGCatalog implements CatalogStore for PostgreSQL.
type PGCatalog struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewPGCatalog(db *sqlx.DB, timeout time.Duration) *PGCatalog {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PGCatalog{db: db, timeout: timeout}
}

// Init creates the catalog tables.
func (r *PGCatalog) Init(ctx context.Context) error {
	for _, stmt := range CatalogSchema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init catalog schema: %w", err)
		}
	}
	return nil
}

func (r *PGCatalog) ListNetworks(ctx context.Context) ([]models.Network, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var out []models.Network
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, name, chain_id, status, current_block_height, gas_price, tvl_usd, updated_at
		FROM networks
		ORDER BY chain_id`)
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}
	return out, nil
}

// ListProtocols orders by TVL; an empty network lists every network.
func (r *PGCatalog) ListProtocols(ctx context.Context, network string, limit int) ([]models.Protocol, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var out []models.Protocol
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+protocolColumns+`
		FROM protocols p
		JOIN networks n ON n.id = p.network_id
		WHERE $1 = '' OR lower(n.name) = lower($1)
		ORDER BY p.tvl_usd DESC
		LIMIT $2`, network, limit)
	if err != nil {
		return nil, fmt.Errorf("list protocols: %w", err)
	}
	return out, nil
}

// GetProtocolByAddress matches addresses case-insensitively.
func (r *PGCatalog) GetProtocolByAddress(ctx context.Context, address string) (models.Protocol, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var p models.Protocol
	err := r.db.GetContext(ctx, &p, `
		SELECT `+protocolColumns+`
		FROM protocols p
		JOIN networks n ON n.id = p.network_id
		WHERE lower(p.contract_address) = lower($1)`, address)
	if errors.Is(err, sql.ErrNoRows) {
		return p, domrepo.ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("get protocol %s: %w", address, err)
	}
	return p, nil
}

func (r *PGCatalog) ListUpgrades(ctx context.Context, protocol string, limit int) ([]models.ProtocolUpgrade, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var out []models.ProtocolUpgrade
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+upgradeColumns+`
		FROM protocol_upgrades u
		JOIN protocols p ON p.id = u.protocol_id
		WHERE $1 = '' OR lower(p.name) = lower($1)
		ORDER BY u.voting_ends_at ASC NULLS LAST
		LIMIT $2`, protocol, limit)
	if err != nil {
		return nil, fmt.Errorf("list upgrades: %w", err)
	}
	return out, nil
}

func (r *PGCatalog) GetUpgrade(ctx context.Context, id uuid.UUID) (models.ProtocolUpgrade, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var u models.ProtocolUpgrade
	err := r.db.GetContext(ctx, &u, `
		SELECT `+upgradeColumns+`
		FROM protocol_upgrades u
		JOIN protocols p ON p.id = u.protocol_id
		WHERE u.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return u, domrepo.ErrNotFound
	}
	if err != nil {
		return u, fmt.Errorf("get upgrade %s: %w", id, err)
	}
	return u, nil
}

func (r *PGCatalog) SaveAssessment(ctx context.Context, rec models.RiskAssessmentRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO risk_assessments
		(id, upgrade_id, technical_risk, governance_risk, market_risk, liquidity_risk,
		 overall_risk, confidence_score, created_at)
		VALUES (:id, :upgrade_id, :technical_risk, :governance_risk, :market_risk, :liquidity_risk,
		 :overall_risk, :confidence_score, :created_at)`, rec)
	if err != nil {
		return fmt.Errorf("save assessment: %w", err)
	}
	return nil
}

// UpsertNetwork inserts or updates by name and sets n.ID to the stored id.
func (r *PGCatalog) UpsertNetwork(ctx context.Context, n *models.Network) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO networks (id, name, chain_id, status, current_block_height, gas_price, tvl_usd, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			chain_id = EXCLUDED.chain_id,
			status = EXCLUDED.status,
			current_block_height = EXCLUDED.current_block_height,
			gas_price = EXCLUDED.gas_price,
			tvl_usd = EXCLUDED.tvl_usd,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		newID(n.ID), n.Name, n.ChainID, n.Status, n.CurrentBlockHeight, n.GasPrice, n.TVLUSD, n.UpdatedAt).
		Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("upsert network %s: %w", n.Name, err)
	}
	return nil
}

// UpsertProtocol inserts or updates by contract address.
func (r *PGCatalog) UpsertProtocol(ctx context.Context, p *models.Protocol) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO protocols (id, network_id, name, contract_address, protocol_type, tvl_usd, risk_score, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (contract_address) DO UPDATE SET
			network_id = EXCLUDED.network_id,
			name = EXCLUDED.name,
			protocol_type = EXCLUDED.protocol_type,
			tvl_usd = EXCLUDED.tvl_usd,
			risk_score = EXCLUDED.risk_score,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		newID(p.ID), p.NetworkID, p.Name, p.ContractAddress, p.ProtocolType, p.TVLUSD, p.RiskScore, p.UpdatedAt).
		Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("upsert protocol %s: %w", p.Name, err)
	}
	return nil
}

// UpsertUpgrade inserts or updates by proposal id.
func (r *PGCatalog) UpsertUpgrade(ctx context.Context, u *models.ProtocolUpgrade) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO protocol_upgrades
		(id, protocol_id, proposal_id, title, description, upgrade_type, status,
		 voting_starts_at, voting_ends_at, execution_eta,
		 risk_score, volatility_impact, liquidity_shift, voting_progress)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (proposal_id) DO UPDATE SET
			protocol_id = EXCLUDED.protocol_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			upgrade_type = EXCLUDED.upgrade_type,
			status = EXCLUDED.status,
			voting_starts_at = EXCLUDED.voting_starts_at,
			voting_ends_at = EXCLUDED.voting_ends_at,
			execution_eta = EXCLUDED.execution_eta,
			risk_score = EXCLUDED.risk_score,
			volatility_impact = EXCLUDED.volatility_impact,
			liquidity_shift = EXCLUDED.liquidity_shift,
			voting_progress = EXCLUDED.voting_progress
		RETURNING id`,
		newID(u.ID), u.ProtocolID, u.ProposalID, u.Title, u.Description, string(u.UpgradeType), u.Status,
		u.VotingStartsAt, u.VotingEndsAt, u.ExecutionETA,
		u.RiskScore, u.VolatilityImpact, u.LiquidityShift, u.VotingProgress).
		Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("upsert upgrade %s: %w", u.ProposalID, err)
	}
	return nil
}

func (r *PGCatalog) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PGCatalog) Close() error {
	return nil // Managed by pkg
}

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

var _ domrepo.CatalogStore = (*PGCatalog)(nil)
