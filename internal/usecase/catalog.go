package usecase

import (
	"context"
	"time"

	"UpgradeRisk/internal/domain/models"
	domrepo "UpgradeRisk/internal/domain/repository"
	xhttp "UpgradeRisk/pkg/http"
	"UpgradeRisk/pkg/util"
)

// CatalogUseCase serves read-only catalog views.
type CatalogUseCase struct {
	catalog domrepo.CatalogStore
	now     func() time.Time
}

func NewCatalogUseCase(catalog domrepo.CatalogStore) *CatalogUseCase {
	return &CatalogUseCase{catalog: catalog, now: time.Now}
}

func (uc *CatalogUseCase) Networks(ctx context.Context) ([]models.Network, error) {
	if uc.catalog == nil {
		return nil, xhttp.UnavailableError("catalog store is not configured")
	}
	out, err := uc.catalog.ListNetworks(ctx)
	if err != nil {
		return nil, xhttp.InternalError("list networks failed").WithError(err)
	}
	return out, nil
}

func (uc *CatalogUseCase) Protocols(ctx context.Context, network string, limit int) ([]models.Protocol, error) {
	if uc.catalog == nil {
		return nil, xhttp.UnavailableError("catalog store is not configured")
	}
	out, err := uc.catalog.ListProtocols(ctx, network, limit)
	if err != nil {
		return nil, xhttp.InternalError("list protocols failed").WithError(err)
	}
	return out, nil
}

// GovernanceProposals lists tracked upgrades with the time left to vote.
func (uc *CatalogUseCase) GovernanceProposals(ctx context.Context, protocol string, limit int) ([]models.GovernanceProposal, error) {
	if uc.catalog == nil {
		return nil, xhttp.UnavailableError("catalog store is not configured")
	}
	upgrades, err := uc.catalog.ListUpgrades(ctx, protocol, limit)
	if err != nil {
		return nil, xhttp.InternalError("list upgrades failed").WithError(err)
	}

	now := uc.now()
	out := make([]models.GovernanceProposal, 0, len(upgrades))
	for _, u := range upgrades {
		remaining := ""
		if u.VotingEndsAt != nil {
			remaining = util.FormatRemaining(u.VotingEndsAt.Sub(now))
		}
		out = append(out, models.GovernanceProposal{
			ID:               u.ProposalID,
			UpgradeID:        u.ID,
			Title:            u.Title,
			Protocol:         u.ProtocolName,
			Type:             u.UpgradeType,
			Status:           u.Status,
			VotingProgress:   u.VotingProgress,
			TimeRemaining:    remaining,
			RiskScore:        u.RiskScore,
			VolatilityImpact: u.VolatilityImpact,
			LiquidityShift:   u.LiquidityShift,
		})
	}
	return out, nil
}
