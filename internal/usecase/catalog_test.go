package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UpgradeRisk/internal/domain/models"
)

func TestGovernanceProposalsTimeRemaining(t *testing.T) {
	ends := testNow.Add(2*24*time.Hour + 14*time.Hour)
	past := testNow.Add(-time.Hour)
	catalog := &fakeCatalog{upgrades: []models.ProtocolUpgrade{
		{ProposalID: "UNI-042", ProtocolName: "Uniswap V3", VotingEndsAt: &ends, VotingProgress: 67},
		{ProposalID: "AIP-89", ProtocolName: "Aave V2", VotingEndsAt: &past},
		{ProposalID: "GMX-23", ProtocolName: "GMX"},
	}}
	uc := NewCatalogUseCase(catalog)
	uc.now = func() time.Time { return testNow }

	got, err := uc.GovernanceProposals(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "UNI-042", got[0].ID)
	assert.Equal(t, "2d 14h", got[0].TimeRemaining)
	assert.Equal(t, 67, got[0].VotingProgress)
	assert.Equal(t, "ended", got[1].TimeRemaining)
	assert.Equal(t, "", got[2].TimeRemaining)

	filtered, err := uc.GovernanceProposals(context.Background(), "gmx", 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "GMX", filtered[0].Protocol)
}

func TestCatalogListings(t *testing.T) {
	catalog := &fakeCatalog{
		networks: []models.Network{{Name: "Ethereum"}, {Name: "Polygon"}},
		protocols: []models.Protocol{
			{Name: "Uniswap V3", NetworkName: "Ethereum"},
			{Name: "QuickSwap", NetworkName: "Polygon"},
			{Name: "Compound", NetworkName: "Ethereum"},
		},
	}
	uc := NewCatalogUseCase(catalog)

	nets, err := uc.Networks(context.Background())
	require.NoError(t, err)
	assert.Len(t, nets, 2)

	eth, err := uc.Protocols(context.Background(), "ethereum", 1)
	require.NoError(t, err)
	require.Len(t, eth, 1)
	assert.Equal(t, "Uniswap V3", eth[0].Name)

	_, err = NewCatalogUseCase(nil).Networks(context.Background())
	requireStatus(t, err, http.StatusServiceUnavailable)
}
