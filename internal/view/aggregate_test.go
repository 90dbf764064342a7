package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hari1098/betsync/internal/models"
)

func TestSnapshotAggregatesEmptyLedger(t *testing.T) {
	snap := Snapshot{}

	assert.Equal(t, 0, snap.TotalBetCount())
	assert.True(t, snap.TotalBetAmount().IsZero())
	assert.Equal(t, 0, snap.UniqueTicketCount())
	assert.Empty(t, snap.BetsForTicket(1))
	assert.True(t, snap.HighestForTicket(1).IsZero())
}

func TestSnapshotAggregates(t *testing.T) {
	snap := Snapshot{
		Bets: []models.Bet{
			makeBet(1, "10.50", nil),
			makeBet(2, "30", nil),
			makeBet(1, "42.25", nil),
		},
	}

	assert.Equal(t, 3, snap.TotalBetCount())
	assert.True(t, snap.TotalBetAmount().Equal(decimal.RequireFromString("82.75")))
	assert.Equal(t, 2, snap.UniqueTicketCount())

	mine := snap.BetsForTicket(1)
	require.Len(t, mine, 2)
	assert.True(t, snap.HighestForTicket(1).Equal(decimal.RequireFromString("42.25")))
	assert.True(t, snap.HighestForTicket(2).Equal(decimal.RequireFromString("30")))
}

func TestHighestForTicketZeroMeansNoCommitment(t *testing.T) {
	snap := Snapshot{
		Bets: []models.Bet{makeBet(1, "10", nil)},
	}

	assert.True(t, snap.HighestForTicket(99).IsZero())
	assert.True(t, snap.HighestForTicket(-1).IsZero())
}
