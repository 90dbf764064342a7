package view

import (
	"github.com/hari1098/betsync/internal/models"
	"github.com/shopspring/decimal"
)

// Snapshot is one consistent view of the mirrored session and its bids,
// delivered to subscribers after every successful poll or mutation. All
// derived figures are pure functions of the snapshot; nothing here caches.
type Snapshot struct {
	Session *models.BettingSession
	Phase   Phase
	Bets    []models.Bet
}

// TotalBetCount is the number of bets on the ledger.
func (s Snapshot) TotalBetCount() int {
	return len(s.Bets)
}

// TotalBetAmount is the sum of all bet amounts on the ledger.
func (s Snapshot) TotalBetAmount() decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.Bets {
		total = total.Add(b.Amount)
	}
	return total
}

// UniqueTicketCount is the number of distinct tickets holding bets.
func (s Snapshot) UniqueTicketCount() int {
	seen := make(map[int]struct{}, len(s.Bets))
	for _, b := range s.Bets {
		seen[b.TicketID] = struct{}{}
	}
	return len(seen)
}

// BetsForTicket returns the bets placed by one ticket, preserving ledger
// order. Unknown tickets yield an empty slice.
func (s Snapshot) BetsForTicket(ticketID int) []models.Bet {
	var out []models.Bet
	for _, b := range s.Bets {
		if b.TicketID == ticketID {
			out = append(out, b)
		}
	}
	return out
}

// HighestForTicket is the largest amount the ticket has committed, or zero if
// it holds no bets. Zero means "no commitment" here; it is deliberately
// distinct from the ledger-wide extremes, which report an error when unknown.
func (s Snapshot) HighestForTicket(ticketID int) decimal.Decimal {
	highest := decimal.Zero
	for _, b := range s.Bets {
		if b.TicketID == ticketID && b.Amount.GreaterThan(highest) {
			highest = b.Amount
		}
	}
	return highest
}
