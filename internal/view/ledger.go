package view

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hari1098/betsync/internal/models"
)

// Ledger is the in-memory mirror of all bids for the currently viewed
// session, always ordered newest submission first. It holds bids for at most
// one session at a time; binding a different session clears it.
//
// Highest and Lowest are proxied to the provider rather than scanned locally:
// the provider is the authority on ranking and the local list may be a
// partial window.
type Ledger struct {
	provider Provider

	mu        sync.RWMutex
	sessionID string
	bets      []models.Bet
}

// NewLedger creates an empty ledger backed by the given provider for ranking
// queries.
func NewLedger(provider Provider) *Ledger {
	return &Ledger{provider: provider}
}

// Bind points the ledger at a session, discarding any bids held for a
// previous one. Binding the empty string detaches the ledger.
func (l *Ledger) Bind(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessionID = sessionID
	l.bets = nil
}

// SessionID returns the session the ledger is currently bound to.
func (l *Ledger) SessionID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessionID
}

// ReplaceAll atomically swaps the ledger contents for a fresh provider
// snapshot. Bets are re-sorted newest first; a bet with no timestamp sorts as
// the oldest possible submission. Readers never observe a partial swap.
func (l *Ledger) ReplaceAll(bets []models.Bet) {
	sorted := make([]models.Bet, len(bets))
	copy(sorted, bets)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].Time, sorted[j].Time
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	l.bets = sorted
}

// Bets returns a copy of the current contents, newest first.
func (l *Ledger) Bets() []models.Bet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Bet, len(l.bets))
	copy(out, l.bets)
	return out
}

// BetsForTicket returns the current bets placed by one ticket. An unknown or
// invalid ticket yields an empty slice, not an error.
func (l *Ledger) BetsForTicket(ticketID int) []models.Bet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []models.Bet
	for _, b := range l.bets {
		if b.TicketID == ticketID {
			out = append(out, b)
		}
	}
	return out
}

// Highest returns the provider's view of the maximum bid across the whole
// session. On provider failure the extreme is unknown; callers must not fall
// back to a locally derived value.
func (l *Ledger) Highest(ctx context.Context) (*models.Bet, error) {
	sessionID := l.SessionID()
	if sessionID == "" {
		return nil, fmt.Errorf("ledger is not bound to a session")
	}
	return l.provider.GetHighestBid(ctx, sessionID)
}

// Lowest returns the provider's view of the minimum bid across the whole
// session.
func (l *Ledger) Lowest(ctx context.Context) (*models.Bet, error) {
	sessionID := l.SessionID()
	if sessionID == "" {
		return nil, fmt.Errorf("ledger is not bound to a session")
	}
	return l.provider.GetLowestBid(ctx, sessionID)
}
