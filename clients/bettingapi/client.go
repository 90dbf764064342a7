package bettingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hari1098/betsync/clients"
	"github.com/hari1098/betsync/internal/models"
	"github.com/hari1098/betsync/internal/view"
	"github.com/shopspring/decimal"
)

// Sentinel errors mapped from provider status codes, so callers can tell an
// empty result apart from an unreachable or failing provider.
var (
	ErrSessionNotFound = errors.New("betting session not found")
	ErrSessionExists   = errors.New("betting session already exists")
	ErrSessionClosed   = errors.New("betting session is closed")
	ErrNoBids          = errors.New("no bids recorded for session")
)

// Client is the HTTP client for the betting provider API.
type Client struct {
	*clients.BaseClient
}

// New creates a client rooted at baseURL, e.g. "http://localhost:8081".
func New(baseURL string) *Client {
	return &Client{
		BaseClient: clients.NewBaseClient(baseURL),
	}
}

var _ view.Provider = (*Client)(nil)

// StartSession opens a new session on the provider. A sessionId that was ever
// used before yields ErrSessionExists.
func (c *Client) StartSession(ctx context.Context, sessionID string, durationMinutes, taskIntervalSeconds int) (*models.BettingSession, error) {
	params := url.Values{}
	params.Set("sessionId", sessionID)
	params.Set("durationMinutes", strconv.Itoa(durationMinutes))
	params.Set("taskIntervalSeconds", strconv.Itoa(taskIntervalSeconds))

	body, err := c.Post(ctx, sessionStartEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, mapStatus(err, map[int]error{http.StatusConflict: ErrSessionExists})
	}

	var session models.BettingSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// GetSessionStatus fetches the provider's current view of a session.
func (c *Client) GetSessionStatus(ctx context.Context, sessionID string) (*models.BettingSession, error) {
	body, err := c.Get(ctx, sessionStatusEndpoint+url.PathEscape(sessionID))
	if err != nil {
		return nil, mapStatus(err, map[int]error{http.StatusNotFound: ErrSessionNotFound})
	}

	var session models.BettingSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// StopSession closes an active session. Stopping a session that is not
// active yields ErrSessionNotFound.
func (c *Client) StopSession(ctx context.Context, sessionID string) error {
	_, err := c.Post(ctx, sessionStopEndpoint+url.PathEscape(sessionID), nil)
	if err != nil {
		return mapStatus(err, map[int]error{http.StatusNotFound: ErrSessionNotFound})
	}
	return nil
}

// SubmitBid places a bet against an active session. A closed session yields
// ErrSessionClosed; rule violations come back as a StatusError with the
// provider's message.
func (c *Client) SubmitBid(ctx context.Context, sessionID string, ticketID int, amount decimal.Decimal) (*models.Bet, error) {
	payload, err := json.Marshal(models.BetRequest{TicketID: ticketID, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bet request: %w", err)
	}

	body, err := c.Post(ctx, placeBetEndpoint+url.PathEscape(sessionID), bytes.NewReader(payload))
	if err != nil {
		return nil, mapStatus(err, map[int]error{http.StatusForbidden: ErrSessionClosed})
	}

	var bet models.Bet
	if err := json.Unmarshal(body, &bet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bet: %w", err)
	}
	return &bet, nil
}

// ListBids fetches the full bid list for a session.
func (c *Client) ListBids(ctx context.Context, sessionID string) ([]models.Bet, error) {
	body, err := c.Get(ctx, allBetsEndpoint+url.PathEscape(sessionID))
	if err != nil {
		return nil, err
	}

	var bets []models.Bet
	if err := json.Unmarshal(body, &bets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bets: %w", err)
	}
	return bets, nil
}

// GetHighestBid fetches the provider-authoritative maximum bid. A session
// with no bids yet yields ErrNoBids, which is distinct from any transport or
// provider failure.
func (c *Client) GetHighestBid(ctx context.Context, sessionID string) (*models.Bet, error) {
	return c.getExtreme(ctx, highestBetEndpoint, sessionID)
}

// GetLowestBid fetches the provider-authoritative minimum bid.
func (c *Client) GetLowestBid(ctx context.Context, sessionID string) (*models.Bet, error) {
	return c.getExtreme(ctx, lowestBetEndpoint, sessionID)
}

func (c *Client) getExtreme(ctx context.Context, endpoint, sessionID string) (*models.Bet, error) {
	body, err := c.Get(ctx, endpoint+url.PathEscape(sessionID))
	if err != nil {
		return nil, mapStatus(err, map[int]error{http.StatusNotFound: ErrNoBids})
	}

	var bet models.Bet
	if err := json.Unmarshal(body, &bet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bet: %w", err)
	}
	return &bet, nil
}

// mapStatus translates well-known status codes into sentinel errors and
// passes everything else through untouched.
func mapStatus(err error, codes map[int]error) error {
	var statusErr *clients.StatusError
	if errors.As(err, &statusErr) {
		if mapped, ok := codes[statusErr.StatusCode]; ok {
			return mapped
		}
	}
	return err
}
