package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hari1098/betsync/clients/bettingapi"
	"github.com/hari1098/betsync/internal/view"
)

// Command-line viewer for a betting session. Starts a session (or attaches
// to the polling loop for one already running), optionally places a bet,
// and prints every snapshot change until interrupted.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		baseURL   = flag.String("url", "http://localhost:8080", "betting server base URL")
		sessionID = flag.String("session", "", "session ID to start")
		duration  = flag.Int("duration", 5, "session duration in minutes")
		interval  = flag.Int("interval", 15, "server extremes-logging interval in seconds")
		ticketID  = flag.Int("ticket", 0, "ticket ID to bet with (0 = watch only)")
		amount    = flag.String("amount", "", "bet amount")
	)
	flag.Parse()

	if *sessionID == "" {
		log.Fatal().Msg("-session is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := bettingapi.New(*baseURL)
	viewer := view.NewViewer(client, view.DefaultConfig())

	unsubscribe := viewer.Subscribe(func(snap view.Snapshot) {
		evt := log.Info().
			Stringer("phase", snap.Phase).
			Int("bets", snap.TotalBetCount()).
			Int("tickets", snap.UniqueTicketCount()).
			Str("total", snap.TotalBetAmount().String())
		if snap.Session != nil {
			evt = evt.Str("session_id", snap.Session.SessionID)
		}
		evt.Msg("snapshot")
	})
	defer unsubscribe()

	session, err := viewer.Start(ctx, *sessionID, *duration, *interval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start session")
	}
	log.Info().
		Str("session_id", session.SessionID).
		Time("expires_at", session.ExpiresAt()).
		Msg("session started")

	if *ticketID > 0 && *amount != "" {
		amt, err := decimal.NewFromString(*amount)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid amount")
		}
		bet, err := viewer.SubmitBid(ctx, *ticketID, amt)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to place bet")
		}
		log.Info().
			Int("ticket_id", bet.TicketID).
			Str("amount", bet.Amount.String()).
			Msg("bet placed")
	}

	<-ctx.Done()

	stopCtx := context.Background()
	if err := viewer.Stop(stopCtx); err != nil {
		log.Warn().Err(err).Msg("failed to stop session")
	}
}
