package betting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hari1098/betsync/internal/models"
	"github.com/rs/zerolog/log"
)

// Defaults applied when the start request omits the tuning parameters.
const (
	defaultDurationMinutes     = 5
	defaultTaskIntervalSeconds = 15
)

// SessionManager defines what the HTTP layer needs from the session
// lifecycle manager.
type SessionManager interface {
	StartSession(ctx context.Context, sessionID string, durationMinutes, taskIntervalSeconds int) (*models.BettingSession, error)
	StopSession(ctx context.Context, sessionID string) error
}

// Handler exposes the betting REST API under /api/bets.
type Handler struct {
	app     *App
	manager SessionManager
}

// NewHandler creates the REST handler.
func NewHandler(app *App, manager SessionManager) *Handler {
	return &Handler{
		app:     app,
		manager: manager,
	}
}

// RegisterRoutes registers all betting routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/bets/session/start", h.handleStartSession)
	mux.HandleFunc("GET /api/bets/session/status/{sessionId}", h.handleSessionStatus)
	mux.HandleFunc("POST /api/bets/session/stop/{sessionId}", h.handleStopSession)
	mux.HandleFunc("POST /api/bets/place/{sessionId}", h.handlePlaceBet)
	mux.HandleFunc("GET /api/bets/all/{sessionId}", h.handleAllBets)
	mux.HandleFunc("GET /api/bets/highest/{sessionId}", h.handleHighestBet)
	mux.HandleFunc("GET /api/bets/lowest/{sessionId}", h.handleLowestBet)
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sessionID := query.Get("sessionId")
	durationMinutes := intQueryParam(query.Get("durationMinutes"), defaultDurationMinutes)
	taskIntervalSeconds := intQueryParam(query.Get("taskIntervalSeconds"), defaultTaskIntervalSeconds)

	session, err := h.manager.StartSession(r.Context(), sessionID, durationMinutes, taskIntervalSeconds)
	if err != nil {
		var validationErr *models.ValidationError
		switch {
		case errors.As(err, &validationErr):
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrSessionExists):
			http.Error(w, "session with this ID already exists", http.StatusConflict)
		default:
			log.Error().Err(err).Str("session_id", sessionID).Msg("failed to start session")
			http.Error(w, "failed to start session", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	session, err := h.app.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to get session status")
		http.Error(w, "failed to get session status", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) handleStopSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	active, err := h.app.IsSessionActive(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to check session state")
		http.Error(w, "failed to stop session", http.StatusInternalServerError)
		return
	}
	if !active {
		http.Error(w, "session not found or not active", http.StatusNotFound)
		return
	}

	if err := h.manager.StopSession(r.Context(), sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to stop session")
		http.Error(w, "failed to stop session", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	active, err := h.app.IsSessionActive(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to check session state")
		http.Error(w, "failed to place bet", http.StatusInternalServerError)
		return
	}
	if !active {
		http.Error(w, "betting session is closed", http.StatusForbidden)
		return
	}

	var req models.BetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	bet, err := h.app.PlaceBet(r.Context(), sessionID, req.TicketID, req.Amount)
	if err != nil {
		var validationErr *models.ValidationError
		var ruleErr *RuleError
		switch {
		case errors.As(err, &validationErr):
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
		case errors.As(err, &ruleErr):
			http.Error(w, ruleErr.Error(), http.StatusBadRequest)
		default:
			log.Error().Err(err).Str("session_id", sessionID).Msg("failed to place bet")
			http.Error(w, "failed to place bet", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, bet)
}

func (h *Handler) handleAllBets(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	bets, err := h.app.ListBets(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to list bets")
		http.Error(w, "failed to list bets", http.StatusInternalServerError)
		return
	}
	if bets == nil {
		bets = []models.Bet{}
	}

	writeJSON(w, http.StatusOK, bets)
}

func (h *Handler) handleHighestBet(w http.ResponseWriter, r *http.Request) {
	h.handleExtreme(w, r, h.app.HighestBet)
}

func (h *Handler) handleLowestBet(w http.ResponseWriter, r *http.Request) {
	h.handleExtreme(w, r, h.app.LowestBet)
}

func (h *Handler) handleExtreme(w http.ResponseWriter, r *http.Request, fetch func(context.Context, string) (*models.Bet, error)) {
	sessionID := r.PathValue("sessionId")

	bet, err := fetch(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrNoBets) {
			http.Error(w, "no bets found for session", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to get extreme bet")
		http.Error(w, "failed to get bet", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, bet)
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
