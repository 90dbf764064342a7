package bettingapi

const (
	// API endpoints, rooted under the provider's /api/bets prefix.
	sessionStartEndpoint  = "/api/bets/session/start"
	sessionStatusEndpoint = "/api/bets/session/status/"
	sessionStopEndpoint   = "/api/bets/session/stop/"
	placeBetEndpoint      = "/api/bets/place/"
	allBetsEndpoint       = "/api/bets/all/"
	highestBetEndpoint    = "/api/bets/highest/"
	lowestBetEndpoint     = "/api/bets/lowest/"
)
