package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// CacheHealth is the optional page cache probed by /health
type CacheHealth interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db            *store.Database
	cache         CacheHealth
	defaultSeason int
	teamService   *service.TeamService
	playerService *service.PlayerService
	statsService  *service.StatsService
}

// NewHandler creates a new handler. cache may be nil.
func NewHandler(db *store.Database, cache CacheHealth, defaultSeason int) *Handler {
	return &Handler{
		db:            db,
		cache:         cache,
		defaultSeason: defaultSeason,
		teamService:   service.NewTeamService(db),
		playerService: service.NewPlayerService(db),
		statsService:  service.NewStatsService(db),
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.HealthCheck(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"service":  "courtside",
			"database": err.Error(),
		})
		return
	}

	body := map[string]string{
		"status":   "healthy",
		"service":  "courtside",
		"database": string(h.db.Dialect()),
	}
	// pages are refetched when the cache is down, so runs still work
	if h.cache != nil {
		if err := h.cache.HealthCheck(ctx); err != nil {
			body["status"] = "degraded"
			body["cache"] = err.Error()
		} else {
			body["cache"] = "ok"
		}
	}
	respondJSON(w, http.StatusOK, body)
}

// GetTeams returns every stored team
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListTeams(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teams", err)
		return
	}
	if teams == nil {
		teams = []*store.Team{}
	}

	respondJSON(w, http.StatusOK, teams)
}

// GetTeam returns one team
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.GetTeam(r.Context(), teamCode(r))
	if err != nil {
		respondLookupError(w, "Team not found", "Failed to fetch team", err)
		return
	}

	respondJSON(w, http.StatusOK, team)
}

// GetTeamRoster returns the team's players
func (h *Handler) GetTeamRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.teamService.GetRoster(r.Context(), teamCode(r))
	if err != nil {
		respondLookupError(w, "Team not found", "Failed to fetch roster", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"team_id": teamCode(r),
		"count":   len(roster),
		"players": roster,
	})
}

// GetTeamOverview returns derived team facts
func (h *Handler) GetTeamOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.teamService.GetOverview(r.Context(), teamCode(r))
	if err != nil {
		respondLookupError(w, "Team not found", "Failed to build overview", err)
		return
	}

	respondJSON(w, http.StatusOK, overview)
}

// GetSeasonStats returns a season's stat lines
func (h *Handler) GetSeasonStats(w http.ResponseWriter, r *http.Request) {
	season, err := h.seasonParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	lines, err := h.statsService.GetSeasonStats(r.Context(), season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch stats", err)
		return
	}
	if lines == nil {
		lines = []store.StatLine{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"season": season,
		"count":  len(lines),
		"stats":  lines,
	})
}

// GetLeaders returns the season leaders for one stat
func (h *Handler) GetLeaders(w http.ResponseWriter, r *http.Request) {
	season, err := h.seasonParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	stat := r.URL.Query().Get("stat")
	if stat == "" {
		stat = "points"
	}

	limit := 5
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
	}

	leaders, err := h.statsService.GetLeaders(r.Context(), season, stat, limit)
	if err != nil {
		if errors.Is(err, service.ErrUnknownStat) {
			respondError(w, http.StatusBadRequest, "Unknown stat", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to fetch leaders", err)
		return
	}
	if leaders == nil {
		leaders = []store.StatLine{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"season":  season,
		"stat":    stat,
		"leaders": leaders,
	})
}

// GetPlayer returns a player profile
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerID"]

	profile, err := h.playerService.GetPlayer(r.Context(), playerID)
	if err != nil {
		respondLookupError(w, "Player not found", "Failed to fetch player", err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *Handler) seasonParam(r *http.Request) (int, error) {
	seasonStr := r.URL.Query().Get("season")
	if seasonStr == "" {
		return h.defaultSeason, nil
	}

	season, err := strconv.Atoi(seasonStr)
	if err != nil || season < 1947 {
		return 0, fmt.Errorf("season must be a year, got %q", seasonStr)
	}
	return season, nil
}

func teamCode(r *http.Request) string {
	return strings.ToUpper(mux.Vars(r)["teamCode"])
}

// respondLookupError maps ErrNotFound to 404 and anything else to 500
func respondLookupError(w http.ResponseWriter, notFound, failed string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, notFound, err)
		return
	}
	respondError(w, http.StatusInternalServerError, failed, err)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
