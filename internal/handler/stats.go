package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// History handles GET /api/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessions, err := h.stats.History(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch history")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// Statistics handles GET /api/statistics.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	all, err := h.stats.Statistics(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch statistics")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// PlayerStatistics handles GET /api/statistics/{player}.
func (h *Handler) PlayerStatistics(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	player := chi.URLParam(r, "player")
	st, err := h.stats.PlayerStatistics(r.Context(), userID, player)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Leaderboard handles GET /api/leaderboard.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	board, err := h.stats.Leaderboard(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch leaderboard")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}
