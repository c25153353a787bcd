package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/joshsmithson/71-checkout/internal/dart"
	"github.com/joshsmithson/71-checkout/internal/service"
	"github.com/joshsmithson/71-checkout/internal/session"
)

// Handler holds the HTTP handlers for the game and statistics endpoints.
type Handler struct {
	game  *service.GameService
	stats *service.StatsService
	log   zerolog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(game *service.GameService, stats *service.StatsService, log zerolog.Logger) *Handler {
	return &Handler{
		game:  game,
		stats: stats,
		log:   log.With().Str("component", "http").Logger(),
	}
}

// sessionView is the wire shape of the live game: the service's copied
// state plus the pending turn spelled out dart by dart. Handlers only ever
// encode these copies, never the live session.
type sessionView struct {
	service.GameState
	PendingThrows []throwView `json:"pendingThrows"`
}

type throwView struct {
	Segment int    `json:"segment"`
	Ring    string `json:"ring"`
	Value   int    `json:"value"`
	Label   string `json:"label"`
}

func newSessionView(st service.GameState) sessionView {
	v := sessionView{GameState: st, PendingThrows: []throwView{}}
	if v.Suggestions == nil {
		v.Suggestions = []string{}
	}
	for _, t := range st.Pending {
		v.PendingThrows = append(v.PendingThrows, throwView{
			Segment: t.Segment,
			Ring:    string(t.Ring),
			Value:   t.Value(),
			Label:   t.Label(),
		})
	}
	return v
}

func (h *Handler) view(userID string) sessionView {
	return newSessionView(h.game.State(userID))
}

// GetGame handles GET /api/game.
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, h.view(userID))
}

// StartGame handles POST /api/game/start.
func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		GameType string `json:"gameType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	gt, err := session.ParseGameType(req.GameType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.game.StartGame(r.Context(), userID, gt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(st))
}

// SetGameType handles PUT /api/game/type.
func (h *Handler) SetGameType(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		GameType string `json:"gameType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	gt, err := session.ParseGameType(req.GameType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.game.SetGameType(userID, gt); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(userID))
}

// AddPlayer handles POST /api/game/players.
func (h *Handler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.game.AddPlayer(userID, req.Name); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(userID))
}

// RemovePlayer handles DELETE /api/game/players/{index}.
func (h *Handler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player index")
		return
	}
	if err := h.game.RemovePlayer(userID, index); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(userID))
}

// RenamePlayer handles PUT /api/game/players/{index}.
func (h *Handler) RenamePlayer(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player index")
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.game.RenamePlayer(userID, index, req.Name); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(userID))
}

// PostThrow handles POST /api/game/throws.
func (h *Handler) PostThrow(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Segment int    `json:"segment"`
		Ring    string `json:"ring"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ring, err := dart.ParseRing(req.Ring)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.game.Throw(userID, dart.Throw{Segment: req.Segment, Ring: ring})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

// ConfirmTurn handles POST /api/game/turn/confirm.
func (h *Handler) ConfirmTurn(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.game.ConfirmTurn(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Turn session.TurnRecord `json:"turn"`
		Game sessionView        `json:"game"`
	}{
		Turn: result.Record,
		Game: newSessionView(result.State),
	})
}

// CancelTurn handles POST /api/game/turn/cancel.
func (h *Handler) CancelTurn(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.game.CancelTurn(userID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(userID))
}

// ResetGame handles POST /api/game/reset.
func (h *Handler) ResetGame(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	st, err := h.game.Reset(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

// CheckoutSuggest handles GET /api/checkout/{score}.
func (h *Handler) CheckoutSuggest(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.Atoi(chi.URLParam(r, "score"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid score")
		return
	}
	suggestions := dart.Suggest(score)
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, struct {
		Score       int      `json:"score"`
		Suggestions []string `json:"suggestions"`
	}{Score: score, Suggestions: suggestions})
}
