package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joshsmithson/71-checkout/internal/dart"
	"github.com/joshsmithson/71-checkout/internal/repository"
	"github.com/joshsmithson/71-checkout/internal/service"
	"github.com/joshsmithson/71-checkout/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps core errors onto HTTP statuses: roster problems
// and bad input are the client's fault, wrong-phase operations conflict,
// storage failures are upstream errors.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidRoster),
		errors.Is(err, session.ErrTurnOver),
		errors.Is(err, session.ErrTurnIncomplete),
		errors.Is(err, dart.ErrInvalidSegment),
		errors.Is(err, dart.ErrInvalidRing):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrStatsNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPersistence):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
