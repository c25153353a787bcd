package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router wires the API routes. Everything under /api requires a valid
// token from the identity provider; /healthz is open for probes.
func (h *Handler) Router(jwtSecret, cookieName string, health http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health)

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireAuth(jwtSecret, cookieName))

		r.Route("/game", func(r chi.Router) {
			r.Get("/", h.GetGame)
			r.Post("/start", h.StartGame)
			r.Post("/reset", h.ResetGame)
			r.Put("/type", h.SetGameType)

			r.Post("/players", h.AddPlayer)
			r.Put("/players/{index}", h.RenamePlayer)
			r.Delete("/players/{index}", h.RemovePlayer)

			r.Post("/throws", h.PostThrow)
			r.Post("/turn/confirm", h.ConfirmTurn)
			r.Post("/turn/cancel", h.CancelTurn)
		})

		r.Get("/checkout/{score}", h.CheckoutSuggest)

		r.Get("/history", h.History)
		r.Get("/statistics", h.Statistics)
		r.Get("/statistics/{player}", h.PlayerStatistics)
		r.Get("/leaderboard", h.Leaderboard)
	})

	return r
}
