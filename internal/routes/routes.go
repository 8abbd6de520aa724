// Package routes is the HTTP route table. Each resource contributes a group
// of routes and New composes them on one chi router.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyfinder/internal/catalog"
	"github.com/jason-s-yu/lobbyfinder/internal/handlers"
	"github.com/jason-s-yu/lobbyfinder/internal/middleware"
)

// Deps is everything the route table hands to handlers.
type Deps struct {
	Logger  *logrus.Logger
	Catalog catalog.Catalog
	Lobbies *handlers.LobbyServer
	Checks  map[string]handlers.HealthCheck
	Version string

	// History is nil when no event log is configured; the history route is
	// then not mounted.
	History handlers.LobbyHistory
}

// New builds the router: home, any, games, distributors, platforms,
// game-ranks, session and lobbies, in that order.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LogMiddleware(d.Logger))
	r.Use(chimw.Recoverer)

	r.NotFound(handlers.NotFoundHandler)
	r.MethodNotAllowed(handlers.MethodNotAllowedHandler)

	r.Get("/", handlers.HomeHandler(d.Version))
	r.Group(anyRoutes(d.Checks))
	r.Group(gameRoutes(d.Catalog))
	r.Group(distributorRoutes(d.Catalog))
	r.Group(platformRoutes(d.Catalog))
	r.Route("/game-ranks", gameRankRoutes(d.Catalog))
	r.Group(sessionRoutes())
	r.Group(lobbyRoutes(d.Lobbies, d.History))
	return r
}

func anyRoutes(checks map[string]handlers.HealthCheck) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/healthz", handlers.HealthHandler(checks))
	}
}

func gameRoutes(cat catalog.Catalog) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/games", handlers.ListGamesHandler(cat))
		r.Get("/games/{gameID}", handlers.GetGameHandler(cat))
	}
}

func distributorRoutes(cat catalog.Catalog) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/distributors", handlers.ListDistributorsHandler(cat))
		r.Get("/distributors/{id}", handlers.GetDistributorHandler(cat))
		r.Get("/distributors/{id}/games", handlers.ListDistributorGamesHandler(cat))
	}
}

func platformRoutes(cat catalog.Catalog) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/platforms", handlers.ListPlatformsHandler(cat))
		r.Get("/platforms/{id}", handlers.GetPlatformHandler(cat))
		r.Get("/platforms/{id}/games", handlers.ListPlatformGamesHandler(cat))
	}
}

func gameRankRoutes(cat catalog.Catalog) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", handlers.ListAllGameRanksHandler(cat))
		r.Get("/{gameID}", handlers.ListGameRanksHandler(cat))
	}
}

func sessionRoutes() func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/session/guest", handlers.GuestSessionHandler())
		r.With(middleware.RequireSession).Get("/session/me", handlers.MeHandler())
	}
}

func lobbyRoutes(ls *handlers.LobbyServer, history handlers.LobbyHistory) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(middleware.OptionalSession)

		r.Get("/lobbies", handlers.ListLobbiesHandler(ls))
		r.Get("/lobbies/cards", handlers.LobbyCardsHandler(ls))
		r.Get("/lobbies/ws", handlers.LobbyFeedWSHandler(ls))
		r.Get("/lobbies/{id}", handlers.GetLobbyHandler(ls))
		r.Get("/lobbies/{id}/card", handlers.LobbyCardHandler(ls))
		if history != nil {
			r.Get("/lobbies/{id}/history", handlers.LobbyHistoryHandler(history))
		}
		// join, edit and delete check the session themselves; icon-error
		// comes from an <img> and carries none
		r.Post("/lobbies/{id}/card/{action}", handlers.LobbyCardActionHandler(ls))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Post("/lobbies", handlers.CreateLobbyHandler(ls))
			r.Patch("/lobbies/{id}", handlers.UpdateLobbyHandler(ls))
			r.Delete("/lobbies/{id}", handlers.DeleteLobbyHandler(ls))
			r.Post("/lobbies/{id}/join", handlers.JoinLobbyHandler(ls))
			r.Post("/lobbies/{id}/leave", handlers.LeaveLobbyHandler(ls))
		})
	}
}
