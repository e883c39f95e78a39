package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"transcendence/handlers"
	"transcendence/middleware"
)

// SetupRoutes mounts the full API surface. Everything except registration,
// login and the websocket upgrades sits behind JWT authentication.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	friendHandler *handlers.FriendHandler,
	matchHandler *handlers.MatchHandler,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
	gameHandler *handlers.GameHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public.
	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	// Websockets authenticate via token query parameter during the upgrade.
	router.Get("/ws/presence", webSocketHandler.ServeWs)
	router.Get("/ws/game", gameHandler.ServeGame)

	// Authenticated.
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Get("/me", userHandler.Me)
			r.Put("/me", userHandler.UpdateProfile)
			r.Delete("/me", userHandler.Delete)
			r.Put("/me/password", userHandler.ChangePassword)
			r.Post("/me/avatar", userHandler.UploadAvatar)
			r.Post("/me/2fa/generate", userHandler.Generate2FA)
			r.Post("/me/2fa/enable", userHandler.Enable2FA)
			r.Post("/me/2fa/disable", userHandler.Disable2FA)
			r.Get("/by-name/{username}", userHandler.GetByUsername)
			r.Get("/{id}", userHandler.GetByID)
			r.Get("/{id}/dashboard", userHandler.Dashboard)
			r.Get("/{id}/matches", matchHandler.ListByUser)
		})

		r.Route("/friends", func(r chi.Router) {
			r.Get("/", friendHandler.List)
			r.Post("/", friendHandler.Add)
			r.Delete("/{friendID}", friendHandler.Remove)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchHandler.ListAll)
			r.Post("/", matchHandler.Record)
		})

		r.Route("/tournament", func(r chi.Router) {
			r.Post("/session", tournamentHandler.CreateSession)
			r.Get("/session", tournamentHandler.Status)
			r.Delete("/session", tournamentHandler.CloseSession)
			r.Post("/session/slots/{slot}/verify", tournamentHandler.VerifySlot)
			r.Post("/session/slots/reset", tournamentHandler.ResetSlots)
			r.Post("/session/start", tournamentHandler.Start)
			r.Get("/session/bracket", tournamentHandler.Bracket)
			r.Get("/session/current-match", tournamentHandler.CurrentMatch)
			r.Post("/session/result", tournamentHandler.ReportResult)
		})
	})
}
