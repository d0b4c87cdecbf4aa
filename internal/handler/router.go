/*
Package handler provides the HTTP handlers and routing setup for the TypeRace server.

This file defines the main Router, applying middleware like logging, CORS, identity
extraction and IP-based rate limiting before delegating to the API and WebSocket handlers.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"typerace/internal/pkg/auth/jwt"
	"typerace/internal/pkg/limiter"
	"typerace/internal/pkg/logx"
	"typerace/internal/pkg/resp"
)

const (
	CreateRate   = 0.05
	CreateBurst  = 2
	ConnectRate  = 0.2
	ConnectBurst = 5
)

// Router sets up the HTTP routing table. The rate limiters it creates stop
// cleaning up when ctx is done.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	createLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(CreateRate), CreateBurst)
	connectLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-PoW-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)
	r.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "TypeRace Server",
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/pow/challenge", HandlePowChallenge(deps))
		api.Post("/pow/verify", HandlePowVerify(deps))

		api.Route("/rooms", func(rooms chi.Router) {
			rooms.Use(jwt.RequireIdentity)

			rooms.With(createLimiter.Middleware, deps.PoW.RequireProof).Post("/", HandleCreateRoom(deps))
			rooms.Get("/active", HandleActiveRooms(deps))
			rooms.Get("/{code}", HandleGetRoom(deps))
		})
	})

	r.With(connectLimiter.Middleware).Get("/ws/multiplayer", HandleWebSocket(wsUpgrader, deps))

	return r
}
