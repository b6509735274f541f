// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers: correlation IDs, structured logging,
// panic recovery, metrics, rate limiting, CORS, the REST API, and the
// websocket handshake endpoint.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nearbychat/server/internal/auth"
	"github.com/nearbychat/server/internal/config"
	"github.com/nearbychat/server/internal/http/handlers"
	"github.com/nearbychat/server/internal/http/middleware"
	"github.com/nearbychat/server/internal/services"
	"github.com/nearbychat/server/internal/ws"
)

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine, builds the service graph over db, and returns the realtime hub it
// wired in (exposed for tests and future shutdown hooks).
//
// Middleware order matters:
//  1. RequestID: generate/propagate correlation id
//  2. Logger: structured logs carrying the correlation id
//  3. Recovery: capture panics after the logger
//  4. Body size limiter
//  5. Metrics
//  6. Rate limiter (per user/IP)
//  7. CORS
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, lg zerolog.Logger) *ws.Hub {
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: handlers ← hub/services ← repo/db
	userSvc := services.NewUserService(db)
	roomSvc := services.NewRoomService(db, cfg.RoomTTL, cfg.RadiusKm)
	msgSvc := services.NewMessageService(db, cfg.WS.MaxMessageRune)
	mgr := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)

	hub := ws.NewHub(msgSvc, userSvc, roomSvc, ws.WSConfig{
		ReadLimit:    cfg.WS.ReadLimit,
		SendBuffer:   cfg.WS.SendBuffer,
		WriteTimeout: cfg.WS.WriteTimeout,
		PongTimeout:  cfg.WS.PongTimeout,
		PingInterval: cfg.WS.PingInterval,
	}, lg)

	h := handlers.New(userSvc, roomSvc, msgSvc, mgr, mgr, hub)

	// Websocket handshake: the connection gate verifies the credential
	// before the upgrade, so it sits outside the REST auth middleware.
	r.GET("/ws", h.Connect)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/auth/signup", h.Signup)
		api.POST("/auth/login", h.Login)

		authed := api.Group("", middleware.RequireAuth(mgr))
		{
			authed.GET("/auth/me", h.Me)
			authed.PUT("/auth/handle", h.UpdateHandle)

			authed.POST("/rooms", h.CreateRoom)
			authed.GET("/rooms", h.NearbyRooms)
			authed.GET("/rooms/my-active", h.MyActiveRoom)
			authed.DELETE("/rooms/:id", h.DeleteRoom)

			// History lives under /chat to keep the rooms GET tree free of
			// a static/param segment clash.
			authed.GET("/chat/:id", h.ListMessages)
		}
	}

	return hub
}

// limitBody caps the request body size for all endpoints.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
