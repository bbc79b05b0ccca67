// Package server exposes the HTTP API: signup/login, the usage dashboard,
// account connection and payment endpoints.
package server

import (
	"github.com/fuckp0/feedsheild/internal/auth"
	"github.com/fuckp0/feedsheild/internal/config"
	"github.com/fuckp0/feedsheild/internal/payments"
	"github.com/fuckp0/feedsheild/internal/storage"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// allowedOrigins lists the frontends permitted to call the API.
var allowedOrigins = []string{
	"http://localhost:5173", // local dev frontend
	"https://feedsheild.com",
}

type Server struct {
	cfg      *config.Config
	store    storage.Store
	payments payments.Provider
}

func New(cfg *config.Config, store storage.Store, provider payments.Provider) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		payments: provider,
	}
}

// Router builds the gin engine with middleware and all routes.
func (s *Server) Router() *gin.Engine {
	if s.cfg.GinMode != "" {
		gin.SetMode(s.cfg.GinMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if s.cfg.SentryDSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = allowedOrigins
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	r.POST("/signup", s.Signup)
	r.POST("/login", s.Login)

	protected := r.Group("")
	protected.Use(auth.Middleware(s.cfg.JWTSecret))

	protected.GET("/dashboard", s.Dashboard)
	protected.POST("/connect-instagram", s.ConnectInstagram)
	protected.POST("/create-payment-intent", s.CreatePaymentIntent)
	protected.POST("/confirm-payment", s.ConfirmPayment)
	protected.POST("/create-subscription", s.CreateSubscription)

	return r
}
