package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusbike/hubshare-backend/bike"
	"github.com/campusbike/hubshare-backend/hub"
	"github.com/campusbike/hubshare-backend/internal/middleware"
	"github.com/campusbike/hubshare-backend/internal/o11y"
	"github.com/campusbike/hubshare-backend/lock"
	"github.com/campusbike/hubshare-backend/rental"
	"github.com/campusbike/hubshare-backend/summarize"
	"github.com/campusbike/hubshare-backend/transition"
)

type API struct {
	r   *gin.Engine
	br  *bike.Repository
	hr  *hub.Repository
	rr  *rental.Repository
	lr  *lock.Repository
	eng *transition.Engine
	sc  summarize.Client

	sessions *sessionStore
}

type Config struct {
	Auth0Domain     string
	Audience        string
	MetricsUsername string
	MetricsPassword string
}

func New(br *bike.Repository, hr *hub.Repository, rr *rental.Repository, lr *lock.Repository,
	eng *transition.Engine, sc summarize.Client, obs *o11y.Observability, cfg Config) (*API, error) {
	a := &API{
		r:   gin.New(),
		br:  br,
		hr:  hr,
		rr:  rr,
		lr:  lr,
		eng: eng,
		sc:  sc,

		sessions: newSessionStore(),
	}

	a.r.Use(
		gin.Recovery(),
		middleware.Tracing(),
		middleware.Logging(obs.Logger),
		middleware.Metrics(obs.Registry),
	)

	a.r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	metrics := gin.WrapH(promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))
	if cfg.MetricsUsername != "" {
		a.r.GET("/metrics", gin.BasicAuth(gin.Accounts{cfg.MetricsUsername: cfg.MetricsPassword}), metrics)
	} else {
		a.r.GET("/metrics", metrics)
	}

	g := a.r.Group("/api")
	if cfg.Auth0Domain != "" {
		validate, err := middleware.EnsureValidToken(cfg.Auth0Domain, cfg.Audience)
		if err != nil {
			return nil, err
		}
		g.Use(validate)
	}

	g.POST("/rent", a.rentHandler)
	g.POST("/lock-temporary", a.lockTemporaryHandler)
	g.POST("/lock-transferable", a.lockTransferableHandler)
	g.POST("/zone-return", a.zoneReturnHandler)
	g.POST("/station-return", a.stationReturnHandler)

	g.POST("/chat", a.chatHandler)
	g.POST("/chat/reset", a.chatResetHandler)

	g.GET("/available-bikes", a.availableBikesHandler)
	g.GET("/available-nearby-bikes", a.availableNearbyBikesHandler)

	g.GET("/hubs", a.hubsHandler)
	g.GET("/hubs/:id", a.hubDetailHandler)
	g.GET("/bikes", a.bikesHandler)
	g.GET("/bikes/:label", a.bikeHandler)
	g.GET("/bikes/:label/locks", a.bikeLockHistoryHandler)
	g.GET("/rides/current", a.currentRideHandler)
	g.GET("/rides/history", a.rideHistoryHandler)

	return a, nil
}

func (a *API) Router() *gin.Engine {
	return a.r
}
