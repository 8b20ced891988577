package vantha

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
)

// API is the optional status/health HTTP server. It exposes read-only
// operational state and never mutates the record store.
type API struct {
	v          *Vantha
	config     *APIConfig
	logger     *slog.Logger
	httpServer *http.Server
}

func newAPI(v *Vantha, config *APIConfig) *API {
	a := &API{
		v:      v,
		config: config,
		logger: slog.New(newLogHandler(config.LogLevel)).With(loggerNameKey, "api"),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(a.requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(config.CORS.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = config.CORS.AllowOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	if len(config.CORS.AllowMethods) > 0 {
		corsConfig.AllowMethods = config.CORS.AllowMethods
	}
	if len(config.CORS.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = config.CORS.AllowHeaders
	}
	if config.CORS.MaxAge > 0 {
		corsConfig.MaxAge = config.CORS.MaxAge
	}
	engine.Use(cors.New(corsConfig))

	engine.GET("/healthz", a.getHealth)
	engine.GET("/status", a.getStatus)

	a.httpServer = &http.Server{
		Handler:           engine,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
	}
	return a
}

func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.logger.Info(
			"request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Serve listens until the context is canceled, then shuts down
// gracefully within the configured shutdown timeout.
func (a *API) Serve(ctx context.Context) error {
	listener, err := net.Listen(a.config.ListenNetwork, a.config.Listen)
	if err != nil {
		return err
	}
	a.logger.Info("status API listening", "address", listener.Addr().String())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.httpServer.Serve(listener)
	}()

	select {
	case err = <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		a.v.config.ShutdownTimeout,
	)
	defer cancel()
	if err = a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("error shutting down status API", tint.Err(err))
		return err
	}
	return <-serveErr
}

func (a *API) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type statusResponse struct {
	StartedAt   time.Time      `json:"started_at"`
	Uptime      string         `json:"uptime"`
	Connected   bool           `json:"discord_connected"`
	Connects    int64          `json:"gateway_connects"`
	Disconnects int64          `json:"gateway_disconnects"`
	Tables      map[string]int `json:"tables"`
	Dirty       bool           `json:"store_dirty"`
	LastFlush   *time.Time     `json:"last_flush,omitempty"`
}

func (a *API) getStatus(c *gin.Context) {
	resp := statusResponse{
		StartedAt:   a.v.startedAt,
		Uptime:      time.Since(a.v.startedAt).Round(time.Second).String(),
		Connected:   a.v.discord.Connected(),
		Connects:    a.v.discord.metricConnects.Load(),
		Disconnects: a.v.discord.metricDisconnects.Load(),
		Tables:      a.v.store.TableSizes(),
		Dirty:       a.v.store.Dirty(),
	}
	if last := a.v.store.LastFlush(); !last.IsZero() {
		resp.LastFlush = &last
	}
	c.JSON(http.StatusOK, resp)
}
