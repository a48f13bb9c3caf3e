package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/handlers"
	"github.com/guildroster/roster_backend/middlewares"
	"github.com/guildroster/roster_backend/models"
	"github.com/guildroster/roster_backend/reconcile"
	"github.com/guildroster/roster_backend/warcraftlogs"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	// production requires an explicit allowlist; everything else allows all
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if config.IsProduction() {
		if allowedOrigins == "" {
			cfg.AllowOriginFunc = func(string) bool { return false }
		} else {
			cfg.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	cfg.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", "x-correlation-id")
	cfg.AddExposeHeaders("Content-Length", "Content-Disposition", "x-correlation-id")
	cfg.AllowCredentials = true
	return cfg
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	wcl, err := warcraftlogs.NewClient()
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "warcraftlogs"}).Fatal(err.Error())
	}
	store := reconcile.NewStoreFromEnv()
	importService := reconcile.NewService(store, reconcile.NewModelDependencies(wcl), reconcile.Options{
		CaseInsensitiveNames: config.CaseInsensitiveNameMatching(),
	})

	// Listen first; app endpoints answer 503 until DB and redis are ready.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.Use(cors.New(corsConfig()))

	if config.RateLimitEnabled() {
		limit := int64(config.IntFromEnv("RATE_LIMIT_MAX_REQUESTS", 600))
		window := time.Duration(config.IntFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second
		r.Use(middlewares.NewRateLimiter(nil, limit, window).Middleware())
	}

	r.Use(middlewares.SessionMiddleware())
	r.Use(middlewares.LoaderMiddleware())
	r.Use(middlewares.RequestLogger(logger))
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.POST("/login", handlers.LoginHandler())
	authed := api.Group("", middlewares.RequireAuth())
	authed.POST("/logout", handlers.LogoutHandler())

	writable := authed.Group("", middlewares.RequireWriter())
	handlers.RegisterRosterRoutes(writable)
	handlers.RegisterRaidRoutes(writable)
	handlers.RegisterReportRoutes(writable)
	handlers.RegisterImportRoutes(writable, importService)
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate takes table locks; large installs run it as a separate job.
	if !config.EnvBoolDefault("SKIP_MIGRATIONS", false) {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	sweeperCtx, cancelSweeper := context.WithCancel(context.Background())
	defer cancelSweeper()
	go store.Run(sweeperCtx, time.Minute)

	log.Printf("server listening on :%s", port)

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	cancelSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
