// Package main runs a small gin service whose failures are reported through
// every configured sink.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/next-trace/scg-report/adapter/ginadapter"
	"github.com/next-trace/scg-report/config"
	apiError "github.com/next-trace/scg-report/error"
	"github.com/next-trace/scg-report/internal/logging"
	"github.com/next-trace/scg-report/reporter"
	"github.com/next-trace/scg-report/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    cfg.Log.Output,
		Component: "example",
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()

	sinks, store, err := buildSinks(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}

	if store != nil {
		defer store.Close()
	}

	rp := reporter.New(cfg.ServiceContext.Service, cfg.ServiceContext.Version, sinks,
		reporter.WithLogger(logger.With("component", "reporter")),
		reporter.WithTimeout(cfg.Reporter.Timeout),
		reporter.WithUser(func(ctx context.Context) string {
			u, _ := ctx.Value(userKey{}).(string)
			return u
		}),
	)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Length"},
	}))
	r.Use(withUser, ginadapter.Middleware(rp, ginadapter.WithMinStatus(cfg.Reporter.MinStatus)))

	routes(r, store)

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "sinks", sinks.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// buildSinks wires every sink enabled in cfg, each instrumented on reg.
func buildSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*transport.Multi, *transport.Store, error) {
	m, err := transport.NewMetrics(reg)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics: %w", err)
	}

	sinks := transport.NewMulti()

	if cfg.Log.Sink {
		sinks.Add("log", m.Instrument("log", transport.NewLog(logger.With("component", "errors"), slog.LevelError)))
	}

	if cfg.Google.ProjectID != "" {
		g, err := transport.NewGoogle(ctx, transport.GoogleConfig{
			ProjectID:       cfg.Google.ProjectID,
			APIKey:          cfg.Google.APIKey,
			CredentialsFile: cfg.Google.CredentialsFile,
			Endpoint:        cfg.Google.Endpoint,
		})
		if err != nil {
			return nil, nil, err
		}

		sinks.Add("google", m.Instrument("google", g))
	}

	if cfg.HTTP.Endpoint != "" {
		h, err := transport.NewHTTP(transport.HTTPConfig{
			Endpoint: cfg.HTTP.Endpoint,
			Headers:  cfg.HTTP.Headers,
			Timeout:  cfg.HTTP.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}

		sinks.Add("http", m.Instrument("http", h))
	}

	var store *transport.Store

	if cfg.Store.Path != "" {
		store, err = transport.OpenStore(transport.StoreConfig{
			Path:          cfg.Store.Path,
			BusyTimeoutMS: cfg.Store.BusyTimeoutMS,
		})
		if err != nil {
			return nil, nil, err
		}

		sinks.Add("store", m.Instrument("store", store))
	}

	return sinks, store, nil
}

type userKey struct{}

// withUser puts the X-User header on the request context for reporter.WithUser.
func withUser(c *gin.Context) {
	if u := c.GetHeader("X-User"); u != "" {
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userKey{}, u))
	}

	c.Next()
}

func routes(r *gin.Engine, store *transport.Store) {
	api := r.Group("/api")

	api.GET("/customers/:id", func(c *gin.Context) {
		if c.Param("id") != "42" {
			_ = c.Error(apiError.Wrap(errors.New("row not found"), "customer "+c.Param("id")+" not found"))
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})

			return
		}

		c.JSON(http.StatusOK, gin.H{"id": "42", "name": "Ada"})
	})

	api.GET("/panic", func(*gin.Context) {
		var ledger map[string]int
		ledger["balance"]++
	})

	api.GET("/unavailable", func(c *gin.Context) {
		c.Status(http.StatusServiceUnavailable)
	})

	api.GET("/reports", func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "store disabled"})
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		rows, err := store.Recent(c.Request.Context(), limit)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})

			return
		}

		c.JSON(http.StatusOK, rows)
	})
}
