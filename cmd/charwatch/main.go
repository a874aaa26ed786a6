package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/charwatch/charwatch/internal/config"
	"github.com/charwatch/charwatch/internal/domain/bot"
	"github.com/charwatch/charwatch/internal/domain/mode"
	logpkg "github.com/charwatch/charwatch/internal/logger"
	"github.com/charwatch/charwatch/internal/metrics"
	lookuprepo "github.com/charwatch/charwatch/internal/repository/lookup"
	"github.com/charwatch/charwatch/internal/repository/snapshot"
	trendingrepo "github.com/charwatch/charwatch/internal/repository/trending"
	chiTransport "github.com/charwatch/charwatch/internal/transport/chi"
	"github.com/charwatch/charwatch/internal/transport/typesense"
	tagmapuc "github.com/charwatch/charwatch/internal/usecase/tagmap"
	trendinguc "github.com/charwatch/charwatch/internal/usecase/trending"
	"github.com/charwatch/charwatch/internal/version"
)

func main() {
	app := &cli.Command{
		Name:  "charwatch",
		Usage: "Trending crawler and lookup service for the hosted character search index",
		Commands: []*cli.Command{
			serveCommand(),
			fetchCommand(),
			tagmapCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// services is the composition root shared by all commands.
type services struct {
	trending *trendinguc.Service
	tagmap   *tagmapuc.Service
	lookup   *lookuprepo.Repo
	cfg      config.Config
	logger   *zap.Logger
}

func buildServices() (*services, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	ts := typesense.New(typesense.Config{
		Endpoint: cfg.API.Endpoint,
		APIKey:   cfg.API.Key,
		Logger:   logger,
	})

	lookup := lookuprepo.New(ts, cfg.Collections.Primary, logger)
	crawler := trendingrepo.New(ts, cfg.Collections.Primary, nil, logger)
	snaps := snapshot.New(cfg.Cache.FilteredFile, cfg.Cache.UnfilteredFile, logger)

	trendingSvc := trendinguc.New(crawler, snaps, metrics.SnapshotTotal, logger).
		WithDefaultMaxPages(cfg.Crawl.MaxPages)
	tagmapSvc := tagmapuc.New(trendingSvc, logger).WithMaxPages(cfg.Crawl.MaxPages)

	return &services{
		trending: trendingSvc,
		tagmap:   tagmapSvc,
		lookup:   lookup,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API server",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return serve(ctx)
		},
	}
}

func serve(_ context.Context) error {
	svcs, err := buildServices()
	if err != nil {
		return err
	}
	logger := svcs.logger
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting charwatch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", svcs.cfg.HTTP.Port),
		zap.String("collection", svcs.cfg.Collections.Primary),
	)

	metrics.Register()
	metrics.RegisterHTTP()

	server := chiTransport.NewServer(
		svcs.trending, svcs.tagmap, svcs.lookup,
		svcs.cfg.Collections.CreatedAtPriority, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", svcs.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(svcs.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(svcs.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(svcs.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch the trending ranking and print it as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Filter mode: filtered or unfiltered",
				Value: "filtered",
			},
			&cli.IntFlag{
				Name:  "max-pages",
				Usage: "Page budget for the crawl (0 = crawl.max_pages from config)",
			},
			&cli.BoolFlag{
				Name:  "live",
				Usage: "Bypass the snapshot cache and crawl the index",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			svcs, err := buildServices()
			if err != nil {
				return err
			}
			defer func() { _ = svcs.logger.Sync() }()

			m := mode.Mode(c.String("mode"))
			if !m.IsValid() {
				return fmt.Errorf("invalid mode %q", c.String("mode"))
			}

			records := svcs.trending.TopBots(ctx, trendinguc.Options{
				Mode:     m,
				MaxPages: c.Int("max-pages"),
				UseCache: !c.Bool("live"),
			})

			items := make([]bot.Bot, 0, len(records))
			for _, b := range records {
				items = append(items, b)
			}
			sort.Slice(items, func(i, j int) bool { return items[i].Rank < items[j].Rank })

			return printJSON(items)
		},
	}
}

func tagmapCommand() *cli.Command {
	return &cli.Command{
		Name:  "tagmap",
		Usage: "Build the character_id to tags map and print it as JSON",
		Action: func(ctx context.Context, _ *cli.Command) error {
			svcs, err := buildServices()
			if err != nil {
				return err
			}
			defer func() { _ = svcs.logger.Sync() }()

			return printJSON(svcs.tagmap.TagMap(ctx))
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Println(version.String())
			return nil
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
