package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/MrSnakeDoc/pinsync/internal/config"
	"github.com/MrSnakeDoc/pinsync/internal/httpserver"
	"github.com/MrSnakeDoc/pinsync/internal/logger"
	"github.com/MrSnakeDoc/pinsync/internal/pinboard"
	"github.com/MrSnakeDoc/pinsync/internal/pipeline"
	"github.com/MrSnakeDoc/pinsync/internal/readwise"
	"github.com/MrSnakeDoc/pinsync/internal/redis"
	"github.com/MrSnakeDoc/pinsync/internal/scheduler"
	"github.com/MrSnakeDoc/pinsync/internal/version"
	"github.com/MrSnakeDoc/pinsync/internal/watermark"
)

// New builds the CLI application. The default action performs one sync run;
// the serve command keeps syncing on an interval behind a small HTTP surface.
func New() *cli.App {
	return &cli.App{
		Name:  "pinsync",
		Usage: "Sync Readwise Reader articles to Pinboard bookmarks",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print bookmarks to the console instead of adding them",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "fetch all documents, ignoring the stored last-run timestamp",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to an optional YAML config file",
			},
		},
		Action: runOnce,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run continuously, syncing on an interval",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "print bookmarks to the console instead of adding them",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "path to an optional YAML config file",
					},
				},
				Action: serve,
			},
		},
	}
}

// components holds everything a run needs, wired once from config.
type components struct {
	cfg         *config.Config
	logger      logger.Logger
	runner      *pipeline.Runner
	redisClient *goredis.Client
}

func build(c *cli.Context) (*components, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.DryRun = c.Bool("dry-run")
	cfg.FetchAll = c.Bool("all")

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Watermark backend: Redis when an address is configured, file otherwise.
	var store watermark.Store
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = watermark.NewRedisStore(redisClient)
	} else {
		store = watermark.NewFileStore(cfg.StateFile)
	}

	source := readwise.NewClient(cfg.ReadwiseURL, cfg.ReadwiseToken, cfg.HTTPTimeout, loggerClient)
	sink := pinboard.NewClient(cfg.PinboardURL, cfg.PinboardToken, cfg.DryRun, cfg.RateDelay, cfg.HTTPTimeout, loggerClient)

	runner := pipeline.NewRunner(source, sink, store, loggerClient, pipeline.Options{
		SourceTag: cfg.SourceTag,
		Location:  cfg.Location,
		FetchAll:  cfg.FetchAll,
	})

	return &components{
		cfg:         cfg,
		logger:      loggerClient,
		runner:      runner,
		redisClient: redisClient,
	}, nil
}

func (cp *components) close() {
	if cp.redisClient != nil {
		if err := cp.redisClient.Close(); err != nil {
			cp.logger.Warnf("failed to close redis: %v", err)
		}
	}
	_ = cp.logger.Sync()
}

// runOnce performs a single synchronization pass. Partial failures do not
// change the exit code; they are visible in the logged report.
func runOnce(c *cli.Context) error {
	cp, err := build(c)
	if err != nil {
		return err
	}
	defer cp.close()

	if cp.cfg.DryRun {
		cp.logger.Info("dry run: nothing will be added to pinboard")
	}

	_, err = cp.runner.Run(context.Background())
	return err
}

// serve runs the sync loop on an interval with the HTTP control surface.
func serve(c *cli.Context) error {
	cp, err := build(c)
	if err != nil {
		return err
	}
	defer cp.close()

	cp.logger.Infof("🚀 Starting pinsync %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncTrigger := make(chan struct{}, 1)
	loop := scheduler.NewSyncLoop(cp.runner, cp.logger, cp.cfg.SyncInterval, syncTrigger)
	loop.Start(ctx)
	cp.logger.Info("sync loop started",
		logger.Duration("interval", cp.cfg.SyncInterval))

	server := httpserver.New(cp.cfg, cp.logger, loop, syncTrigger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		cp.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	loop.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cp.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	cp.logger.Info("✅ pinsync stopped cleanly")
	return nil
}
