package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/fakeapi"
	"github.com/RoyceAzure/lab/storefront/internal/fakeapi/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCatalogSize = 30
	shutdownTimeout    = 30 * time.Second
)

func main() {
	app := &cli.App{
		Name:  "fakeapi",
		Usage: "in-memory storefront backend for local runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   ".env",
				Usage:   "path of the .env config file",
				EnvVars: []string{"STOREFRONT_CONFIG"},
			},
		},
		Action: serve,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	cf, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	l := logger.New(cf.LogLevel, cf.LogFormat, "fakeapi", os.Stdout)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cf, l); err != nil {
		l.Error().Err(err).Msg("fake api stopped with error")
		return err
	}
	l.Info().Msg("fake api stopped")
	return nil
}

func run(ctx context.Context, cf *config.Config, l *zerolog.Logger) error {
	catalog, err := loadCatalog(cf.FakeApiCatalog)
	if err != nil {
		return err
	}
	l.Info().Int("products", catalog.Len()).Msg("catalog loaded")

	server := &http.Server{
		Addr:              ":" + cf.FakeApiPort,
		Handler: fakeapi.New(catalog, l, fakeapi.WithRateLimit(ratelimit.Config{
			Capacity: cf.FakeApiBurst,
			RatePS:   cf.FakeApiRatePS,
		})),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info().Str("addr", server.Addr).Msg("fake api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		l.Info().Msg("shutting down fake api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// 沒有指定目錄檔時使用產生的預設商品
func loadCatalog(path string) (*fakeapi.Catalog, error) {
	if path == "" {
		return fakeapi.DefaultCatalog(defaultCatalogSize), nil
	}
	return fakeapi.LoadCatalog(path)
}
