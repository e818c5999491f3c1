// Package server arma todas las dependencias del servicio a partir de la
// configuración y expone el http.Handler final.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/hellojohn-accounts/internal/accounts"
	"github.com/dropDatabas3/hellojohn-accounts/internal/cache"
	"github.com/dropDatabas3/hellojohn-accounts/internal/config"
	accountsctrl "github.com/dropDatabas3/hellojohn-accounts/internal/http/controllers/accounts"
	healthctrl "github.com/dropDatabas3/hellojohn-accounts/internal/http/controllers/health"
	mw "github.com/dropDatabas3/hellojohn-accounts/internal/http/middlewares"
	"github.com/dropDatabas3/hellojohn-accounts/internal/http/router"
	"github.com/dropDatabas3/hellojohn-accounts/internal/metrics"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/oauth1"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/oauth2"
	"github.com/dropDatabas3/hellojohn-accounts/internal/oauth/protocol"
	"github.com/dropDatabas3/hellojohn-accounts/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-accounts/internal/providers"
	"github.com/dropDatabas3/hellojohn-accounts/internal/providers/facebook"
	"github.com/dropDatabas3/hellojohn-accounts/internal/providers/google"
	"github.com/dropDatabas3/hellojohn-accounts/internal/providers/twitter"
	"github.com/dropDatabas3/hellojohn-accounts/internal/rate"
	"github.com/dropDatabas3/hellojohn-accounts/internal/security/secretbox"
	"github.com/dropDatabas3/hellojohn-accounts/internal/session"
	"github.com/dropDatabas3/hellojohn-accounts/internal/store"
	"github.com/dropDatabas3/hellojohn-accounts/internal/store/pg"
	"github.com/dropDatabas3/hellojohn-accounts/internal/store/sqlite"
)

// Repository es un accounts.Repository que además sabe migrarse.
type Repository interface {
	accounts.Repository
	Migrate(ctx context.Context) (*store.MigrationResult, error)
}

// Options ajustes de wiring que no vienen del archivo de config.
type Options struct {
	Version string
	// Registry de métricas. Nil = prometheus.DefaultRegisterer.
	Registry *prometheus.Registry
}

// App es el servicio armado.
type App struct {
	Handler  http.Handler
	Repo     Repository
	Cache    cache.Client
	Registry *providers.Registry
}

// Close libera cache y repositorio.
func (a *App) Close() error {
	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.Repo != nil {
		errs = append(errs, a.Repo.Close())
	}
	return errors.Join(errs...)
}

// OpenRepository abre el repositorio del driver configurado, con sellado
// de auth_data si hay secretbox_key.
func OpenRepository(ctx context.Context, cfg *config.Config) (Repository, error) {
	codec := store.Codec{}
	if cfg.Security.SecretboxKey != "" {
		key, err := secretbox.ParseKey(cfg.Security.SecretboxKey)
		if err != nil {
			return nil, fmt.Errorf("security.secretbox_key: %w", err)
		}
		box, err := secretbox.New(key)
		if err != nil {
			return nil, fmt.Errorf("security.secretbox_key: %w", err)
		}
		codec.Sealer = box
	}

	switch cfg.Storage.Driver {
	case "postgres":
		repo, err := pg.Open(ctx, pg.Config{DSN: cfg.Storage.DSN, MaxConns: cfg.Storage.MaxConns}, codec)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "sqlite":
		repo, err := sqlite.Open(ctx, cfg.Storage.DSN, codec)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("storage driver no soportado: %q", cfg.Storage.Driver)
	}
}

// Build arma cache, repositorio, providers y router.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger.L().With(logger.Layer("wiring"))

	var (
		reg      prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		reg, gatherer = opts.Registry, opts.Registry
	}
	if err := metrics.Register(reg); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	httpMetrics, err := mw.NewHTTPMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	app := &App{}
	app.Cache, err = cache.New(ctx, cache.Config{
		Driver:     cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		Password:   cfg.Cache.Redis.Password,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.Cache.Memory.DefaultTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	app.Repo, err = OpenRepository(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	linker := accounts.NewLinker(accounts.LinkerDeps{
		Repo:                 app.Repo,
		AllowedRedirectHosts: cfg.App.AllowedRedirectHosts,
	})
	httpClient := protocol.NewHTTPClient(protocol.TransportConfig{
		ConnectTimeout:     cfg.Outbound.ConnectTimeout,
		RequestTimeout:     cfg.Outbound.RequestTimeout,
		MaxRedirects:       cfg.Outbound.MaxRedirects,
		InsecureSkipVerify: cfg.Outbound.InsecureSkipVerify,
	})
	if cfg.Outbound.InsecureSkipVerify {
		log.Warn("outbound TLS verification disabled")
	}

	app.Registry = buildRegistry(cfg, httpClient, session.New(app.Cache, cfg.Session.NonceTTL), linker)
	log.Info("providers registered", logger.Any("providers", app.Registry.Names()))

	var limiter rate.Limiter
	if rl := cfg.Server.RateLimit; rl.Requests > 0 {
		limiter = rate.NewFixedWindow(app.Cache, "rl:accounts:", rl.Requests, rl.Window)
	}

	app.Handler = router.New(router.Deps{
		Accounts: accountsctrl.NewController(accountsctrl.Deps{
			Registry:       app.Registry,
			BaseURL:        cfg.App.BaseURL,
			TrustForwarded: cfg.Server.TrustForwarded,
		}),
		Health: healthctrl.NewController(healthctrl.Deps{
			Components: map[string]healthctrl.Pinger{"cache": app.Cache, "accounts_store": app.Repo},
			Version:    opts.Version,
		}),
		Metrics:        httpMetrics,
		RateLimiter:    limiter,
		MetricsHandler: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	})
	return app, nil
}

func buildRegistry(cfg *config.Config, doer protocol.Doer, sessions *session.Store, linker providers.Linker) *providers.Registry {
	reg := providers.NewRegistry()
	p := cfg.Providers

	if p.Twitter.Enabled {
		client := oauth1.NewClient(doer)
		tw := twitter.New(twitter.Config{
			Credentials:  oauth1.Credentials{ConsumerKey: p.Twitter.ConsumerKey, ConsumerSecret: p.Twitter.ConsumerSecret},
			FetchProfile: p.Twitter.FetchProfile,
		}, client, linker)
		reg.Register(oauth1.NewHandshake(oauth1.HandshakeDeps{Provider: tw, Client: client, Sessions: sessions}))
	}

	o2 := oauth2.NewClient(doer)
	if p.Google.Enabled {
		g := google.New(google.Config{
			Credentials:  oauth2.Credentials{ClientID: p.Google.ClientID, ClientSecret: p.Google.ClientSecret},
			FetchProfile: p.Google.FetchProfile,
		}, o2, linker)
		reg.Register(oauth2.NewHandshake(oauth2.HandshakeDeps{Provider: g, Client: o2}))
	}
	if p.Facebook.Enabled {
		fb := facebook.New(facebook.Config{
			Credentials: oauth2.Credentials{ClientID: p.Facebook.ClientID, ClientSecret: p.Facebook.ClientSecret},
		}, o2, linker)
		reg.Register(oauth2.NewHandshake(oauth2.HandshakeDeps{Provider: fb, Client: o2}))
	}
	return reg
}
