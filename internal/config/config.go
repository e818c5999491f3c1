// Package config carga la configuración del servicio.
//
// Orden de precedencia: YAML (opcional) → variables de entorno ACCOUNTS_* →
// defaults → Validate(). Solo las variables seteadas pisan el YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefijo de todas las variables de entorno.
const EnvPrefix = "ACCOUNTS_"

type Config struct {
	App       App       `yaml:"app" envPrefix:"APP_"`
	Server    Server    `yaml:"server" envPrefix:"SERVER_"`
	Log       Log       `yaml:"log" envPrefix:"LOG_"`
	Storage   Storage   `yaml:"storage" envPrefix:"STORAGE_"`
	Cache     Cache     `yaml:"cache" envPrefix:"CACHE_"`
	Session   Session   `yaml:"session" envPrefix:"SESSION_"`
	Outbound  Outbound  `yaml:"outbound" envPrefix:"OUTBOUND_"`
	Security  Security  `yaml:"security" envPrefix:"SECURITY_"`
	Tracing   Tracing   `yaml:"tracing" envPrefix:"TRACING_"`
	Providers Providers `yaml:"providers" envPrefix:"PROVIDERS_"`
}

type App struct {
	// dev | staging | prod
	Env string `yaml:"env" env:"ENV"`
	// BaseURL pública del servicio (ej: https://accounts.example.com). Si está
	// vacío, se deriva del request (Host + X-Forwarded-Proto).
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// AllowedRedirectHosts limita los destinos post-vinculación. Vacío = cualquiera.
	AllowedRedirectHosts []string `yaml:"allowed_redirect_hosts" env:"ALLOWED_REDIRECT_HOSTS" envSeparator:","`
}

type Server struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// TrustForwarded habilita X-Forwarded-Proto/Host al derivar la URL de callback.
	TrustForwarded bool `yaml:"trust_forwarded" env:"TRUST_FORWARDED"`
	// RateLimit por IP sobre /v1/accounts. Requests 0 = deshabilitado.
	RateLimit RateLimit `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

type RateLimit struct {
	Requests int           `yaml:"requests" env:"REQUESTS"`
	Window   time.Duration `yaml:"window" env:"WINDOW"`
}

type Log struct {
	Level string `yaml:"level" env:"LEVEL"`
}

type Storage struct {
	// postgres | sqlite
	Driver   string `yaml:"driver" env:"DRIVER"`
	DSN      string `yaml:"dsn" env:"DSN"`
	MaxConns int32  `yaml:"max_conns" env:"MAX_CONNS"`
}

type Cache struct {
	// memory | redis
	Kind  string `yaml:"kind" env:"KIND"`
	Redis struct {
		Addr     string `yaml:"addr" env:"ADDR"`
		Password string `yaml:"password" env:"PASSWORD"`
		DB       int    `yaml:"db" env:"DB"`
		Prefix   string `yaml:"prefix" env:"PREFIX"`
	} `yaml:"redis" envPrefix:"REDIS_"`
	Memory struct {
		DefaultTTL time.Duration `yaml:"default_ttl" env:"DEFAULT_TTL"`
	} `yaml:"memory" envPrefix:"MEMORY_"`
}

type Session struct {
	// NonceTTL vida de la entrada nonce→secret del handshake OAuth1.
	NonceTTL time.Duration `yaml:"nonce_ttl" env:"NONCE_TTL"`
}

type Outbound struct {
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	MaxRedirects   int           `yaml:"max_redirects" env:"MAX_REDIRECTS"`
	// InsecureSkipVerify SOLO para mocks locales de providers.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" env:"INSECURE_SKIP_VERIFY"`
}

type Security struct {
	// SecretboxKey (base64 o hex, 32 bytes) para sellar auth_data. Vacío = sin cifrado.
	SecretboxKey string `yaml:"secretbox_key" env:"SECRETBOX_KEY"`
}

type Tracing struct {
	// Endpoint URL OTLP/HTTP (ej: http://localhost:4318). Vacío = tracing deshabilitado.
	Endpoint    string `yaml:"endpoint" env:"ENDPOINT"`
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
}

type Providers struct {
	Twitter  Twitter     `yaml:"twitter" envPrefix:"TWITTER_"`
	Google   OAuth2Creds `yaml:"google" envPrefix:"GOOGLE_"`
	Facebook OAuth2Creds `yaml:"facebook" envPrefix:"FACEBOOK_"`
}

type Twitter struct {
	Enabled        bool   `yaml:"enabled" env:"ENABLED"`
	ConsumerKey    string `yaml:"consumer_key" env:"CONSUMER_KEY"`
	ConsumerSecret string `yaml:"consumer_secret" env:"CONSUMER_SECRET"`
	FetchProfile   bool   `yaml:"fetch_profile" env:"FETCH_PROFILE"`
}

type OAuth2Creds struct {
	Enabled      bool   `yaml:"enabled" env:"ENABLED"`
	ClientID     string `yaml:"client_id" env:"CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"CLIENT_SECRET"`
	FetchProfile bool   `yaml:"fetch_profile" env:"FETCH_PROFILE"`
}

// Load lee el YAML en path (si no es vacío), aplica overrides de entorno y
// defaults, y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnvOverrides() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}

// sane defaults
func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	c.App.BaseURL = strings.TrimRight(c.App.BaseURL, "/")
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Server.RateLimit.Requests > 0 && c.Server.RateLimit.Window == 0 {
		c.Server.RateLimit.Window = time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Driver == "sqlite" && c.Storage.DSN == "" {
		c.Storage.DSN = "accounts.db"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "accounts"
	}
	if c.Cache.Memory.DefaultTTL == 0 {
		c.Cache.Memory.DefaultTTL = 10 * time.Minute
	}
	if c.Session.NonceTTL == 0 {
		c.Session.NonceTTL = 10 * time.Minute
	}
	if c.Outbound.ConnectTimeout == 0 {
		c.Outbound.ConnectTimeout = 5 * time.Second
	}
	if c.Outbound.RequestTimeout == 0 {
		c.Outbound.RequestTimeout = 15 * time.Second
	}
	if c.Outbound.MaxRedirects == 0 {
		c.Outbound.MaxRedirects = 10
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "hellojohn-accounts"
	}
}

// Validate verifica los valores críticos. Devuelve todos los problemas juntos.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn es requerido para postgres"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("storage.driver inválido %q (postgres|sqlite)", c.Storage.Driver))
	}

	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("cache.kind inválido %q (memory|redis)", c.Cache.Kind))
	}

	for name, d := range map[string]time.Duration{
		"session.nonce_ttl":        c.Session.NonceTTL,
		"outbound.connect_timeout": c.Outbound.ConnectTimeout,
		"outbound.request_timeout": c.Outbound.RequestTimeout,
		"server.rate_limit.window": c.Server.RateLimit.Window,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s debe ser > 0", name))
		}
	}

	if t := c.Providers.Twitter; t.Enabled && (t.ConsumerKey == "" || t.ConsumerSecret == "") {
		errs = append(errs, errors.New("providers.twitter habilitado sin consumer_key/consumer_secret"))
	}
	if g := c.Providers.Google; g.Enabled && (g.ClientID == "" || g.ClientSecret == "") {
		errs = append(errs, errors.New("providers.google habilitado sin client_id/client_secret"))
	}
	if f := c.Providers.Facebook; f.Enabled && (f.ClientID == "" || f.ClientSecret == "") {
		errs = append(errs, errors.New("providers.facebook habilitado sin client_id/client_secret"))
	}

	if c.App.BaseURL != "" && !strings.HasPrefix(c.App.BaseURL, "http://") && !strings.HasPrefix(c.App.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("app.base_url debe ser absoluta: %q", c.App.BaseURL))
	}

	return errors.Join(errs...)
}

// IsProd indica si el entorno es producción.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod")
}
