package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownBackend              = errors.New("unknown backend")
	ErrInvalidDefinitionPath       = errors.New("upstream definition path must contain exactly one %d")
)

const (
	BackendHTTP  = "http"
	BackendMongo = "mongo"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string   `mapstructure:"env"`     // local, production
	Backend  string   `mapstructure:"backend"` // where definitions come from and responses go: http or mongo
	HTTP     HTTP     `mapstructure:"http"`
	Upstream Upstream `mapstructure:"upstream"`
	Mongo    Mongo    `mapstructure:"mongo"`
	Redis    Redis    `mapstructure:"redis"`
	Auth     Auth     `mapstructure:"auth"`
	Sessions Sessions `mapstructure:"sessions"`
	CORS     CORS     `mapstructure:"cors"`
}

type HTTP struct {
	Port string `mapstructure:"port"`
}

// Upstream is the survey backend's REST API.
type Upstream struct {
	BaseURL        string        `mapstructure:"base_url"`
	Token          string        `mapstructure:"-"` // loaded from UPSTREAM_TOKEN
	DefinitionPath string        `mapstructure:"definition_path"`
	SubmitPath     string        `mapstructure:"submit_path"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type Mongo struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// Redis caches survey definitions. An empty address disables the cache.
type Redis struct {
	Addr          string        `mapstructure:"addr"`
	DefinitionTTL time.Duration `mapstructure:"definition_ttl"`
}

type Auth struct {
	JWTSecret  string        `mapstructure:"-"` // loaded from AUTH_JWT_SECRET
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// Secret returns the signing key for session tokens if it is configured.
func (a Auth) Secret() ([]byte, error) {
	if a.JWTSecret == "" {
		return nil, fmt.Errorf("%w: AUTH_JWT_SECRET", ErrMissingEnvironmentVariables)
	}
	return []byte(a.JWTSecret), nil
}

type Sessions struct {
	MaxIdle       time.Duration `mapstructure:"max_idle"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from an optional .env file, an optional config
// file and environment variables. An empty path looks for ./config/config.yaml.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}

	v.SetDefault("env", "local")
	v.SetDefault("backend", BackendHTTP)
	v.SetDefault("http.port", "8080")
	v.SetDefault("upstream.base_url", "")
	v.SetDefault("upstream.definition_path", "/surveys/%d")
	v.SetDefault("upstream.submit_path", "/responses")
	v.SetDefault("upstream.timeout", "30s")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "surveyflow")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.definition_ttl", "5m")
	v.SetDefault("auth.session_ttl", "24h")
	v.SetDefault("sessions.max_idle", "2h")
	v.SetDefault("sessions.sweep_interval", "1m")
	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("http.port", "HTTP_PORT", "PORT")
	_ = v.BindEnv("upstream_token", "UPSTREAM_TOKEN")
	_ = v.BindEnv("auth_jwt_secret", "AUTH_JWT_SECRET", "JWT_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.Upstream.Token = v.GetString("upstream_token")
	cfg.Auth.JWTSecret = v.GetString("auth_jwt_secret")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendHTTP:
		if c.Upstream.BaseURL == "" {
			return fmt.Errorf("%w: UPSTREAM_BASE_URL", ErrMissingEnvironmentVariables)
		}
		// The survey id is formatted into the path.
		p := c.Upstream.DefinitionPath
		if strings.Count(p, "%") != 1 || strings.Count(p, "%d") != 1 {
			return fmt.Errorf("%w: %q", ErrInvalidDefinitionPath, p)
		}
	case BackendMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("%w: MONGO_URI", ErrMissingEnvironmentVariables)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	return nil
}
