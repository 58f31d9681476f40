package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Sammers21/owl-esports/internal/dom"
	"github.com/Sammers21/owl-esports/internal/logging"
)

type SinkKind string

const (
	SinkHTTP      SinkKind = "http"
	SinkClipboard SinkKind = "clipboard"
	SinkNone      SinkKind = "none"
)

var ErrInvalidConfig = errors.New("invalid config")

// Extractor configures one extraction run. Variables carry the OWL_ prefix.
type Extractor struct {
	PageTitle string `envconfig:"PAGE_TITLE" default:"Dota2 Scoreboard"`

	// Empty values keep the built-in structural paths.
	LeftTeamXPath    string `envconfig:"LEFT_TEAM_XPATH"`
	RightTeamXPath   string `envconfig:"RIGHT_TEAM_XPATH"`
	LeftHeroesXPath  string `envconfig:"LEFT_HEROES_XPATH"`
	RightHeroesXPath string `envconfig:"RIGHT_HEROES_XPATH"`

	Sink            SinkKind      `envconfig:"SINK" default:"http"`
	TrackerURL      string        `envconfig:"TRACKER_URL" default:"https://pvpq.net"`
	TrackerID       string        `envconfig:"TRACKER_ID"`
	DeliveryTimeout time.Duration `envconfig:"DELIVERY_TIMEOUT" default:"10s"`
	DeliveryRPS     float64       `envconfig:"DELIVERY_RPS" default:"0"`

	Log
}

// Server configures the pick-tracking server. Variables are unprefixed.
type Server struct {
	Port        int      `envconfig:"PORT" default:"8080"`
	DatabaseURL string   `envconfig:"DATABASE_URL"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
	HistorySize int      `envconfig:"HISTORY_SIZE" default:"20"`

	// Directory of <hero>.json counter files; empty disables win rates.
	CountersDir    string        `envconfig:"COUNTERS_DIR"`
	CountersReload time.Duration `envconfig:"COUNTERS_RELOAD" default:"24h"`

	Log
}

type Log struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

func (l Log) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Development = l.Development
	return cfg
}

// LoadExtractor reads OWL_* variables, after loading envFiles (or ./.env when
// none are given) if present.
func LoadExtractor(envFiles ...string) (*Extractor, error) {
	cfg, err := ReadExtractor(envFiles...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadExtractor is LoadExtractor without validation, for callers that
// override fields (command-line flags) before calling Validate.
func ReadExtractor(envFiles ...string) (*Extractor, error) {
	loadDotenv(envFiles)
	var cfg Extractor
	if err := envconfig.Process("OWL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load extractor config: %w", err)
	}
	return &cfg, nil
}

func LoadServer(envFiles ...string) (*Server, error) {
	loadDotenv(envFiles)
	var cfg Server
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, cfg.Port)
	}
	if cfg.HistorySize <= 0 {
		return nil, fmt.Errorf("%w: history size must be positive", ErrInvalidConfig)
	}
	if cfg.CountersReload < 0 {
		return nil, fmt.Errorf("%w: counters reload interval must not be negative", ErrInvalidConfig)
	}
	return &cfg, nil
}

func (c *Extractor) Validate() error {
	switch c.Sink {
	case SinkHTTP:
		if c.TrackerURL == "" {
			return fmt.Errorf("%w: OWL_TRACKER_URL is required for the http sink", ErrInvalidConfig)
		}
		if c.TrackerID == "" {
			return fmt.Errorf("%w: OWL_TRACKER_ID is required for the http sink", ErrInvalidConfig)
		}
	case SinkClipboard, SinkNone:
	default:
		return fmt.Errorf("%w: unknown sink %q", ErrInvalidConfig, c.Sink)
	}
	if c.DeliveryTimeout <= 0 {
		return fmt.Errorf("%w: delivery timeout must be positive", ErrInvalidConfig)
	}
	if c.DeliveryRPS < 0 {
		return fmt.Errorf("%w: delivery rate must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Paths overlays the configured XPaths on dom.DefaultPaths.
func (c *Extractor) Paths() dom.Paths {
	paths := dom.DefaultPaths()
	overrides := map[dom.Role]string{
		dom.RoleLeftTeam:    c.LeftTeamXPath,
		dom.RoleRightTeam:   c.RightTeamXPath,
		dom.RoleLeftHeroes:  c.LeftHeroesXPath,
		dom.RoleRightHeroes: c.RightHeroesXPath,
	}
	for role, path := range overrides {
		if path != "" {
			paths[role] = path
		}
	}
	return paths
}

func loadDotenv(files []string) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load(files...)
}
