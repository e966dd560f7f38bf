package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL         = "https://api.getcircuit.com/public/v0.2b"
	defaultDBPath          = "data/routebuilder.db"
	defaultOutputDir       = "."
	defaultPollIntervalSec = 3
	defaultMaxPollAttempts = 40
	defaultReadRate        = 5.0
	defaultWriteRate       = 2.0
	defaultHTTPTimeoutSec  = 30
	defaultPort            = "8080"
)

// Config holds the settings shared by every routebuilder command.
type Config struct {
	CircuitAPIKey   string
	CircuitBaseURL  string
	DBPath          string
	DatabaseURL     string
	OutputDir       string
	PollInterval    time.Duration
	MaxPollAttempts int
	ReadRate        float64
	WriteRate       float64
	HTTPTimeout     time.Duration
	Port            string
	DepotPlaceID    string
	Path            string
}

type fileConfig struct {
	CircuitBaseURL      string   `yaml:"circuit_base_url"`
	DBPath              string   `yaml:"db_path"`
	DatabaseURL         string   `yaml:"database_url"`
	OutputDir           string   `yaml:"output_dir"`
	PollIntervalSeconds *int     `yaml:"poll_interval_seconds"`
	MaxPollAttempts     *int     `yaml:"max_poll_attempts"`
	ReadRatePerSecond   *float64 `yaml:"read_rate_per_second"`
	WriteRatePerSecond  *float64 `yaml:"write_rate_per_second"`
	HTTPTimeoutSeconds  *int     `yaml:"http_timeout_seconds"`
	Port                string   `yaml:"port"`
	DepotPlaceID        string   `yaml:"depot_place_id"`
}

// Load reads .env, the optional YAML file and the environment, in rising precedence.
// The API key is not required here; commands that call the service check it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	path := Get("ROUTEBUILDER_CONFIG", filepath.Join("config", "routebuilder.yaml"))
	fileCfg, err := loadFileConfig(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load config %q: %w", path, err)
		}
		path = ""
	}

	cfg := Config{
		CircuitAPIKey:  strings.TrimSpace(os.Getenv("CIRCUIT_API_KEY")),
		CircuitBaseURL: strings.TrimRight(firstNonEmpty(os.Getenv("CIRCUIT_BASE_URL"), fileCfg.CircuitBaseURL, DefaultBaseURL), "/"),
		DBPath:         firstNonEmpty(os.Getenv("DB_PATH"), fileCfg.DBPath, defaultDBPath),
		DatabaseURL:    firstNonEmpty(os.Getenv("DATABASE_URL"), fileCfg.DatabaseURL),
		OutputDir:      firstNonEmpty(os.Getenv("OUTPUT_DIR"), fileCfg.OutputDir, defaultOutputDir),
		Port:           firstNonEmpty(os.Getenv("PORT"), fileCfg.Port, defaultPort),
		DepotPlaceID:   firstNonEmpty(os.Getenv("DEPOT_PLACE_ID"), fileCfg.DepotPlaceID),
		Path:           path,
	}

	pollSec, err := intSetting("POLL_INTERVAL_SECONDS", fileCfg.PollIntervalSeconds, defaultPollIntervalSec)
	if err != nil {
		return Config{}, err
	}
	cfg.PollInterval = time.Duration(pollSec) * time.Second

	if cfg.MaxPollAttempts, err = intSetting("MAX_POLL_ATTEMPTS", fileCfg.MaxPollAttempts, defaultMaxPollAttempts); err != nil {
		return Config{}, err
	}

	timeoutSec, err := intSetting("HTTP_TIMEOUT_SECONDS", fileCfg.HTTPTimeoutSeconds, defaultHTTPTimeoutSec)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTPTimeout = time.Duration(timeoutSec) * time.Second

	if cfg.ReadRate, err = floatSetting("READ_RATE_PER_SECOND", fileCfg.ReadRatePerSecond, defaultReadRate); err != nil {
		return Config{}, err
	}
	if cfg.WriteRate, err = floatSetting("WRITE_RATE_PER_SECOND", fileCfg.WriteRatePerSecond, defaultWriteRate); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// RequireAPIKey fails when no routing service key is configured.
func (c Config) RequireAPIKey() error {
	if c.CircuitAPIKey == "" {
		return errors.New("CIRCUIT_API_KEY is required")
	}
	return nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

func intSetting(key string, fromFile *int, fallback int) (int, error) {
	n := fallback
	if fromFile != nil {
		n = *fromFile
	}
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		n = parsed
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func floatSetting(key string, fromFile *float64, fallback float64) (float64, error) {
	f := fallback
	if fromFile != nil {
		f = *fromFile
	}
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		f = parsed
	}
	if f <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %g", key, f)
	}
	return f, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
