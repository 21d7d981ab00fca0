package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
)

// ApplyMode controls whether a diff run also executes the generated SQL against the
// destination.
type ApplyMode string

const (
	ApplyModeDiffOnly ApplyMode = "diff_only"
	ApplyModeApply    ApplyMode = "apply"
)

type Config struct {
	ApplyMode ApplyMode     `env:"APPLY_MODE" envDefault:"diff_only"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"5m"`

	// Connection Pool
	ConnPoolSize    int           `env:"CONN_POOL_SIZE" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`

	// Observability & Debugging
	DebugMode         bool `env:"DEBUG_MODE" envDefault:"false"`
	EnableJsonLogging bool `env:"ENABLE_JSON_LOGGING" envDefault:"false"`
	EnablePprof       bool `env:"ENABLE_PPROF" envDefault:"false"`
	MetricsPort       int  `env:"METRICS_PORT" envDefault:"9091"`

	// TypeMappingFilePath, when set, points at a YAML profile overriding how native
	// column types from cross-dialect introspection normalize into the shared
	// vocabulary internal/differ compares against. See internal/config.LoadProfile.
	TypeMappingFilePath string `env:"TYPE_MAPPING_FILE_PATH"`

	// Vault
	VaultEnabled    bool   `env:"VAULT_ENABLED" envDefault:"false"`
	VaultAddr       string `env:"VAULT_ADDR" envDefault:"https://127.0.0.1:8200"`
	VaultToken      string `env:"VAULT_TOKEN"`
	VaultCACert     string `env:"VAULT_CACERT"`
	VaultSkipVerify bool   `env:"VAULT_SKIP_VERIFY" envDefault:"false"`

	SrcDB DatabaseConfig `envPrefix:"SRC_"`
	DstDB DatabaseConfig `envPrefix:"DST_"`
}

type DatabaseConfig struct {
	Dialect string `env:"DIALECT,required"`
	Host    string `env:"HOST"`
	Port    int    `env:"PORT"`
	User    string `env:"USER"`
	Password string `env:"PASSWORD"`
	DBName  string `env:"DBNAME"`
	SSLMode string `env:"SSLMODE" envDefault:"disable"`

	// VaultSecretPath, when non-empty and Password is empty, supplies credentials
	// fetched at startup from internal/secrets (see cmd/schemadiff wiring); a
	// configured Password takes precedence over it.
	VaultSecretPath string `env:"VAULT_SECRET_PATH"`
}

// Load parses process configuration from the environment with
// github.com/caarlos0/env/v8, the same shape the teacher's internal/config/config.go
// uses, trimmed to the source/target dialect+connection pair this engine needs.
func Load() (*Config, error) {
	cfg := &Config{}
	opts := env.Options{RequiredIfNoDef: true}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config parsing error: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.ApplyMode != ApplyModeDiffOnly && cfg.ApplyMode != ApplyModeApply {
		return fmt.Errorf("invalid apply mode: %s. Valid options: %s, %s", cfg.ApplyMode, ApplyModeDiffOnly, ApplyModeApply)
	}

	allowedDialects := map[string]bool{"mysql": true, "postgres": true, "sqlite": true, "sqlserver": true}
	if !allowedDialects[strings.ToLower(cfg.SrcDB.Dialect)] {
		return fmt.Errorf("invalid source dialect: %s. Valid options: %v", cfg.SrcDB.Dialect, getMapKeys(allowedDialects))
	}
	if !allowedDialects[strings.ToLower(cfg.DstDB.Dialect)] {
		return fmt.Errorf("invalid destination dialect: %s. Valid options: %v", cfg.DstDB.Dialect, getMapKeys(allowedDialects))
	}

	if cfg.ApplyMode == ApplyModeApply {
		if err := validatePort(cfg.DstDB.Port, "destination"); err != nil {
			return err
		}
	}
	if err := validatePort(cfg.MetricsPort, "metrics"); err != nil {
		return err
	}
	if cfg.ConnPoolSize <= 0 {
		return fmt.Errorf("connection pool size must be positive")
	}

	validSSL := map[string]bool{
		"disable": true, "allow": true, "prefer": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if isSSLModeRelevant(cfg.SrcDB.Dialect) && !validSSL[strings.ToLower(cfg.SrcDB.SSLMode)] {
		return fmt.Errorf("invalid SSL mode for source DB: %s", cfg.SrcDB.SSLMode)
	}
	if isSSLModeRelevant(cfg.DstDB.Dialect) && !validSSL[strings.ToLower(cfg.DstDB.SSLMode)] {
		return fmt.Errorf("invalid SSL mode for destination DB: %s", cfg.DstDB.SSLMode)
	}

	return nil
}

func validatePort(port int, name string) error {
	if port == 0 {
		return nil
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid %s port: %d", name, port)
	}
	return nil
}

func getMapKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isSSLModeRelevant(dialect string) bool {
	switch strings.ToLower(dialect) {
	case "postgres", "mysql":
		return true
	default:
		return false
	}
}
