package config

import (
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/okhi/okcollect/internal/domain"
)

// CLI is the configuration for the okcollect developer CLI, which runs one
// address-collection session against a simulated native bridge.
type CLI struct {
	App App

	Phone     string
	FirstName string
	LastName  string
	Email     string

	Platform   string
	ListenAddr string
	DBPath     string
	LogLevel   string
	Timeout    time.Duration

	// PermissionsOnboarding mirrors the host-app toggle: when explicitly
	// disabled, background location must already be granted before a
	// session may start.
	PermissionsOnboarding bool

	// Verify starts address verification for the collected location before
	// the CLI exits.
	Verify bool
}

const defaultListenAddr = "127.0.0.1:4331"
const defaultDBPath = "./okcollect.db"
const defaultSessionTimeout = 10 * time.Minute

// fileConfig is the okcollect.toml schema. Credentials usually live here so
// they stay out of shell history.
type fileConfig struct {
	BranchID  string `toml:"branch_id"`
	ClientKey string `toml:"client_key"`
	Mode      string `toml:"mode"`
	DevTag    string `toml:"dev_tag"`
	App       struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
		Build   string `toml:"build"`
	} `toml:"app"`
}

// LoadFile reads a TOML credentials file into an App configuration.
func LoadFile(path string) (App, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return App{}, err
	}
	return App{
		BranchID:  strings.TrimSpace(fc.BranchID),
		ClientKey: strings.TrimSpace(fc.ClientKey),
		Mode:      normalizeMode(fc.Mode),
		DevTag:    strings.TrimSpace(fc.DevTag),
		App: domain.AppMeta{
			Name:    fc.App.Name,
			Version: fc.App.Version,
			Build:   fc.App.Build,
		},
	}, nil
}

// ParseCLIFlags builds the CLI configuration from, in increasing precedence:
// an optional TOML file, OKCOLLECT_* environment variables, and flags.
func ParseCLIFlags(args []string) (CLI, error) {
	cfg := CLI{
		Phone:                 envOrDefault("OKCOLLECT_PHONE", ""),
		Platform:              envOrDefault("OKCOLLECT_PLATFORM", string(domain.PlatformAndroid)),
		ListenAddr:            envOrDefault("OKCOLLECT_LISTEN", defaultListenAddr),
		DBPath:                envOrDefault("OKCOLLECT_DB_PATH", defaultDBPath),
		LogLevel:              envOrDefault("OKCOLLECT_LOG_LEVEL", "info"),
		Timeout:               defaultSessionTimeout,
		PermissionsOnboarding: true,
		App: App{
			BranchID:  envOrDefault("OKCOLLECT_BRANCH_ID", ""),
			ClientKey: envOrDefault("OKCOLLECT_CLIENT_KEY", ""),
		},
	}

	var configPath string
	// Mode stays a raw string until all sources are merged: empty means
	// neither flag nor env set it, letting the file value take effect.
	mode := envOrDefault("OKCOLLECT_MODE", "")
	fs := flag.NewFlagSet("okcollect", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", envOrDefault("OKCOLLECT_CONFIG", ""), "Path to okcollect.toml credentials file")
	fs.StringVar(&cfg.Phone, "phone", cfg.Phone, "User phone number (MSISDN format)")
	fs.StringVar(&cfg.FirstName, "first-name", cfg.FirstName, "User first name")
	fs.StringVar(&cfg.LastName, "last-name", cfg.LastName, "User last name")
	fs.StringVar(&cfg.Email, "email", cfg.Email, "User email")
	fs.StringVar(&cfg.Platform, "platform", cfg.Platform, "Simulated platform: android|ios")
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "Local frame bridge listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Simulated bridge SQLite database path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	fs.StringVar(&cfg.App.BranchID, "branch-id", cfg.App.BranchID, "Branch API credential")
	fs.StringVar(&cfg.App.ClientKey, "client-key", cfg.App.ClientKey, "Client API credential")
	fs.StringVar(&mode, "mode", mode, "Environment: sandbox|prod|dev")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Session timeout")
	fs.BoolVar(&cfg.PermissionsOnboarding, "permissions-onboarding", cfg.PermissionsOnboarding, "Let the frame walk the user through location permissions")
	fs.BoolVar(&cfg.Verify, "verify", os.Getenv("OKCOLLECT_VERIFY") == "1", "Start verification for the collected address")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if configPath != "" {
		fileApp, err := LoadFile(configPath)
		if err != nil {
			return cfg, err
		}
		if cfg.App.BranchID == "" {
			cfg.App.BranchID = fileApp.BranchID
		}
		if cfg.App.ClientKey == "" {
			cfg.App.ClientKey = fileApp.ClientKey
		}
		if mode == "" {
			mode = string(fileApp.Mode)
		}
		if cfg.App.DevTag == "" {
			cfg.App.DevTag = fileApp.DevTag
		}
		if cfg.App.App == (domain.AppMeta{}) {
			cfg.App.App = fileApp.App
		}
	}
	cfg.App.Mode = normalizeMode(mode)

	cfg.Phone = strings.TrimSpace(cfg.Phone)
	if cfg.Phone == "" {
		return cfg, errors.New("missing --phone or OKCOLLECT_PHONE")
	}
	if err := cfg.App.Validate(); err != nil {
		return cfg, err
	}
	switch domain.Platform(cfg.Platform) {
	case domain.PlatformAndroid, domain.PlatformIOS:
	default:
		return cfg, errors.New("platform must be one of: android, ios")
	}

	return cfg, nil
}

func normalizeMode(v string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(v))) {
	case ModeProd:
		return ModeProd
	case ModeDev:
		return ModeDev
	default:
		return ModeSandbox
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
