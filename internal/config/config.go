package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	TierProd = "prod"
	TierDev  = "dev"

	defaultAPIURLProd = "https://api.stellar.quest"
	defaultAPIURLDev  = "https://api-dev.stellar.quest"

	defaultSiteURLProd = "https://quest.stellar.org"
	defaultSiteURLDev  = "https://quest-dev.stellar.org"

	defaultRulesURL     = "https://quest.stellar.org/rules/series-5"
	defaultSandboxURL   = "http://localhost:8000"
	defaultFriendbotURL = "https://friendbot-futurenet.stellar.org"

	defaultSecretKeyPath = "/workspace/.soroban-secret-key"
	defaultSeries        = 5
)

type GlobalFlags struct {
	ConfigPath string
	Timeout    string
	Verbose    bool
}

type Settings struct {
	APIURLOverride  string
	SiteURLOverride string
	RulesURL        string
	SandboxURL      string
	FriendbotURL    string
	SecretKeyPath   string
	Series          int
	Timeout         time.Duration
	PollInterval    time.Duration
	LoginTimeout    time.Duration
	KeystorePath    string
	KeystoreLock    string
	Verbose         bool
}

type fileConfig struct {
	APIURL        string `yaml:"api_url"`
	SiteURL       string `yaml:"site_url"`
	RulesURL      string `yaml:"rules_url"`
	SandboxURL    string `yaml:"sandbox_url"`
	FriendbotURL  string `yaml:"friendbot_url"`
	SecretKeyPath string `yaml:"secret_key_path"`
	Series        *int   `yaml:"series"`
	Timeout       string `yaml:"timeout"`
	PollInterval  string `yaml:"poll_interval"`
	LoginTimeout  string `yaml:"login_timeout"`
	Keystore      struct {
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"keystore"`
}

func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}

	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	applyEnv(&settings)

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.Timeout <= 0 {
		settings.Timeout = 10 * time.Second
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = 5 * time.Second
	}
	if settings.LoginTimeout <= 0 {
		settings.LoginTimeout = 5 * time.Minute
	}
	if settings.Series <= 0 {
		settings.Series = defaultSeries
	}

	return settings, nil
}

// Tier normalizes the ENV workspace variable into a deployment tier.
// Anything other than "prod" selects the dev endpoints.
func Tier(env string) string {
	if env == TierProd {
		return TierProd
	}
	return TierDev
}

func (s Settings) APIURL(tier string) string {
	if s.APIURLOverride != "" {
		return s.APIURLOverride
	}
	if tier == TierProd {
		return defaultAPIURLProd
	}
	return defaultAPIURLDev
}

func (s Settings) SiteURL(tier string) string {
	if s.SiteURLOverride != "" {
		return s.SiteURLOverride
	}
	if tier == TierProd {
		return defaultSiteURLProd
	}
	return defaultSiteURLDev
}

func defaultSettings() (Settings, error) {
	keysPath, lockPath, err := defaultKeystorePaths()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		RulesURL:      defaultRulesURL,
		SandboxURL:    defaultSandboxURL,
		FriendbotURL:  defaultFriendbotURL,
		SecretKeyPath: defaultSecretKeyPath,
		Series:        defaultSeries,
		Timeout:       10 * time.Second,
		PollInterval:  5 * time.Second,
		LoginTimeout:  5 * time.Minute,
		KeystorePath:  keysPath,
		KeystoreLock:  lockPath,
	}, nil
}

func resolveConfigPath(input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "sq", "config.yaml"), nil
}

func defaultKeystorePaths() (string, string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(base, "sq")
	return filepath.Join(dir, "keys.db"), filepath.Join(dir, "keys.lock"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.APIURL != "" {
		settings.APIURLOverride = cfg.APIURL
	}
	if cfg.SiteURL != "" {
		settings.SiteURLOverride = cfg.SiteURL
	}
	if cfg.RulesURL != "" {
		settings.RulesURL = cfg.RulesURL
	}
	if cfg.SandboxURL != "" {
		settings.SandboxURL = cfg.SandboxURL
	}
	if cfg.FriendbotURL != "" {
		settings.FriendbotURL = cfg.FriendbotURL
	}
	if cfg.SecretKeyPath != "" {
		settings.SecretKeyPath = cfg.SecretKeyPath
	}
	if cfg.Series != nil {
		settings.Series = *cfg.Series
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.PollInterval != "" {
		d, err := time.ParseDuration(cfg.PollInterval)
		if err != nil {
			return fmt.Errorf("config poll_interval: %w", err)
		}
		settings.PollInterval = d
	}
	if cfg.LoginTimeout != "" {
		d, err := time.ParseDuration(cfg.LoginTimeout)
		if err != nil {
			return fmt.Errorf("config login_timeout: %w", err)
		}
		settings.LoginTimeout = d
	}
	if cfg.Keystore.Path != "" {
		settings.KeystorePath = cfg.Keystore.Path
	}
	if cfg.Keystore.LockPath != "" {
		settings.KeystoreLock = cfg.Keystore.LockPath
	}

	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("SQ_API_URL"); v != "" {
		settings.APIURLOverride = v
	}
	if v := os.Getenv("SQ_SITE_URL"); v != "" {
		settings.SiteURLOverride = v
	}
	if v := os.Getenv("SQ_RULES_URL"); v != "" {
		settings.RulesURL = v
	}
	if v := os.Getenv("SQ_SANDBOX_URL"); v != "" {
		settings.SandboxURL = v
	}
	if v := os.Getenv("SQ_FRIENDBOT_URL"); v != "" {
		settings.FriendbotURL = v
	}
	if v := os.Getenv("SQ_SECRET_KEY_PATH"); v != "" {
		settings.SecretKeyPath = v
	}
	if v := os.Getenv("SQ_SERIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			settings.Series = n
		}
	}
	if v := os.Getenv("SQ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv("SQ_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.PollInterval = d
		}
	}
	if v := os.Getenv("SQ_LOGIN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.LoginTimeout = d
		}
	}
	if v := os.Getenv("SQ_KEYSTORE_PATH"); v != "" {
		settings.KeystorePath = v
	}
	if v := os.Getenv("SQ_KEYSTORE_LOCK_PATH"); v != "" {
		settings.KeystoreLock = v
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	settings.Verbose = flags.Verbose
	return nil
}
