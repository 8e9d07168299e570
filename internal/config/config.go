package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration. Precedence per field:
// environment variable > config file > default.
type Config struct {
	// Credentials (env only, never from the config file).
	PrivateKey     string
	Mnemonic       string
	FunderAddress  string
	ClobAPIKey     string
	ClobSecret     string
	ClobPassphrase string

	// Venue.
	ClobHost string
	ChainID  int64

	// Instruments to quote (daily up-or-down markets).
	Tickers []string

	// Quoting parameters.
	SpreadPct        float64 // fraction of max incentive spread used as half-spread
	SizeOverride     float64 // fixed order size in shares, 0 = use market min incentive size
	RefreshThreshold float64 // fractional midpoint drift before cancel+re-place
	MinQuotableMid   float64 // park the market below this midpoint
	DustThreshold    float64 // shares below this are residual noise, not a position

	// Exit parameters.
	ExitEscalationSeconds int     // decay horizon from full profit to breakeven
	StopLossPct           float64 // adverse mid move fraction that triggers stop-loss
	ExitCooldownSeconds   int     // wait after a benign balance race before retrying

	// Loop.
	PollIntervalSeconds int
	FetchConcurrency    int64
	ShutdownTime        string // ET wall clock "HH:MM", empty disables the daily cutoff

	// Logging.
	LogLevel string
	LogFile  string
	DryRun   bool
}

// configFile is the YAML shape. Everything is optional.
type configFile struct {
	ClobHost string   `yaml:"clob_host"`
	ChainID  int64    `yaml:"chain_id"`
	Tickers  []string `yaml:"tickers"`

	SpreadPct        float64 `yaml:"spread_pct"`
	SizeOverride     float64 `yaml:"size_override"`
	RefreshThreshold float64 `yaml:"refresh_threshold"`
	MinQuotableMid   float64 `yaml:"min_quotable_mid"`
	DustThreshold    *float64 `yaml:"dust_threshold"`

	ExitEscalationSeconds int     `yaml:"exit_escalation_seconds"`
	StopLossPct           float64 `yaml:"stop_loss_pct"`
	ExitCooldownSeconds   *int    `yaml:"exit_cooldown_seconds"`

	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	FetchConcurrency    int64  `yaml:"fetch_concurrency"`
	ShutdownTime        string `yaml:"shutdown_time"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	DryRun   bool   `yaml:"dry_run"`
}

// Load reads the optional YAML file at path (empty path skips it), applies
// environment overrides, and validates. Call godotenv.Load before this so
// .env values are visible.
func Load(path string) (*Config, error) {
	var file configFile
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	dust := 1.0
	if file.DustThreshold != nil {
		dust = *file.DustThreshold
	}
	cooldown := 3
	if file.ExitCooldownSeconds != nil {
		cooldown = *file.ExitCooldownSeconds
	}

	cfg := &Config{
		PrivateKey:     getEnv("PRIVATE_KEY", ""),
		Mnemonic:       getEnv("MNEMONIC", ""),
		FunderAddress:  getEnv("FUNDER_ADDRESS", ""),
		ClobAPIKey:     getEnv("CLOB_API_KEY", ""),
		ClobSecret:     getEnv("CLOB_SECRET", ""),
		ClobPassphrase: getEnv("CLOB_PASSPHRASE", ""),

		ClobHost: pickString(getEnv("CLOB_HOST", ""), file.ClobHost, "https://clob.polymarket.com"),
		ChainID:  pickInt64(envInt64("CHAIN_ID"), file.ChainID, 137),

		Tickers: pickTickers(getEnv("TICKERS", ""), file.Tickers, []string{"AAPL", "TSLA", "NVDA"}),

		SpreadPct:        pickFloat(envFloat("SPREAD_PCT"), file.SpreadPct, 0.8),
		SizeOverride:     pickFloat(envFloat("SIZE_OVERRIDE"), file.SizeOverride, 0),
		RefreshThreshold: pickFloat(envFloat("REFRESH_THRESHOLD"), file.RefreshThreshold, 0.02),
		MinQuotableMid:   pickFloat(envFloat("MIN_QUOTABLE_MID"), file.MinQuotableMid, 0.05),
		DustThreshold:    pickFloat(envFloat("DUST_THRESHOLD"), dust, dust),

		ExitEscalationSeconds: pickInt(envInt("EXIT_ESCALATION_SECONDS"), file.ExitEscalationSeconds, 1800),
		StopLossPct:           pickFloat(envFloat("STOP_LOSS_PCT"), file.StopLossPct, 0.05),
		ExitCooldownSeconds:   pickInt(envInt("EXIT_COOLDOWN_SECONDS"), cooldown, cooldown),

		PollIntervalSeconds: pickInt(envInt("POLL_INTERVAL_SECONDS"), file.PollIntervalSeconds, 30),
		FetchConcurrency:    pickInt64(envInt64("FETCH_CONCURRENCY"), file.FetchConcurrency, 3),
		ShutdownTime:        pickString(getEnv("SHUTDOWN_TIME", ""), file.ShutdownTime, "15:50"),

		LogLevel: pickString(getEnv("LOG_LEVEL", ""), file.LogLevel, "info"),
		LogFile:  pickString(getEnv("LOG_FILE", ""), file.LogFile, "logs/mm.log"),
		DryRun:   envBool("DRY_RUN") || file.DryRun,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.PrivateKey == "" && c.Mnemonic == "" {
		return errors.New("PRIVATE_KEY or MNEMONIC is required")
	}
	if len(c.Tickers) == 0 {
		return errors.New("at least one ticker is required")
	}
	if c.SpreadPct <= 0 || c.SpreadPct > 1 {
		return errors.Errorf("spread_pct must be in (0, 1], got %v", c.SpreadPct)
	}
	if c.RefreshThreshold <= 0 {
		return errors.Errorf("refresh_threshold must be positive, got %v", c.RefreshThreshold)
	}
	if c.MinQuotableMid <= 0 || c.MinQuotableMid >= 0.5 {
		return errors.Errorf("min_quotable_mid must be in (0, 0.5), got %v", c.MinQuotableMid)
	}
	if c.DustThreshold < 0 {
		return errors.Errorf("dust_threshold must be non-negative, got %v", c.DustThreshold)
	}
	if c.ExitEscalationSeconds <= 0 {
		return errors.Errorf("exit_escalation_seconds must be positive, got %d", c.ExitEscalationSeconds)
	}
	if c.StopLossPct <= 0 || c.StopLossPct >= 1 {
		return errors.Errorf("stop_loss_pct must be in (0, 1), got %v", c.StopLossPct)
	}
	if c.PollIntervalSeconds <= 0 {
		return errors.Errorf("poll_interval_seconds must be positive, got %d", c.PollIntervalSeconds)
	}
	if c.FetchConcurrency <= 0 {
		return errors.Errorf("fetch_concurrency must be positive, got %d", c.FetchConcurrency)
	}
	if c.ShutdownTime != "" {
		if _, err := time.Parse("15:04", c.ShutdownTime); err != nil {
			return errors.Errorf("shutdown_time must be HH:MM, got %q", c.ShutdownTime)
		}
	}
	return nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c *Config) ExitEscalation() time.Duration {
	return time.Duration(c.ExitEscalationSeconds) * time.Second
}

func (c *Config) ExitCooldown() time.Duration {
	return time.Duration(c.ExitCooldownSeconds) * time.Second
}

// HasApiCreds reports whether all three L2 credential parts are set.
func (c *Config) HasApiCreds() bool {
	return c.ClobAPIKey != "" && c.ClobSecret != "" && c.ClobPassphrase != ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envFloat(key string) *float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func envInt(key string) *int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func envInt64(key string) *int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "true" || v == "1" || v == "yes"
}

func pickString(env, file, def string) string {
	if env != "" {
		return env
	}
	if file != "" {
		return file
	}
	return def
}

func pickFloat(env *float64, file, def float64) float64 {
	if env != nil {
		return *env
	}
	if file != 0 {
		return file
	}
	return def
}

func pickInt(env *int, file, def int) int {
	if env != nil {
		return *env
	}
	if file != 0 {
		return file
	}
	return def
}

func pickInt64(env *int64, file, def int64) int64 {
	if env != nil {
		return *env
	}
	if file != 0 {
		return file
	}
	return def
}

// pickTickers parses a comma-separated env list, else the file list, else
// the default. Tickers are upper-cased.
func pickTickers(env string, file, def []string) []string {
	var raw []string
	switch {
	case env != "":
		raw = strings.Split(env, ",")
	case len(file) > 0:
		raw = file
	default:
		raw = def
	}
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
