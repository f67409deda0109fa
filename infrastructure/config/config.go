package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. SIGNUP_AGENT_MAX_ROUNDS
const EnvPrefix = "SIGNUP"

// Config is the complete runtime configuration
type Config struct {
	Site      SiteConfig    `mapstructure:"site" yaml:"site"`
	Signup    SignupConfig  `mapstructure:"signup" yaml:"signup"`
	Browser   BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Agent     AgentConfig   `mapstructure:"agent" yaml:"agent"`
	OpenAI    OpenAIConfig  `mapstructure:"openai" yaml:"openai"`
	Log       LogConfig     `mapstructure:"log" yaml:"log"`
	OutputDir string        `mapstructure:"output_dir" yaml:"output_dir"`
}

type SiteConfig struct {
	URL          string   `mapstructure:"url" yaml:"url"`
	AllowedHosts []string `mapstructure:"allowed_hosts" yaml:"allowed_hosts"`
}

// SignupConfig holds the account details typed into the form
type SignupConfig struct {
	FirstName string `mapstructure:"first_name" yaml:"first_name"`
	LastName  string `mapstructure:"last_name" yaml:"last_name"`
	Email     string `mapstructure:"email" yaml:"email"`
	Username  string `mapstructure:"username" yaml:"username"`
	Password  string `mapstructure:"password" yaml:"password"`
}

type BrowserConfig struct {
	Headless       bool          `mapstructure:"headless" yaml:"headless"`
	SlowMo         time.Duration `mapstructure:"slow_mo" yaml:"slow_mo"`
	ViewportWidth  int           `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int           `mapstructure:"viewport_height" yaml:"viewport_height"`
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`
	InstallDriver  bool          `mapstructure:"install_driver" yaml:"install_driver"`
}

// AgentConfig tunes the decision loop and tool timeouts
type AgentConfig struct {
	MaxRounds         int           `mapstructure:"max_rounds" yaml:"max_rounds"`
	RoundDelay        time.Duration `mapstructure:"round_delay" yaml:"round_delay"`
	ResolveTimeout    time.Duration `mapstructure:"resolve_timeout" yaml:"resolve_timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	SettleTimeout     time.Duration `mapstructure:"settle_timeout" yaml:"settle_timeout"`
	WaitTimeout       time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	MaxWaitTimeout    time.Duration `mapstructure:"max_wait_timeout" yaml:"max_wait_timeout"`
	TypeDelay         time.Duration `mapstructure:"type_delay" yaml:"type_delay"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	Model       string  `mapstructure:"model" yaml:"model"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	Temperature float32 `mapstructure:"temperature" yaml:"temperature"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// SetDefaults registers a default for every key so env overrides resolve
func SetDefaults(v *viper.Viper) {
	v.SetDefault("site.url", "")
	v.SetDefault("site.allowed_hosts", []string{})

	v.SetDefault("signup.first_name", "")
	v.SetDefault("signup.last_name", "")
	v.SetDefault("signup.email", "")
	v.SetDefault("signup.username", "")
	v.SetDefault("signup.password", "")

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.slow_mo", "0s")
	v.SetDefault("browser.viewport_width", 1280)
	v.SetDefault("browser.viewport_height", 720)
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.install_driver", false)

	v.SetDefault("agent.max_rounds", 25)
	v.SetDefault("agent.round_delay", "0s")
	v.SetDefault("agent.resolve_timeout", "3s")
	v.SetDefault("agent.navigation_timeout", "30s")
	v.SetDefault("agent.action_timeout", "5s")
	v.SetDefault("agent.settle_timeout", "5s")
	v.SetDefault("agent.wait_timeout", "10s")
	v.SetDefault("agent.max_wait_timeout", "120s")
	v.SetDefault("agent.type_delay", "50ms")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.temperature", 0.1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", false)

	v.SetDefault("output_dir", "screenshots")
}

// Load reads .env, an optional YAML file and SIGNUP_* environment overrides.
// An empty path searches ./config.yaml; a missing search result is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The OpenAI variables keep their conventional unprefixed names.
	for key, env := range map[string]string{
		"openai.api_key":  "OPENAI_API_KEY",
		"openai.model":    "OPENAI_MODEL",
		"openai.base_url": "OPENAI_BASE_URL",
	} {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the values a run cannot start without
func (c *Config) Validate() error {
	if c.Site.URL == "" {
		return errors.New("site.url is required")
	}
	u, err := url.Parse(c.Site.URL)
	if err != nil {
		return fmt.Errorf("site.url is invalid: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("site.url must be an absolute http(s) URL, got %q", c.Site.URL)
	}

	if c.Agent.MaxRounds < 1 {
		return fmt.Errorf("agent.max_rounds must be at least 1, got %d", c.Agent.MaxRounds)
	}

	for name, d := range map[string]time.Duration{
		"agent.resolve_timeout":    c.Agent.ResolveTimeout,
		"agent.navigation_timeout": c.Agent.NavigationTimeout,
		"agent.action_timeout":     c.Agent.ActionTimeout,
		"agent.settle_timeout":     c.Agent.SettleTimeout,
		"agent.wait_timeout":       c.Agent.WaitTimeout,
		"agent.max_wait_timeout":   c.Agent.MaxWaitTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.Agent.TypeDelay < 0 {
		return fmt.Errorf("agent.type_delay must not be negative, got %s", c.Agent.TypeDelay)
	}

	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	return nil
}
