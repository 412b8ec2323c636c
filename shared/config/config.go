package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	DefaultPollInterval        = 15 * time.Second
	DefaultSwitchFailureDelay  = 2 * time.Second
	DefaultRequestTimeout      = 30 * time.Second
	DefaultFlashTTL            = 5 * time.Second
	DefaultPort                = 8081
	DefaultLanguage            = "en"
	DefaultStateFile           = "accounts.json"
	DefaultTimezone            = "UTC"
	DefaultLogLevel            = "info"
	envAPIBaseURL              = "TGSCHED_API_BASE_URL"
	envPort                    = "TGSCHED_PORT"
	envStateDir                = "TGSCHED_STATE_DIR"
	envLogLevel                = "TGSCHED_LOG_LEVEL"
	publicConfigFile           = "public.yaml"
	defaultCORSAllowedOrigin   = "http://localhost:8081"
	defaultStateDirPermissions = 0o700
)

type Config struct {
	Public Public
}

type Public struct {
	APIBaseURL         string        `yaml:"api_base_url" validate:"required,url"`
	Port               int           `yaml:"port" validate:"gte=0,lte=65535"`
	StateDir           string        `yaml:"state_dir" validate:"required"`
	PollInterval       time.Duration `yaml:"poll_interval" validate:"gte=0"`
	SwitchFailureDelay time.Duration `yaml:"switch_failure_delay" validate:"gte=0"`
	RequestTimeout     time.Duration `yaml:"request_timeout" validate:"gte=0"`
	FlashTTL           time.Duration `yaml:"flash_ttl" validate:"gte=0"`
	Timezone           string        `yaml:"timezone"` // IANA name sent with task list requests
	SecureCookies      bool          `yaml:"secure_cookies"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" validate:"dive,url"`
	Log                Log           `yaml:"log"`
}

type Log struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
}

// StatePath is the file holding the account list and preferences.
func (p Public) StatePath() string {
	return path.Join(p.StateDir, DefaultStateFile)
}

// Location resolves the configured timezone, falling back to UTC.
func (p Public) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.UnmarshalStrict(configFile, output); err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

// MustLoad reads public.yaml from configFolder, applies defaults and
// environment overrides, then validates. Any failure panics.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, publicConfigFile), &public)

	cfg, err := finalize(public)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// Load is MustLoad for callers that want an error instead of a panic.
func Load(configFolder string) (cfg *Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("load config: %v", r)
		}
	}()
	return MustLoad(configFolder), nil
}

// Default returns the configuration used when no config folder is given.
func Default() (*Config, error) {
	return finalize(Public{APIBaseURL: "http://localhost:5000"})
}

func finalize(public Public) (*Config, error) {
	applyDefaults(&public)
	if err := applyEnv(&public); err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(public); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Config{Public: public}, nil
}

func applyDefaults(p *Public) {
	if p.Port == 0 {
		p.Port = DefaultPort
	}
	if p.StateDir == "" {
		p.StateDir = defaultStateDir()
	}
	if p.PollInterval == 0 {
		p.PollInterval = DefaultPollInterval
	}
	if p.SwitchFailureDelay == 0 {
		p.SwitchFailureDelay = DefaultSwitchFailureDelay
	}
	if p.RequestTimeout == 0 {
		p.RequestTimeout = DefaultRequestTimeout
	}
	if p.FlashTTL == 0 {
		p.FlashTTL = DefaultFlashTTL
	}
	if p.Timezone == "" {
		p.Timezone = localTimezone()
	}
	if len(p.CORSAllowedOrigins) == 0 {
		p.CORSAllowedOrigins = []string{defaultCORSAllowedOrigin}
	}
	if p.Log.Level == "" {
		p.Log.Level = DefaultLogLevel
	}
}

func applyEnv(p *Public) error {
	if v := os.Getenv(envAPIBaseURL); v != "" {
		p.APIBaseURL = v
	}
	if v := os.Getenv(envPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", envPort, err)
		}
		p.Port = port
	}
	if v := os.Getenv(envStateDir); v != "" {
		p.StateDir = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		p.Log.Level = v
	}
	return nil
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".tgsched"
	}
	return path.Join(dir, "tgsched")
}

// EnsureStateDir creates the state directory with owner-only permissions.
func (p Public) EnsureStateDir() error {
	if err := os.MkdirAll(p.StateDir, defaultStateDirPermissions); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", p.StateDir, err)
	}
	return nil
}

func localTimezone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	return DefaultTimezone
}
