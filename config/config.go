package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	log "github.com/inconshreveable/log15/v3"
)

// ErrInvalidSettings wraps every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds the server configuration.
type Settings struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	LogLevel        string        `yaml:"log_level"`
	Debug           bool          `yaml:"debug"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	WebSocketBuffer int           `yaml:"websocket_buffer"`
	// DefaultSeed seeds sessions created without a seed. Zero means a fresh
	// seed per session.
	DefaultSeed int64         `yaml:"default_seed"`
	APIURL      string        `yaml:"api_url"`
	Ngrok       NgrokSettings `yaml:"ngrok"`
}

// NgrokSettings configures the optional public tunnel.
type NgrokSettings struct {
	Enabled   bool   `yaml:"enabled"`
	AuthToken string `yaml:"auth_token"`
	Domain    string `yaml:"domain"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Host:            "",
		Port:            8080,
		LogLevel:        "info",
		SessionTTL:      24 * time.Hour,
		CleanupInterval: time.Hour,
		WebSocketBuffer: 256,
		APIURL:          "http://localhost:8080",
	}
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// File is an optional YAML file. Missing files are an error only when
	// named explicitly.
	File string
	// EnvFile is a dotenv file; it is skipped when it does not exist.
	EnvFile string
	// Lookup reads the process environment. Defaults to os.LookupEnv.
	Lookup func(key string) (string, bool)
}

// Load builds settings from defaults, then the YAML file, then the dotenv
// file and the environment. Real environment variables win over the dotenv
// file. The result is not validated.
func Load(opts LoadOptions) (*Settings, error) {
	s := Default()

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse settings file %s: %w", opts.File, err)
		}
	}

	env := map[string]string{}
	if opts.EnvFile != "" {
		if _, err := os.Stat(opts.EnvFile); err == nil {
			values, err := godotenv.Read(opts.EnvFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read env file %s: %w", opts.EnvFile, err)
			}
			env = values
		}
	}

	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	}

	if err := s.applyEnv(get); err != nil {
		return nil, err
	}
	return s, nil
}

// applyEnv overlays environment values, collecting every coercion error.
func (s *Settings) applyEnv(get func(string) (string, bool)) error {
	var errs error

	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := get(key); ok {
			n, err := cast.ToIntE(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := get(key); ok {
			b, err := cast.ToBoolE(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := get(key); ok {
			d, err := cast.ToDurationE(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("HOST", &s.Host)
	integer("PORT", &s.Port)
	str("LOG_LEVEL", &s.LogLevel)
	boolean("DEBUG", &s.Debug)
	duration("SESSION_TTL", &s.SessionTTL)
	duration("CLEANUP_INTERVAL", &s.CleanupInterval)
	integer("WS_BUFFER", &s.WebSocketBuffer)
	if v, ok := get("DEFAULT_SEED"); ok {
		seed, err := cast.ToInt64E(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("DEFAULT_SEED: %w", err))
		} else {
			s.DefaultSeed = seed
		}
	}
	str("API_URL", &s.APIURL)
	boolean("NGROK_ENABLED", &s.Ngrok.Enabled)
	str("NGROK_AUTH_TOKEN", &s.Ngrok.AuthToken)
	str("NGROK_AUTHTOKEN", &s.Ngrok.AuthToken)
	str("NGROK_DOMAIN", &s.Ngrok.Domain)

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errs)
	}
	return nil
}

// Validate reports every problem with the settings at once.
func (s *Settings) Validate() error {
	var errs error

	if s.Port < 1 || s.Port > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("port %d out of range 1-65535", s.Port))
	}
	if _, err := log.LvlFromString(s.LogLevel); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("log_level: %w", err))
	}
	if s.SessionTTL <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("session_ttl must be positive, got %s", s.SessionTTL))
	}
	if s.CleanupInterval <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("cleanup_interval must be positive, got %s", s.CleanupInterval))
	}
	if s.WebSocketBuffer < 1 {
		errs = multierr.Append(errs, fmt.Errorf("websocket_buffer must be at least 1, got %d", s.WebSocketBuffer))
	}
	if s.Ngrok.Enabled && s.Ngrok.AuthToken == "" {
		errs = multierr.Append(errs, errors.New("ngrok enabled without an auth token"))
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errs)
	}
	return nil
}

// Addr returns the listen address.
func (s *Settings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Problems splits an error returned by Load or Validate into its individual
// causes.
func Problems(err error) []error {
	if err == nil {
		return nil
	}
	var wrapped interface{ Unwrap() []error }
	if errors.As(err, &wrapped) {
		for _, e := range wrapped.Unwrap() {
			if e != ErrInvalidSettings {
				return multierr.Errors(e)
			}
		}
	}
	return multierr.Errors(err)
}

// YAML renders the settings with secrets redacted.
func (s *Settings) YAML() ([]byte, error) {
	redacted := *s
	if redacted.Ngrok.AuthToken != "" {
		redacted.Ngrok.AuthToken = "********"
	}
	return yaml.Marshal(&redacted)
}
