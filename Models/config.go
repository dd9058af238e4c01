package Models

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// RateLimitConfig bounds how many submissions one client may make per window.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
	// Store is one of "memory", "sqlite", "mysql" or "postgres".
	Store string
	DSN   string
	// Sweep is the cron spec used to evict expired windows.
	Sweep string
}

// Config holds everything the relay needs at startup.
type Config struct {
	Email        EmailConfig
	Transport    string
	SubjectLabel string
	Port         int
	RateLimit    RateLimitConfig
	CORSOrigins  string
	ProxyHeader  string
	// TrustedProxies lists the peers (IPs or CIDRs) whose ProxyHeader is believed.
	TrustedProxies []string
	StaticDir      string
	LogLevel       string
}

const (
	TransportSMTP = "smtp"
	TransportLog  = "log"
)

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Email: EmailConfig{
			SMTPPort: 587,
			Timeout:  15 * time.Second,
		},
		Transport:    TransportSMTP,
		SubjectLabel: "Portfolio contact",
		Port:         8787,
		RateLimit: RateLimitConfig{
			Max:    20,
			Window: time.Minute,
			Store:  "memory",
			DSN:    "ratelimit.db",
			Sweep:  "@every 1m",
		},
		CORSOrigins: "*",
		LogLevel:    "info",
	}
}

// LoadConfig reads .env (if present), the optional JSON5 file named by
// CONFIG_FILE, then the process environment. Environment values win.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	file := map[string]interface{}{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := json5.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	return configFrom(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		if v, ok := file[key]; ok && v != nil {
			return fmt.Sprint(v), true
		}
		return "", false
	})
}

func configFrom(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := parseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("SMTP_HOST", &cfg.Email.SMTPServer)
	num("SMTP_PORT", &cfg.Email.SMTPPort)
	str("SMTP_USER", &cfg.Email.Username)
	str("SMTP_PASS", &cfg.Email.Password)
	flag("SMTP_SECURE", &cfg.Email.Secure)
	flag("SMTP_SKIP_VERIFY", &cfg.Email.SkipTLSCheck)
	dur("SMTP_TIMEOUT", &cfg.Email.Timeout)
	str("FROM_EMAIL", &cfg.Email.FromEmail)
	str("TO_EMAIL", &cfg.Email.ToEmail)
	str("SUBJECT_LABEL", &cfg.SubjectLabel)
	str("MAIL_TRANSPORT", &cfg.Transport)
	num("PORT_SERVER", &cfg.Port)
	num("RATE_LIMIT_MAX", &cfg.RateLimit.Max)
	dur("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window)
	str("RATE_LIMIT_STORE", &cfg.RateLimit.Store)
	str("RATE_LIMIT_DSN", &cfg.RateLimit.DSN)
	str("RATE_LIMIT_SWEEP", &cfg.RateLimit.Sweep)
	str("CORS_ORIGINS", &cfg.CORSOrigins)
	str("PROXY_HEADER", &cfg.ProxyHeader)
	if v, ok := lookup("TRUSTED_PROXIES"); ok {
		cfg.TrustedProxies = splitList(v)
	}
	str("STATIC_DIR", &cfg.StaticDir)
	str("LOG_LEVEL", &cfg.LogLevel)

	if cfg.Email.FromEmail == "" {
		cfg.Email.FromEmail = cfg.Email.Username
	}
	cfg.Transport = strings.ToLower(cfg.Transport)
	cfg.RateLimit.Store = strings.ToLower(cfg.RateLimit.Store)

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration that would make the relay unusable.
func (c Config) Validate() error {
	var errs []error
	switch c.Transport {
	case TransportSMTP:
		if c.Email.SMTPServer == "" {
			errs = append(errs, errors.New("SMTP_HOST is required"))
		}
		if c.Email.FromEmail == "" {
			errs = append(errs, errors.New("FROM_EMAIL or SMTP_USER is required"))
		}
	case TransportLog:
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_TRANSPORT %q", c.Transport))
	}
	if c.Email.ToEmail == "" {
		errs = append(errs, errors.New("TO_EMAIL is required"))
	}
	if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid SMTP_PORT %d", c.Email.SMTPPort))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT_SERVER %d", c.Port))
	}
	if c.RateLimit.Max <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.ProxyHeader != "" && len(c.TrustedProxies) == 0 {
		errs = append(errs, errors.New("TRUSTED_PROXIES is required when PROXY_HEADER is set"))
	}
	switch c.RateLimit.Store {
	case "memory", "sqlite", "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown RATE_LIMIT_STORE %q", c.RateLimit.Store))
	}
	return errors.Join(errs...)
}

// parseDuration accepts Go durations ("90s") and bare seconds ("60").
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
