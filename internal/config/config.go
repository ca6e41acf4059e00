package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	defaultAuthSecret      = "dev-secret-key"
	defaultBaseURL         = "localhost:8081"
	defaultTokenTTL        = 24 * time.Hour
	defaultAttachmentMaxMB = 10
	defaultRateLimitRPS    = 5
	defaultRateLimitBurst  = 10
)

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

type Config struct {
	// Server-side settings
	DatabaseDSN     string        `env:"DATABASE_URI"`
	AuthSecret      string        `env:"AUTH_SECRET"`
	TokenTTL        time.Duration `env:"TOKEN_TTL"`
	AttachmentMaxMB int           `env:"ATTACHMENT_MAX_MB"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB"`
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST"`
	LogJSON         bool          `env:"LOG_JSON"`
	// TrustProxy: брать IP клиента из X-Forwarded-For/X-Real-IP (только за своим reverse proxy)
	TrustProxy bool `env:"TRUST_PROXY"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL string `env:"-"`
	TokenFile string `env:"TOKEN_FILE"`
	Version   bool   `env:"-"` // show client version and exit (flag only)
}

// AttachmentMaxBytes — предел размера вложения в байтах.
func (c *Config) AttachmentMaxBytes() int64 {
	return int64(c.AttachmentMaxMB) << 20
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{RateLimitRPS: defaultRateLimitRPS}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (пусто: SQLite inventory.db)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи токенов")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "время жизни токена сессии")
	flag.IntVar(&cfg.AttachmentMaxMB, "attachment-max-mb", cfg.AttachmentMaxMB, "максимальный размер вложения, МБ")
	flag.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "адрес Redis для списка отозванных токенов")
	flag.Float64Var(&cfg.RateLimitRPS, "rate-limit", cfg.RateLimitRPS, "запросов в секунду на IP для register/login (<0: без ограничения)")
	flag.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "JSON-логи")
	flag.BoolVar(&cfg.TrustProxy, "trust-proxy", cfg.TrustProxy, "доверять X-Forwarded-For (сервер за reverse proxy)")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "адрес сервера в виде host:port")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.AuthSecret == "" {
		c.AuthSecret = defaultAuthSecret
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = defaultTokenTTL
	}
	if c.AttachmentMaxMB <= 0 {
		c.AttachmentMaxMB = defaultAttachmentMaxMB
	}
	// 0 даёт значение по умолчанию, отрицательное отключает лимит
	if c.RateLimitRPS == 0 {
		c.RateLimitRPS = defaultRateLimitRPS
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = defaultRateLimitBurst
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	if !hostPortRe.MatchString(c.BaseURL) {
		c.BaseURL = defaultBaseURL
	}

	if c.EnableHTTPS {
		c.ServerURL = "https://" + c.BaseURL
	} else {
		c.ServerURL = "http://" + c.BaseURL
	}

	if c.TokenFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir, _ = os.UserHomeDir()
		}
		c.TokenFile = filepath.Join(dir, "InvKeeper", "token")
	}
}
