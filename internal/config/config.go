package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the tool needs to talk to Bloxs and to run its adapters.
// It is built once in main and passed down explicitly.
type Config struct {
	APIBase     string
	Username    string
	Password    string
	HTTPTimeout time.Duration

	DraftOwner       string // owner that receives mailed-in draft invoices
	SettlementOwner  string // administration owner that books owner settlements
	PaymentMethod    string
	NoTaxRate        string
	LedgerCode       string
	StrictReferences bool
	MailArchiveDir   string

	LogLevel  string
	LogFormat string

	DatabaseURL string

	ServerPort     string
	JWTSecret      string
	AllowedOrigins string
}

// Load reads .env (if present) and the process environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := durationEnv("BLOXS_HTTP_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}
	strict, err := boolEnv("BLOXS_STRICT_REFERENCES", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIBase:          normalizeBase(os.Getenv("BLOXS_API_BASE")),
		Username:         os.Getenv("BLOXS_USER"),
		Password:         os.Getenv("BLOXS_PASS"),
		HTTPTimeout:      timeout,
		DraftOwner:       stringEnv("BLOXS_DRAFT_OWNER", "Fictief"),
		SettlementOwner:  stringEnv("BLOXS_SETTLEMENT_OWNER", "Fictief"),
		PaymentMethod:    stringEnv("BLOXS_PAYMENT_METHOD", "Bank"),
		NoTaxRate:        stringEnv("BLOXS_NO_TAX_RATE", "Geen BTW"),
		LedgerCode:       stringEnv("BLOXS_LEDGER_CODE", "8000"),
		StrictReferences: strict,
		MailArchiveDir:   os.Getenv("MAIL_ARCHIVE_DIR"),
		LogLevel:         stringEnv("LOG_LEVEL", "info"),
		LogFormat:        stringEnv("LOG_FORMAT", "console"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ServerPort:       stringEnv("SERVER_PORT", "8080"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AllowedOrigins:   os.Getenv("ALLOWED_ORIGINS"),
	}
	return cfg, nil
}

// Validate checks the keys every command needs to reach Bloxs.
func (c *Config) Validate() error {
	var missing []string
	if c.APIBase == "" {
		missing = append(missing, "BLOXS_API_BASE")
	}
	if c.Username == "" {
		missing = append(missing, "BLOXS_USER")
	}
	if c.Password == "" {
		missing = append(missing, "BLOXS_PASS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// normalizeBase makes sure relative endpoint paths resolve under the base path.
func normalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
