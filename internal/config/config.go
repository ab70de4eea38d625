package config

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	DBPath     string `env:"DB_PATH" envDefault:"/data/fieldtech.db"`
	PhotoPath  string `env:"PHOTO_LOCAL_PATH" envDefault:"/data/photos"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile    string `env:"LOG_FILE"`
	// AllowedOrigins lists browser origins allowed to call the API. "*"
	// allows any origin.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	Vision  Vision
	Auth    Auth
	Billing Billing
	SMTP    SMTP
	Kafka   Kafka
	Jobs    Jobs
}

type Vision struct {
	Backend      string `env:"VISION_BACKEND" envDefault:"none"`
	OllamaHost   string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	OllamaModel  string `env:"OLLAMA_MODEL" envDefault:"llava"`
	ClaudeAPIKey string `env:"CLAUDE_API_KEY"`
	ClaudeModel  string `env:"CLAUDE_MODEL" envDefault:"claude-sonnet-4-5"`
}

type Auth struct {
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	TokenTTL      time.Duration `env:"JWT_TTL" envDefault:"12h"`
	AdminEmail    string        `env:"ADMIN_EMAIL"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
}

type Billing struct {
	InvoicePrefix  string          `env:"INVOICE_PREFIX" envDefault:"INV-"`
	DefaultTaxRate decimal.Decimal `env:"DEFAULT_TAX_RATE" envDefault:"0"`
	PaymentTerms   time.Duration   `env:"PAYMENT_TERMS" envDefault:"720h"`
	CompanyName    string          `env:"COMPANY_NAME" envDefault:"Dental Equipment Service"`
}

type SMTP struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	FromName string `env:"SMTP_FROM_NAME" envDefault:"Field Service"`
}

type Kafka struct {
	Brokers     []string `env:"KAFKA_BROKERS"`
	EventsTopic string   `env:"KAFKA_EVENTS_TOPIC" envDefault:"fieldtech.events"`
}

type Jobs struct {
	OverdueInterval    time.Duration `env:"JOB_OVERDUE_INTERVAL" envDefault:"1h"`
	LowStockInterval   time.Duration `env:"JOB_LOW_STOCK_INTERVAL" envDefault:"6h"`
	ServiceDueInterval time.Duration `env:"JOB_SERVICE_DUE_INTERVAL" envDefault:"24h"`
}

// Load reads envPath (if it exists) into the process environment and parses
// the configuration from it. A missing file is not an error.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		err := godotenv.Load(envPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MailEnabled reports whether SMTP delivery is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.From != ""
}

// KafkaEnabled reports whether change events should also go to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}
