package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix é o prefixo opcional das variáveis (GOPOS_PORT). Os nomes sem prefixo
// (PORT, DATABASE_URL...) continuam aceitos como alternativa.
const EnvPrefix = "GOPOS"

// Config armazena todas as configurações do GoPOS.
type Config struct {
	// Geral
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`

	// Banco de Dados (PostgreSQL)
	DatabaseURL string        `envconfig:"DATABASE_URL" required:"true"`
	DBTimeout   time.Duration `envconfig:"DB_TIMEOUT" default:"5s"`

	// Cache (Redis)
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	ProductCacheTTL time.Duration `envconfig:"PRODUCT_CACHE_TTL" default:"5m"`

	// Segurança (JWT)
	JWTSecretKey string        `envconfig:"JWT_SECRET_KEY" required:"true"`
	TokenExpiry  time.Duration `envconfig:"JWT_EXPIRY" default:"1h"`

	// Rate Limiting
	RateLimitMaxRequests int           `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"100"`
	RateLimitPeriod      time.Duration `envconfig:"RATE_LIMIT_PERIOD" default:"1m"`

	// Precificação
	PriceScale         int32  `envconfig:"PRICE_SCALE" default:"2"`
	DiscountRatePolicy string `envconfig:"DISCOUNT_RATE_POLICY" default:"compound"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// LoadConfig lê as variáveis de ambiente (já carregadas do .env pelo main) e aplica padrões.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("falha ao carregar configuração: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.PriceScale < 0 || c.PriceScale > 6 {
		return fmt.Errorf("PRICE_SCALE deve estar entre 0 e 6, recebido %d", c.PriceScale)
	}
	switch c.DiscountRatePolicy {
	case "compound", "ignore":
	default:
		return fmt.Errorf("DISCOUNT_RATE_POLICY inválida: %q (use compound ou ignore)", c.DiscountRatePolicy)
	}
	if c.RateLimitMaxRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS deve ser positivo")
	}
	return nil
}

// IsProduction informa se a aplicação roda em produção.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
