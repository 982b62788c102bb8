package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable, e.g. INSIGHTS_DATA_DIR.
const EnvPrefix = "INSIGHTS"

type Config struct {
	Data     DataConfig     `envconfig:"DATA"`
	Server   ServerConfig   `envconfig:"SERVER"`
	Logger   LoggerConfig   `envconfig:"LOG"`
	Security SecurityConfig `envconfig:"SECURITY"`
	Cache    CacheConfig    `envconfig:"CACHE"`
}

type DataConfig struct {
	Dir          string `envconfig:"DIR" default:"powerbi_data" validate:"required"`
	OrdersFile   string `envconfig:"ORDERS_FILE" default:"Orders_Sample.csv" validate:"required"`
	PeopleFile   string `envconfig:"PEOPLE_FILE" default:"People_Sample.csv" validate:"required"`
	ReturnsFile  string `envconfig:"RETURNS_FILE" default:"Returns_Sample.csv" validate:"required"`
	InsightsFile string `envconfig:"INSIGHTS_FILE" default:"Data_Insights.txt" validate:"required"`
	ExportXLSX   bool   `envconfig:"EXPORT_XLSX" default:"false"`
	XLSXFile     string `envconfig:"XLSX_FILE" default:"Data_Insights.xlsx" validate:"required"`
}

type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"8084" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s" validate:"gt=0"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s" validate:"gt=0"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

type LoggerConfig struct {
	Level  string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `envconfig:"FORMAT" default:"text" validate:"oneof=json text"`
	Output string `envconfig:"OUTPUT" default:"stderr" validate:"oneof=stdout stderr"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRPS    int      `envconfig:"RATE_LIMIT_RPS" default:"100" validate:"gt=0"`
	RateLimitBurst  int      `envconfig:"RATE_LIMIT_BURST" default:"10" validate:"gt=0"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8084"`
	TrustedProxies  []string `envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
}

type CacheConfig struct {
	Enabled bool   `envconfig:"ENABLED" default:"true"`
	Dir     string `envconfig:"DIR" default:".cache"`
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (d DataConfig) OrdersPath() string   { return filepath.Join(d.Dir, d.OrdersFile) }
func (d DataConfig) PeoplePath() string   { return filepath.Join(d.Dir, d.PeopleFile) }
func (d DataConfig) ReturnsPath() string  { return filepath.Join(d.Dir, d.ReturnsFile) }
func (d DataConfig) InsightsPath() string { return filepath.Join(d.Dir, d.InsightsFile) }
func (d DataConfig) XLSXPath() string     { return filepath.Join(d.Dir, d.XLSXFile) }
