package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	RateBurst         int           `mapstructure:"rate_burst"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// ScoringConfig drives the score aggregator. The competency mappings route
// case types and review sub-score dimensions to ACGME categories; they are
// data, not logic, so the routing can evolve without touching the
// aggregation algorithm.
type ScoringConfig struct {
	WindowDays         int                 `mapstructure:"window_days"`
	OutcomeWeight      float64             `mapstructure:"outcome_weight"`
	ReviewWeight       float64             `mapstructure:"review_weight"`
	CompetencyCacheTTL time.Duration       `mapstructure:"competency_cache_ttl"`
	CaseTypeMappings   map[string][]string `mapstructure:"case_type_mappings"`
	DimensionMappings  map[string][]string `mapstructure:"dimension_mappings"`
}

// AlertsConfig holds the rule thresholds. Values are deployment
// configuration pending department confirmation, not fixed constants.
type AlertsConfig struct {
	CriticalScoreMargin    float64 `mapstructure:"critical_score_margin"`
	ComplicationBaseline   float64 `mapstructure:"complication_baseline"`
	ComplicationMargin     float64 `mapstructure:"complication_margin"`
	MinCasesForRate        int     `mapstructure:"min_cases_for_rate"`
	MissingDataFraction    float64 `mapstructure:"missing_data_fraction"`
	NotifyEmail            string  `mapstructure:"notify_email"`
	PublishChannel         string  `mapstructure:"publish_channel"`
	DisableNotifications   bool    `mapstructure:"disable_notifications"`
}

type SweepConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// envOverrides are secrets injected via OPPE_* environment variables so
// they stay out of the config file.
type envOverrides struct {
	DBHost       string `envconfig:"DB_HOST"`
	DBPassword   string `envconfig:"DB_PASSWORD"`
	RedisURL     string `envconfig:"REDIS_URL"`
	JWTSecret    string `envconfig:"JWT_SECRET"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("oppe", &env); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}
	if env.DBHost != "" {
		config.Database.Host = env.DBHost
	}
	if env.DBPassword != "" {
		config.Database.Password = env.DBPassword
	}
	if env.RedisURL != "" {
		config.Redis.URL = env.RedisURL
	}
	if env.JWTSecret != "" {
		config.JWT.Secret = env.JWTSecret
	}
	if env.SMTPPassword != "" {
		config.SMTP.Password = env.SMTPPassword
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Scoring.WindowDays <= 0 {
		c.Scoring.WindowDays = 90
	}
	if c.Scoring.OutcomeWeight == 0 && c.Scoring.ReviewWeight == 0 {
		c.Scoring.OutcomeWeight = 0.4
		c.Scoring.ReviewWeight = 0.6
	}
	if c.Scoring.CompetencyCacheTTL <= 0 {
		c.Scoring.CompetencyCacheTTL = 10 * time.Minute
	}
	if c.Alerts.CriticalScoreMargin <= 0 {
		c.Alerts.CriticalScoreMargin = 15
	}
	if c.Alerts.ComplicationMargin <= 0 {
		c.Alerts.ComplicationMargin = 0.10
	}
	if c.Alerts.MinCasesForRate <= 0 {
		c.Alerts.MinCasesForRate = 5
	}
	if c.Alerts.MissingDataFraction <= 0 {
		c.Alerts.MissingDataFraction = 0.10
	}
	if c.Alerts.PublishChannel == "" {
		c.Alerts.PublishChannel = "alerts"
	}
	if c.Sweep.Interval <= 0 {
		c.Sweep.Interval = 24 * time.Hour
	}
}
