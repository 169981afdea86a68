package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
			MaxConns int32  `mapstructure:"maxConns"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	Routing  RoutingConfig  `mapstructure:"routing"`
	Advisory AdvisoryConfig `mapstructure:"advisory"`
	JWT      struct {
		SecretKey string `mapstructure:"secretKey"`
		Audience  string `mapstructure:"audience"`
		Issuer    string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
}

type PlannerConfig struct {
	LookupTimeout time.Duration `mapstructure:"lookupTimeout"`
	// CostSeed enables seeded cost and duration draws when non-zero.
	CostSeed          uint64        `mapstructure:"costSeed"`
	BudgetTolerance   float64       `mapstructure:"budgetTolerance"`
	PerInterestLimit  int           `mapstructure:"perInterestLimit"`
	InterestPoolLimit int           `mapstructure:"interestPoolLimit"`
	PerMustVisitLimit int           `mapstructure:"perMustVisitLimit"`
	MaxCandidates     int           `mapstructure:"maxCandidates"`
	InterestRadiusKm  float64       `mapstructure:"interestRadiusKm"`
	MustVisitRadiusKm float64       `mapstructure:"mustVisitRadiusKm"`
	EnrichmentTimeout time.Duration `mapstructure:"enrichmentTimeout"`
	CatalogCacheTTL   time.Duration `mapstructure:"catalogCacheTTL"`
}

type RoutingConfig struct {
	BaseURL  string        `mapstructure:"baseURL"`
	APIKey   string        `mapstructure:"apiKey"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cacheTTL"`
}

type AdvisoryConfig struct {
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"apiKey"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cacheTTL"`
}

// InitConfig reads config.yml from the usual locations and falls back to
// the embedded copy. Secrets may be overridden from the environment.
func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	for key, env := range map[string]string{
		"routing.apiKey":                 "ROUTING_API_KEY",
		"advisory.apiKey":                "GEMINI_API_KEY",
		"jwt.secretKey":                  "JWT_SECRET_KEY",
		"repositories.postgres.host":     "POSTGRES_HOST",
		"repositories.postgres.password": "POSTGRES_PASSWORD",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}
