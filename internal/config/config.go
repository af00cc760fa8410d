package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/contratos/internal/businesshours"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Contratos"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"contratos"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
	}

	Auth struct {
		Secret        string        `envconfig:"AUTH_SECRET"`
		TokenTTL      time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"12h"`
		AdminUsername string        `envconfig:"ADMIN_USERNAME" default:"admin"`
		AdminPassword string        `envconfig:"ADMIN_PASSWORD"`
	}

	Business struct {
		StartHour int      `envconfig:"BUSINESS_START_HOUR" default:"9"`
		EndHour   int      `envconfig:"BUSINESS_END_HOUR" default:"18"`
		Days      []string `envconfig:"BUSINESS_DAYS" default:"mon,tue,wed,thu,fri"`
		Timezone  string   `envconfig:"BUSINESS_TIMEZONE" default:"UTC"`
	}

	Registry struct {
		URL     string        `envconfig:"REGISTRY_URL" default:"https://brasilapi.com.br/api/cnpj/v1"`
		Timeout time.Duration `envconfig:"REGISTRY_TIMEOUT" default:"15s"`
	}

	Documents struct {
		TemplatesDir string `envconfig:"TEMPLATES_DIR" default:"templates"`
		ContractsDir string `envconfig:"CONTRACTS_DIR" default:"contratos"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// BusinessHours builds the clock configuration from the BUSINESS_* variables.
func (c *Config) BusinessHours() (businesshours.Config, error) {
	days, err := businesshours.ParseWeekdays(c.Business.Days)
	if err != nil {
		return businesshours.Config{}, err
	}

	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return businesshours.Config{}, fmt.Errorf("loading timezone %q: %w", c.Business.Timezone, err)
	}

	return businesshours.Config{
		WorkStartHour: c.Business.StartHour,
		WorkEndHour:   c.Business.EndHour,
		Days:          days,
		Location:      loc,
	}, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
