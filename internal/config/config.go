// Package config loads rotacio-diff settings from a YAML file and ROTACIO_*
// environment variables.
package config

import (
	"time"
)

// Environment is one deployment of the compared feature service.
type Environment struct {
	Name       string `mapstructure:"name" validate:"required"`
	PortalURL  string `mapstructure:"portal_url" validate:"required,url"`
	ServiceURL string `mapstructure:"service_url" validate:"required,url"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password" validate:"required_with=Username"`
}

// FetchConfig controls the paginated fetch.
type FetchConfig struct {
	BatchSize int `mapstructure:"batch_size" validate:"gte=1"`
	// MaxRows caps the records fetched per environment; negative means no cap
	MaxRows int    `mapstructure:"max_rows"`
	Where   string `mapstructure:"where" validate:"required"`
}

// ArcGISConfig holds transport settings shared by both environments.
type ArcGISConfig struct {
	UserAgent       string        `mapstructure:"user_agent" validate:"required"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	TokenExpiration time.Duration `mapstructure:"token_expiration" validate:"gte=1m"`
	Referer         string        `mapstructure:"referer"`
}

// OutputConfig selects between the console report and the spreadsheet export.
type OutputConfig struct {
	Export bool   `mapstructure:"export"`
	Dir    string `mapstructure:"dir" validate:"required"`
}

// LoggerConfig mirrors logging.Config in file form.
type LoggerConfig struct {
	Level  string            `mapstructure:"level" validate:"oneof=debug info warn error disabled"`
	Pretty bool              `mapstructure:"pretty"`
	Fields map[string]string `mapstructure:"fields"`
}

// RedisConfig enables the token cache when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// MetricsConfig enables pushing run metrics when PushgatewayURL is set.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" validate:"omitempty,url"`
	Instance       string `mapstructure:"instance"`
}

// Config is the full tool configuration.
type Config struct {
	Pre     Environment   `mapstructure:"pre"`
	Dev     Environment   `mapstructure:"dev"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	ArcGIS  ArcGISConfig  `mapstructure:"arcgis"`
	Output  OutputConfig  `mapstructure:"output"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MaxRowsLimit returns the row cap as used by pagination.Config.MaxRows.
func (f FetchConfig) MaxRowsLimit() *int {
	if f.MaxRows < 0 {
		return nil
	}
	n := f.MaxRows
	return &n
}
