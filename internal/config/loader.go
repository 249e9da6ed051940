package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ROTACIO_PRE_PASSWORD.
const EnvPrefix = "ROTACIO"

func setDefaults(v *viper.Viper) {
	v.SetDefault("pre.name", "pre")
	v.SetDefault("dev.name", "dev")
	v.SetDefault("fetch.batch_size", 200)
	v.SetDefault("fetch.max_rows", 400)
	v.SetDefault("fetch.where", "1=1")
	v.SetDefault("arcgis.user_agent", "rotacio-diff/0.1.0")
	v.SetDefault("arcgis.timeout", "30s")
	v.SetDefault("arcgis.token_expiration", "60m")
	v.SetDefault("output.export", false)
	v.SetDefault("output.dir", ".")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.pretty", true)
	v.SetDefault("redis.db", 0)

	// Registered so AutomaticEnv can fill keys absent from the file.
	for _, key := range []string{
		"pre.portal_url", "pre.service_url", "pre.username", "pre.password",
		"dev.portal_url", "dev.service_url", "dev.username", "dev.password",
		"arcgis.referer", "redis.addr", "redis.password",
		"metrics.pushgateway_url", "metrics.instance",
	} {
		v.SetDefault(key, "")
	}
}

// Load reads the YAML file at path, applies ROTACIO_* overrides and validates
// the result. A missing file is only an error when the path was given
// explicitly (required); otherwise defaults and environment are used.
func Load(path string, required bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if required || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct constraints.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	return nil
}
