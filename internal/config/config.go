// Package config loads the SubnetScope configuration. Settings come from an
// optional YAML file, SUBNETSCOPE_* environment variables, and built-in
// defaults, in that precedence order.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load builds the configuration. When path is empty, a subnetscope.yaml in
// the working directory or /etc/subnetscope is used if present; a missing
// file is not an error because every key has a default.
func Load(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SUBNETSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("subnetscope")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/subnetscope")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("taostats.base_url", "https://api.taostats.io/api")
	v.SetDefault("taostats.api_key", "")
	v.SetDefault("taostats.min_interval", 12*time.Second)
	v.SetDefault("taostats.default_netuid", 8)
	v.SetDefault("taostats.page_limit", 500)

	v.SetDefault("geo.base_url", "http://ip-api.com")
	v.SetDefault("geo.timeout", 5*time.Second)
	v.SetDefault("geo.batch_size", 20)
	v.SetDefault("geo.batch_delay", time.Second)

	v.SetDefault("cache.ttl", 300*time.Second)

	v.SetDefault("history.path", "subnetscope.db")

	v.SetDefault("modules.subnet.enabled", true)
	v.SetDefault("modules.analyze.enabled", true)
	v.SetDefault("modules.history.enabled", true)
}
