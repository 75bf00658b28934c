package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads the agent configuration. An empty path yields the defaults;
// STRIX_* environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STRIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9101")
	v.SetDefault("metrics.path", "/metrics")

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// No reporters configured means a plain console report.
	if len(cfg.Reporters) == 0 {
		cfg.Reporters = []ReporterConfig{{Name: "console"}}
	}
	for _, rc := range cfg.Reporters {
		if rc.Name == "" {
			return nil, fmt.Errorf("reporter entry without a name")
		}
	}

	return &cfg, nil
}
