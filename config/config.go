// Package config holds the validated parameter set the CLI hands to the
// measurement pipeline, plus the optional defaults file support.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Params is the full parameter set for one invocation. Field keys match the
// CLI flag names so a defaults file uses the same vocabulary as the flags.
type Params struct {
	Host              string `mapstructure:"host"`
	AggregationMethod string `mapstructure:"aggregation-method"`
	Samples           int    `mapstructure:"samples"`
	TimeoutMillis     uint64 `mapstructure:"timeout"`
	MinIntervalMillis uint64 `mapstructure:"min-interval"`
	MaxIntervalMillis uint64 `mapstructure:"max-interval"`
	Precision         int    `mapstructure:"precision"`
	DgramSocket       bool   `mapstructure:"dgram-socket"`
	Warning           string `mapstructure:"warning"`
	Critical          string `mapstructure:"critical"`
}

// Load merges flag values with an optional YAML defaults file. Flags that
// were explicitly set win over the file, the file wins over flag defaults.
func Load(path string, flags *pflag.FlagSet) (*Params, error) {
	v := viper.New()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	params := &Params{}
	if err := v.Unmarshal(params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return params, nil
}
