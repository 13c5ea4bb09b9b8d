package cmd

import (
	"fmt"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Engine string `mapstructure:"engine"`
	DSN    string `mapstructure:"dsn"`
	Role   string `mapstructure:"role"` // "source" or "target"
}

// GetEndpoints resolves the source and target endpoints. Explicit
// source/target flags win; otherwise the databases list in the config
// must carry exactly one entry per role.
func GetEndpoints() (source, target *DBConfig, err error) {
	flagSource := &DBConfig{
		Name:   "cli-source",
		Engine: viper.GetString("source.engine"),
		DSN:    viper.GetString("source.dsn"),
		Role:   "source",
	}
	flagTarget := &DBConfig{
		Name:   "cli-target",
		Engine: viper.GetString("target.engine"),
		DSN:    viper.GetString("target.dsn"),
		Role:   "target",
	}
	if flagSource.DSN != "" && flagTarget.DSN != "" {
		if flagSource.Engine == "" || flagTarget.Engine == "" {
			return nil, nil, fmt.Errorf("source and target engines are required with explicit DSNs")
		}
		return flagSource, flagTarget, nil
	}

	var configs []DBConfig
	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	for i := range configs {
		switch configs[i].Role {
		case "source":
			if source != nil {
				return nil, nil, fmt.Errorf("multiple source databases found (only one can have role: source)")
			}
			source = &configs[i]
		case "target":
			if target != nil {
				return nil, nil, fmt.Errorf("multiple target databases found (only one can have role: target)")
			}
			target = &configs[i]
		}
	}

	// Allow mixing: one endpoint from flags, the other from config.
	if source == nil && flagSource.DSN != "" && flagSource.Engine != "" {
		source = flagSource
	}
	if target == nil && flagTarget.DSN != "" && flagTarget.Engine != "" {
		target = flagTarget
	}

	if source == nil {
		return nil, nil, fmt.Errorf("no source database configured (set role: source, or use --source-dsn/--source-engine)")
	}
	if target == nil {
		return nil, nil, fmt.Errorf("no target database configured (set role: target, or use --target-dsn/--target-engine)")
	}
	if source.Engine == "" || target.Engine == "" {
		return nil, nil, fmt.Errorf("both endpoints need an engine name")
	}
	return source, target, nil
}
