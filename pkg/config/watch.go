package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/marmos91/ramfs/internal/logger"
)

// Watch observes the configuration file and invokes onChange with the
// freshly loaded configuration whenever it is rewritten. Reload errors
// are logged and the previous configuration stays in effect.
//
// Only a subset of the configuration can be applied at runtime
// (logging level and format); callers decide what to pick up.
func Watch(configPath string, onChange func(*Config)) error {
	if configPath == "" {
		configPath = GetDefaultConfigPath()
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Debug("configuration file changed", "path", e.Name, "op", e.Op.String())

		cfg, err := Load(configPath)
		if err != nil {
			logger.Warn("configuration reload failed, keeping previous settings", logger.Err(err))
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}
