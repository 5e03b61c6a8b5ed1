package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config file keys.
const (
	cfgKeyBaseURL    = "base_url"
	cfgKeyToken      = "token"
	cfgKeyEntities   = "entities"
	cfgKeySchemaPath = "schema_path"

	cfgKeyServeListen = "serve.listen"
	cfgKeyServeDriver = "serve.driver"
	cfgKeyServeDSN    = "serve.dsn"
	cfgKeyServeDebug  = "serve.debug"
)

// loadConfig reads the config file, defaulting to .entctl.yaml in the
// working directory. A missing default file is not an error; a missing
// explicitly named file is.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyServeListen, ":8080")
	v.SetDefault(cfgKeyServeDriver, "sqlite")
	v.SetDefault(cfgKeyServeDSN, "entctl.db")

	v.SetEnvPrefix("ENTCTL")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		return v, nil
	}

	v.SetConfigName(".entctl")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}
