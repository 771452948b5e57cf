// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver            string        `mapstructure:"DB_DRIVER"`
	DBSource            string        `mapstructure:"DB_SOURCE"`
	MigrationsURL       string        `mapstructure:"MIGRATIONS_URL"`
	ServerAddress       string        `mapstructure:"SERVER_ADDRESS"`
	TokenScheme         string        `mapstructure:"TOKEN_SCHEME"`
	TokenSymmetricKey   string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	OrderTTL            time.Duration `mapstructure:"ORDER_TTL"`
	SweepInterval       time.Duration `mapstructure:"SWEEP_INTERVAL"`
	PoolDefaultPrice    string        `mapstructure:"POOL_DEFAULT_PRICE"`
	Environment         string        `mapstructure:"GO_ENV"`
}

// Load reads configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = viper.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
