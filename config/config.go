package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
}

type ServerConfig struct {
	HTTPAddress string `mapstructure:"http_address"`
	// MetricsAddress serves /metrics and expvar; empty disables the endpoint.
	MetricsAddress string `mapstructure:"metrics_address"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.metrics_address", "")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		// 配置文件缺失时使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	return
}
