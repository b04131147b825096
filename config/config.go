package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Town   TownConfig   `mapstructure:"town"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type TownConfig struct {
	MapFile            string        `mapstructure:"map_file"`
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8081")
	viper.SetDefault("server.rpc_address", ":8082")
	viper.SetDefault("server.metrics_address", ":9091")
	viper.SetDefault("town.map_file", "indoors.json")
	viper.SetDefault("town.session_idle_timeout", "5m")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
