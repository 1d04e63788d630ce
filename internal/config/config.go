package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConf struct {
	Env            string `mapstructure:"env"`
	Port           int    `mapstructure:"port"`
	ShutdownSecond int    `mapstructure:"shutdown_seconds"`
}

type MongoConf struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type AWSConf struct {
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`
	Endpoint string `mapstructure:"endpoint"`
}

type RedisConf struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ProfileTTLSec int    `mapstructure:"profile_cache_ttl_seconds"`
}

type KafkaConf struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Config struct {
	App   AppConf   `mapstructure:"app"`
	Mongo MongoConf `mapstructure:"mongodb"`
	AWS   AWSConf   `mapstructure:"aws"`
	Redis RedisConf `mapstructure:"redis"`
	Kafka KafkaConf `mapstructure:"kafka"`
	Log   struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	// derived
	ShutdownTimeout time.Duration
	ProfileCacheTTL time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.App.Port == 0 {
		cfg.App.Port = 8080
	}
	if cfg.App.ShutdownSecond == 0 {
		cfg.App.ShutdownSecond = 15
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "chatapp"
	}
	if cfg.Redis.ProfileTTLSec == 0 {
		cfg.Redis.ProfileTTLSec = 300
	}
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSecond) * time.Second
	cfg.ProfileCacheTTL = time.Duration(cfg.Redis.ProfileTTLSec) * time.Second
	return &cfg, nil
}
