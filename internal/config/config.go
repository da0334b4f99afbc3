package config

import (
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把init config跟read config分開
init : 需要設置viper watch 與 onConfigChange
read : 一般讀取 需要使用讀寫鎖
*/
var config_singleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServerPort        string  `mapstructure:"SERVER_PORT"`
	DbName            string  `mapstructure:"POSTGRES_DB"`
	DbHost            string  `mapstructure:"POSTGRES_HOST"`
	DbPort            string  `mapstructure:"POSTGRES_PORT"`
	DbUser            string  `mapstructure:"POSTGRES_USER"`
	DbPas             string  `mapstructure:"POSTGRES_PASSWORD"`
	RedisAddr         string  `mapstructure:"REDIS_ADDR"`
	RedisPas          string  `mapstructure:"REDIS_PASSWORD"`
	KafkaBrokers      string  `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic        string  `mapstructure:"KAFKA_TOPIC"`
	AuthTokenKey      string  `mapstructure:"AUTH_TOKEN_KEY"`
	RateLimitCapacity int     `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitRate     float64 `mapstructure:"RATE_LIMIT_RATE"`
}

func GetConfig() *Config {
	initConfig()
	config_singleton.mu.RLock()
	defer config_singleton.mu.RUnlock()
	return config_singleton.Config
}

func initConfig() {
	if config_singleton == nil {
		muonce.Do(func() {
			config_singleton = &ConfigSingleTon{}
			if cf, err := loadConfig(); err == nil {
				config_singleton.Config = cf
			} else {
				log.Fatal("error read config")
			}
			viper.WatchConfig()
			viper.OnConfigChange(func(e fsnotify.Event) {
				if cf, err := loadConfig(); err == nil {
					config_singleton.Config = cf
				} else {
					log.Panic("failed to reload config file")
				}
			})
		})
	}
}

/*
單純回傳錯誤 由外部決定要不要Fatal
*/
func loadConfig() (cf *Config, err error) {
	config_singleton.mu.Lock()
	defer config_singleton.mu.Unlock()

	cf = &Config{}
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(cf)
	if err != nil {
		return
	}
	return
}
