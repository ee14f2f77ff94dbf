package configs

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	config *Config
	once   sync.Once
)

type Config struct {
	Viper *viper.Viper
}

// GetConfig loads config.yaml from the working directory or ./configs once
// and layers COLLABCANVAS_* environment variables over it.
func GetConfig() *Config {
	once.Do(func() {
		config = &Config{Viper: New("")}
	})
	return config
}

// New builds a standalone viper instance. An explicit file path wins over
// the search paths; a missing file leaves only defaults and environment.
func New(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("COLLABCANVAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		slog.Warn("GetConfig - no config file, using defaults", "err", err)
	}
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.echo_origin", false)
	v.SetDefault("canvas.width", 1200)
	v.SetDefault("canvas.height", 800)
	v.SetDefault("history.max_depth", 100)
	v.SetDefault("relay.send_buffer", 256)
	v.SetDefault("relay.autosave_interval", 30*time.Second)
	v.SetDefault("autosave.freshness", 24*time.Hour)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.channel", "canvas_channel")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("minio.enabled", false)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration_time", 86400)
	v.SetDefault("mdns.enabled", false)
	v.SetDefault("mdns.service", "_collabcanvas._tcp")
}

func (c *Config) Duration(key string) time.Duration {
	return c.Viper.GetDuration(key)
}
