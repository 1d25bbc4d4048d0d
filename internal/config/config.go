package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	JWT        JWTConfig
	RateLimit  RateLimitConfig
	Thresholds ThresholdConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	JobsPerHour     int
	DecisionsPerMin int
}

// ThresholdConfig tunes the conflict detector. Aspect-ratio category
// bounds and ratio-difference bands are deliberately not configurable;
// see internal/conflict.
type ThresholdConfig struct {
	ResolutionPx     float64
	OverflowWarning  float64
	OverflowCritical float64
	CharWidthRatio   float64
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.jobs_per_hour", 30)
	viper.SetDefault("ratelimit.decisions_per_min", 60)
	viper.SetDefault("thresholds.resolution_px", 200.0)
	viper.SetDefault("thresholds.overflow_warning", 0.15)
	viper.SetDefault("thresholds.overflow_critical", 0.40)
	viper.SetDefault("thresholds.char_width_ratio", 0.55)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			JobsPerHour:     viper.GetInt("ratelimit.jobs_per_hour"),
			DecisionsPerMin: viper.GetInt("ratelimit.decisions_per_min"),
		},
		Thresholds: ThresholdConfig{
			ResolutionPx:     viper.GetFloat64("thresholds.resolution_px"),
			OverflowWarning:  viper.GetFloat64("thresholds.overflow_warning"),
			OverflowCritical: viper.GetFloat64("thresholds.overflow_critical"),
			CharWidthRatio:   viper.GetFloat64("thresholds.char_width_ratio"),
		},
	}

	return cfg, nil
}
