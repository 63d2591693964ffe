package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "PANTRY"

type Config struct {
	Store   string        `mapstructure:"store"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Search  SearchConfig  `mapstructure:"search"`
	Match   MatchConfig   `mapstructure:"match"`
	Request RequestConfig `mapstructure:"request"`
	Log     LogConfig     `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GRPCConfig struct {
	Addr string `mapstructure:"addr"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type SearchConfig struct {
	Index    string `mapstructure:"index"`
	Prefix   string `mapstructure:"prefix"`
	Language string `mapstructure:"language"`
}

type MatchConfig struct {
	TopN int `mapstructure:"top_n"`
}

type RequestConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads an optional .env file, then environment variables prefixed with
// PANTRY_ (PANTRY_MYSQL_DSN -> mysql.dsn) on top of the defaults. Values
// already set on v (e.g. bound CLI flags) take precedence.
func Load(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store", "mysql")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "10s")
	v.SetDefault("http.shutdown_timeout", "5s")

	v.SetDefault("grpc.addr", ":50051")

	v.SetDefault("mysql.dsn", "root:root@tcp(localhost:3306)/pantry?parseTime=true&multiStatements=true")
	v.SetDefault("mysql.max_open_conns", 50)
	v.SetDefault("mysql.max_idle_conns", 25)
	v.SetDefault("mysql.conn_max_lifetime", "5m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 100)

	v.SetDefault("search.index", "products_idx")
	v.SetDefault("search.prefix", "product:")
	v.SetDefault("search.language", "english")

	v.SetDefault("match.top_n", 5)

	v.SetDefault("request.timeout", "5s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func validate(cfg *Config) error {
	switch cfg.Store {
	case "mysql":
		if cfg.MySQL.DSN == "" {
			return errors.New("mysql.dsn is required")
		}
		if cfg.Redis.Addr == "" {
			return errors.New("redis.addr is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store %q", cfg.Store)
	}
	if cfg.HTTP.Addr == "" && cfg.GRPC.Addr == "" {
		return errors.New("at least one of http.addr, grpc.addr is required")
	}
	if cfg.Match.TopN < 1 {
		return errors.New("match.top_n must be at least 1")
	}
	if cfg.Search.Index == "" {
		return errors.New("search.index is required")
	}
	if cfg.Request.Timeout <= 0 {
		return errors.New("request.timeout must be positive")
	}
	return nil
}
