package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rl1809/pantry/internal/config"
	"github.com/rl1809/pantry/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "server",
		Short:         "Pantry tracking and recipe matching service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("store", "mysql", "backing store: mysql or memory")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json or console)")
	flags.String("mysql-dsn", "", "MySQL DSN")
	flags.String("redis-addr", "", "Redis address")
	bind(v, flags.Lookup("store"), "store")
	bind(v, flags.Lookup("log-level"), "log.level")
	bind(v, flags.Lookup("log-format"), "log.format")
	bind(v, flags.Lookup("mysql-dsn"), "mysql.dsn")
	bind(v, flags.Lookup("redis-addr"), "redis.addr")

	root.AddCommand(newServeCmd(v), newMigrateCmd(v), newSeedCmd(v))
	return root
}

func bind(v *viper.Viper, flag *pflag.Flag, key string) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// setup loads the configuration and builds the logger shared by every command.
func setup(v *viper.Viper) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}
