package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rl1809/pantry/internal/adapter/storage"
)

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the MySQL schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, log, err := setup(v)
			if err != nil {
				return err
			}
			defer log.Sync()

			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}

			switch direction {
			case "up":
				err = storage.MigrateUp(cfg.MySQL.DSN)
			case "down":
				err = storage.MigrateDown(cfg.MySQL.DSN)
			}
			if err != nil {
				return fmt.Errorf("migrate %s: %w", direction, err)
			}
			log.Info("migrations applied", zap.String("direction", direction))
			return nil
		},
	}
}
