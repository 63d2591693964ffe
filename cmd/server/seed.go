package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rl1809/pantry/internal/app"
)

func newSeedCmd(v *viper.Viper) *cobra.Command {
	var (
		recipes   int
		userEmail string
		userName  string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a user and a batch of sample recipes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if recipes < 0 {
				return errors.New("--recipes must not be negative")
			}
			cfg, log, err := setup(v)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.EnsureUser(ctx, userEmail, userName)
			if err != nil {
				return err
			}
			log.Info("user ready", zap.String("user_id", user.ID), zap.String("email", user.Email))

			created, err := a.Generator.Generate(ctx, recipes)
			if err != nil {
				return err
			}
			log.Info("sample recipes created", zap.Int("count", len(created)))
			return nil
		},
	}
	cmd.Flags().IntVar(&recipes, "recipes", 20, "number of sample recipes to create")
	cmd.Flags().StringVar(&userEmail, "user-email", "demo@pantry.local", "email of the user to create")
	cmd.Flags().StringVar(&userName, "user-name", "Demo Cook", "full name of the user to create")
	return cmd
}
