package command

import (
	"yamdb/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Schema migration commands",
	Long:  `Apply pending schema migrations or roll back the most recent ones.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadEnv()
		if err != nil {
			return err
		}

		if err := database.MigrateUp(cfg.DatabaseURL, log); err != nil {
			return err
		}
		color.Green("✓ Database schema is up to date")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back applied migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")

		cfg, log, err := loadEnv()
		if err != nil {
			return err
		}

		if err := database.MigrateDown(cfg.DatabaseURL, log, steps); err != nil {
			return err
		}
		color.Yellow("✓ Rolled back %d migration(s)", steps)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateDownCmd.Flags().IntP("steps", "n", 1, "number of migrations to roll back")
}
