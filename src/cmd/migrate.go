package cmd

import (
	"github.com/spf13/cobra"

	"hemolink/src/utils/logger"
	"hemolink/src/utils/model"
)

func init() {
	RootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("migrate-cmd")

		err = model.Migrate(applicationCtx, conf)
		if err != nil {
			log.WithError(err).Error("Failed to apply migrations")
			return
		}

		log.Info("Migrations applied")
		cancel()
		return
	},
}
