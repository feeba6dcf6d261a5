// cmd/server/expire.go
package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javajoker/rental-backend/internal/database"
	"github.com/javajoker/rental-backend/internal/router"
)

func init() {
	rootCmd.AddCommand(expireCmd)
}

var expireCmd = &cobra.Command{
	Use:   "expire-contracts",
	Short: "Expire owner-signed contracts whose tenant deadline passed, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close(db)

		svc, err := router.NewServices(db, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		expired, err := svc.Sweeper.RunOnce(ctx)
		if err != nil {
			return err
		}

		logrus.WithField("expired", expired).Info("Expiration pass complete")
		return nil
	},
}
