// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/javajoker/rental-backend/internal/config"
	"github.com/javajoker/rental-backend/internal/database"
	"github.com/javajoker/rental-backend/internal/i18n"
	"github.com/javajoker/rental-backend/internal/logger"
)

var (
	rootCmd = &cobra.Command{
		Use:   "rental-backend",
		Short: "Rental marketplace contract lifecycle service",

		// All child commands share configuration, logging and translations
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if err = logger.Init(cfg.LogLevel, cfg.Environment == "production"); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			if err = i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
				return fmt.Errorf("failed to initialize i18n: %w", err)
			}

			if cfg.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			cancel()
		},
		SilenceUsage: true,
	}

	cfg    *config.Config
	ctx    context.Context
	cancel context.CancelFunc = func() {}
)

// openDatabase connects and migrates. Callers close the handle.
func openDatabase() (*gorm.DB, error) {
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
