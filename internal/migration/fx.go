package migration

import (
	"github.com/dealerstack/vaahan/internal/config"
	"github.com/dealerstack/vaahan/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if cfg.DBType != "postgres" {
			// Embedded migrations target postgres; other dialects
			// (sqlite in tests, mysql) manage schema out of band.
			log.Warn("skipping automatic migrations",
				zap.String("driver", cfg.DBType))
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.SeedReferenceData {
			return seed.EnsureReferenceData(conn)
		}
		return nil
	}),
)
