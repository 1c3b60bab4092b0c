package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"forum-api/internal/domain"
)

// Models lists every table owned by the service, parents before children
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Section{},
		&domain.Thread{},
		&domain.Topic{},
		&domain.Comment{},
		&domain.Notification{},
	}
}

// AutoMigrate creates or updates every table, logging each one
func AutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	migrator := db.Migrator()
	models := Models()

	logger.Info("Starting auto-migration", zap.Int("total_models", len(models)))

	for _, model := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table
		existed := migrator.HasTable(model)

		if err := db.AutoMigrate(model); err != nil {
			logger.Error("Failed to migrate table",
				zap.String("table", table),
				zap.Bool("table_existed", existed),
				zap.Error(err),
			)
			return fmt.Errorf("failed to migrate table %s: %w", table, err)
		}

		logger.Debug("Migrated table",
			zap.String("table", table),
			zap.Bool("was_existing", existed),
		)
	}

	logger.Info("Auto-migration completed", zap.Int("tables_migrated", len(models)))
	return nil
}
