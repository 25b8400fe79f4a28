package repositories

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/maxaizer/cv-matcher/internal/entities"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"strings"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(dialectorFor(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

// dialectorFor picks postgres for URLs and key=value DSNs, sqlite for file paths.
func dialectorFor(connectionString string) gorm.Dialector {
	lower := strings.ToLower(connectionString)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=") {
		return postgres.Open(connectionString)
	}
	return sqlite.Open(connectionString)
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(entities.Job{})
	if err != nil {
		return fmt.Errorf("failed to migrate Job entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Analysis{})
	if err != nil {
		return fmt.Errorf("failed to migrate Analysis entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.APIToken{})
	if err != nil {
		return fmt.Errorf("failed to migrate APIToken entity: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
