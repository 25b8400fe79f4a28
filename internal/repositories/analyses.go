package repositories

import (
	"context"
	"github.com/maxaizer/cv-matcher/internal/entities"
	"gorm.io/gorm"
	"time"
)

type Analyses struct {
	db *gorm.DB
}

func NewAnalysesRepository(db *gorm.DB) *Analyses {
	return &Analyses{db: db}
}

func (repo *Analyses) Add(ctx context.Context, analysis *entities.Analysis) error {
	return repo.db.WithContext(ctx).Create(analysis).Error
}

func (repo *Analyses) GetByUser(ctx context.Context, userID string, limit int) ([]entities.Analysis, error) {
	var analyses []entities.Analysis
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&analyses).Error; err != nil {
		return nil, err
	}
	return analyses, nil
}

func (repo *Analyses) RemoveOlderThan(ctx context.Context, expirationTime time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Delete(&entities.Analysis{}, "created_at < ?", expirationTime)
	return res.RowsAffected, res.Error
}
