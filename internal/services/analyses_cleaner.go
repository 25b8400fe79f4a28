package services

import (
	"context"
	"github.com/maxaizer/cv-matcher/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type AnalysisCleanupRepository interface {
	RemoveOlderThan(ctx context.Context, expirationTime time.Time) (int64, error)
}

// AnalysesCleaner removes stored analyses past the retention period once a day. Jobs are kept.
type AnalysesCleaner struct {
	analyses             AnalysisCleanupRepository
	cron                 *cron.Cron
	expirationTimeInDays int
	now                  func() time.Time
}

func NewAnalysesCleaner(analyses AnalysisCleanupRepository, expirationInDays int) (*AnalysesCleaner, error) {

	if expirationInDays <= 0 {
		return nil, errors.New("expiration in days must be greater than zero")
	}

	ac := &AnalysesCleaner{
		analyses:             analyses,
		cron:                 cron.New(),
		expirationTimeInDays: expirationInDays,
		now:                  time.Now,
	}

	if _, err := ac.cron.AddFunc("0 0 * * *", ac.cleanOldAnalyses); err != nil {
		return nil, err
	}

	return ac, nil
}

func (ac *AnalysesCleaner) Start() {
	ac.cron.Start()
	log.Infof("analyses cleaner started, expiration in days: %d", ac.expirationTimeInDays)
}

func (ac *AnalysesCleaner) Stop() {
	<-ac.cron.Stop().Done()
}

func (ac *AnalysesCleaner) cleanOldAnalyses() {
	expirationTime := ac.now().AddDate(0, 0, -ac.expirationTimeInDays)
	rowsAffected, err := ac.analyses.RemoveOlderThan(context.Background(), expirationTime)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to clean old analyses: %v", err)
	} else {
		log.Infof("old analyses were cleaned at %v, affected rows: %v", ac.now(), rowsAffected)
	}
}
