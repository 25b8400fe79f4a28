package repositories

import (
	"context"
	"fmt"
	"github.com/maxaizer/cv-matcher/internal/entities"
	"github.com/maxaizer/cv-matcher/internal/jobdata"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"time"
)

var (
	ErrMissingKey  = errors.New("job_posting_id is required")
	ErrPersistence = errors.New("job store failure")
)

type Jobs struct {
	db  *gorm.DB
	now func() time.Time
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db, now: time.Now}
}

// Upsert stores the record for the owner, updating the row with the same
// (job_posting_id, user_id) when it exists. The returned job is nil when the
// row was written but could not be read back.
func (repo *Jobs) Upsert(ctx context.Context, record jobdata.SanitizedRecord, userID string) (*entities.Job, bool, error) {

	postingID := record.PostingID()
	if postingID == "" {
		return nil, false, ErrMissingKey
	}

	values := columnValues(record.Columns)
	values["job_posting_id"] = postingID
	values["user_id"] = userID
	values["updated_at"] = repo.now().UTC()

	created := false
	var existing entities.Job
	err := repo.db.WithContext(ctx).
		Where("job_posting_id = ? AND user_id = ?", postingID, userID).
		First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if values["created_at"] == nil {
			values["created_at"] = repo.now().UTC()
		}
		if err = repo.db.WithContext(ctx).Model(&entities.Job{}).Create(values).Error; err != nil {
			return nil, false, fmt.Errorf("%w: insert %s: %v", ErrPersistence, postingID, err)
		}
		created = true
	case err != nil:
		return nil, false, fmt.Errorf("%w: lookup %s: %v", ErrPersistence, postingID, err)
	default:
		delete(values, "created_at")
		if err = repo.db.WithContext(ctx).Model(&entities.Job{}).
			Where("job_posting_id = ? AND user_id = ?", postingID, userID).
			Updates(values).Error; err != nil {
			return nil, false, fmt.Errorf("%w: update %s: %v", ErrPersistence, postingID, err)
		}
	}

	job, err := repo.Get(ctx, userID, postingID)
	if err != nil || job == nil {
		log.Warnf("job %s stored but could not be read back: %v", postingID, err)
		return nil, created, nil
	}
	return job, created, nil
}

func (repo *Jobs) Get(ctx context.Context, userID string, postingID string) (*entities.Job, error) {
	var job entities.Job
	err := repo.db.WithContext(ctx).
		Where("job_posting_id = ? AND user_id = ?", postingID, userID).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (repo *Jobs) GetByUser(ctx context.Context, userID string, limit int) ([]entities.Job, error) {
	var jobs []entities.Job
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// columnValues converts sanitized values into types the sql drivers accept.
func columnValues(columns jobdata.Record) map[string]any {
	values := make(map[string]any, len(columns))
	for column, value := range columns {
		kind, _ := jobdata.KindOf(column)
		switch kind {
		case jobdata.KindArray:
			items, _ := value.([]string)
			values[column] = entities.StringArray(items)
		case jobdata.KindTimestamp:
			values[column] = parseTimestamp(value)
		default:
			values[column] = value
		}
	}
	return values
}

func parseTimestamp(value any) any {
	text, ok := value.(string)
	if !ok {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, text)
	if err != nil {
		return nil
	}
	return parsed
}
