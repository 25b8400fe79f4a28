package services

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/cv-matcher/internal/clients/brightdata"
	"github.com/maxaizer/cv-matcher/internal/entities"
	"github.com/maxaizer/cv-matcher/internal/events"
	"github.com/maxaizer/cv-matcher/internal/jobdata"
	"github.com/maxaizer/cv-matcher/internal/logger"
	"github.com/maxaizer/cv-matcher/internal/metrics"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"time"
)

type snapshotPoller interface {
	SubmitAndPoll(ctx context.Context, jobURL string) (any, error)
}

type jobStore interface {
	Upsert(ctx context.Context, record jobdata.SanitizedRecord, userID string) (*entities.Job, bool, error)
}

// RecordResult is the persistence outcome of a single resolved record.
type RecordResult struct {
	JobPostingID string `json:"job_posting_id"`
	Success      bool   `json:"success"`
	Created      bool   `json:"created,omitempty"`
	Error        string `json:"error,omitempty"`
}

// AggregateResult is never empty for a well-formed url: when nothing could be
// stored Data holds a single fallback record and Fallback is set.
type AggregateResult struct {
	Success  bool           `json:"success"`
	Data     []any          `json:"data"`
	Results  []RecordResult `json:"results"`
	Fallback bool           `json:"fallback"`
	Error    string         `json:"error,omitempty"`
}

type JobDataService struct {
	bus        EventBus.Bus
	poller     snapshotPoller
	jobs       jobStore
	normalizer *jobdata.Normalizer
	now        func() time.Time
}

func NewJobDataService(bus EventBus.Bus, poller snapshotPoller, jobs jobStore) *JobDataService {
	return &JobDataService{
		bus:        bus,
		poller:     poller,
		jobs:       jobs,
		normalizer: jobdata.NewNormalizer(),
		now:        time.Now,
	}
}

// RequestJobData fetches the posting behind jobURL and stores every resolved record for the owner.
// Only brightdata.ErrInvalidURL is returned as an error, every later failure degrades into the result.
func (s *JobDataService) RequestJobData(ctx context.Context, jobURL string, userID string) (AggregateResult, error) {

	if err := brightdata.ValidateJobURL(jobURL); err != nil {
		return AggregateResult{}, err
	}

	start := time.Now()
	log.Infof("requesting job data for %v, user %v", jobURL, userID)

	payload, err := s.poller.SubmitAndPoll(ctx, jobURL)
	metrics.PipelineStepDuration.WithLabelValues("snapshot").Observe(time.Since(start).Seconds())
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeBrightDataApi).
			Errorf("failed to get snapshot for %v: %v", jobURL, err)
		metrics.PipelineDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		return s.failedResult(jobURL, err), nil
	}

	records, err := jobdata.Resolve(payload)
	if err != nil {
		log.Warnf("no job records in snapshot for %v: %v", jobURL, err)
		metrics.PipelineDuration.WithLabelValues("fallback").Observe(time.Since(start).Seconds())
		return s.fallbackResult(jobURL, nil, err.Error()), nil
	}

	stepStart := time.Now()
	results, data := s.storeRecords(ctx, records, userID)
	metrics.PipelineStepDuration.WithLabelValues("persistence").Observe(time.Since(stepStart).Seconds())

	if len(data) == 0 {
		log.Warnf("no job records stored for %v, returning fallback", jobURL)
		metrics.PipelineDuration.WithLabelValues("fallback").Observe(time.Since(start).Seconds())
		return s.fallbackResult(jobURL, results, "no job records could be stored"), nil
	}

	metrics.PipelineDuration.WithLabelValues("stored").Observe(time.Since(start).Seconds())
	log.Infof("stored %d of %d job records for %v in %v", len(data), len(results), jobURL, time.Since(start))

	return AggregateResult{Success: true, Data: data, Results: results}, nil
}

func (s *JobDataService) storeRecords(ctx context.Context, records []jobdata.Record, userID string) ([]RecordResult, []any) {

	normalized := lo.Map(records, func(record jobdata.Record, _ int) jobdata.Record {
		return s.normalizer.Normalize(record)
	})
	withKey := lo.Filter(normalized, func(record jobdata.Record, _ int) bool {
		return record.PostingID() != ""
	})
	if skipped := len(normalized) - len(withKey); skipped > 0 {
		log.Warnf("skipped %d job records without a posting id", skipped)
	}

	results := make([]RecordResult, 0, len(withKey))
	data := make([]any, 0, len(withKey))

	for _, record := range withKey {
		sanitized := jobdata.Sanitize(record)
		if len(sanitized.Dropped) > 0 {
			log.Warnf("job %v: dropped unknown columns %v", sanitized.PostingID(), sanitized.Dropped)
		}

		job, created, err := s.jobs.Upsert(ctx, sanitized, userID)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to store job %v: %v", sanitized.PostingID(), err)
			metrics.StoredRecords.WithLabelValues("failed").Inc()
			results = append(results, RecordResult{JobPostingID: sanitized.PostingID(), Error: err.Error()})
			continue
		}

		metrics.StoredRecords.WithLabelValues(lo.Ternary(created, "created", "updated")).Inc()
		results = append(results, RecordResult{JobPostingID: sanitized.PostingID(), Success: true, Created: created})
		if job != nil {
			data = append(data, job)
		} else {
			data = append(data, sanitized.Columns)
		}

		s.bus.Publish(events.JobSavedTopic, events.JobSaved{
			UserID:       userID,
			JobPostingID: sanitized.PostingID(),
			Created:      created,
		})
	}

	return results, data
}

func (s *JobDataService) fallbackResult(jobURL string, results []RecordResult, reason string) AggregateResult {
	metrics.FallbackRecords.Inc()
	if results == nil {
		results = []RecordResult{}
	}
	return AggregateResult{
		Success:  true,
		Data:     []any{jobdata.FallbackRecord(jobURL, reason, s.now())},
		Results:  results,
		Fallback: true,
	}
}

func (s *JobDataService) failedResult(jobURL string, err error) AggregateResult {
	metrics.FallbackRecords.Inc()
	return AggregateResult{
		Success:  false,
		Data:     []any{jobdata.FallbackRecord(jobURL, describePollError(err), s.now())},
		Results:  []RecordResult{},
		Fallback: true,
		Error:    err.Error(),
	}
}

func describePollError(err error) string {
	switch {
	case errors.Is(err, brightdata.ErrPollingTimeout):
		return "the scraping job did not finish in time"
	case errors.Is(err, brightdata.ErrSnapshotNotFound):
		return "the scraping job was not found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "the request was cancelled"
	default:
		return fmt.Sprintf("upstream error: %v", err)
	}
}
