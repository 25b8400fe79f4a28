package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/cv-matcher/internal/entities"
	"github.com/maxaizer/cv-matcher/internal/events"
	"github.com/maxaizer/cv-matcher/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	"time"
)

type jobReader interface {
	Get(ctx context.Context, userID string, postingID string) (*entities.Job, error)
}

// CachedJobs serves stored jobs for analyses; entries are dropped when the job is saved again.
type CachedJobs struct {
	jobs  jobReader
	cache *gocache.Cache
}

func NewCachedJobs(bus EventBus.Bus, jobs jobReader) (*CachedJobs, error) {
	c := &CachedJobs{
		jobs:  jobs,
		cache: gocache.New(10*time.Minute, 20*time.Minute),
	}
	if err := bus.Subscribe(events.JobSavedTopic, c.onJobSavedEvent); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CachedJobs) GetJob(ctx context.Context, userID string, postingID string) (*entities.Job, error) {
	key := jobCacheID(userID, postingID)
	if cached, found := c.cache.Get(key); found {
		return cached.(*entities.Job), nil
	}

	start := time.Now()
	job, err := c.jobs.Get(ctx, userID, postingID)
	metrics.PipelineStepDuration.WithLabelValues("job_lookup").Observe(time.Since(start).Seconds())
	if err != nil || job == nil {
		return job, err
	}

	c.cache.SetDefault(key, job)
	return job, nil
}

func (c *CachedJobs) onJobSavedEvent(event events.JobSaved) {
	c.cache.Delete(jobCacheID(event.UserID, event.JobPostingID))
}

func jobCacheID(userID string, postingID string) string {
	return userID + "/" + postingID
}
