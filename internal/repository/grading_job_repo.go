package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/edusphere-api/internal/models"
)

// ErrGradingJobMissing is returned when a job record does not exist or has expired.
var ErrGradingJobMissing = errors.New("grading job not found")

const gradingJobKeyPrefix = "edusphere:grading:jobs:"

// GradingJobRepository persists bulk grading job status records.
type GradingJobRepository interface {
	Save(ctx context.Context, job models.GradingJob) error
	Get(ctx context.Context, id string) (models.GradingJob, error)
}

type redisGradingJobRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGradingJobRepository stores job records as JSON values that expire after ttl.
func NewRedisGradingJobRepository(client *redis.Client, ttl time.Duration) GradingJobRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisGradingJobRepository{client: client, ttl: ttl}
}

func (r *redisGradingJobRepository) Save(ctx context.Context, job models.GradingJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode grading job: %w", err)
	}
	return r.client.Set(ctx, gradingJobKeyPrefix+job.ID, payload, r.ttl).Err()
}

func (r *redisGradingJobRepository) Get(ctx context.Context, id string) (models.GradingJob, error) {
	payload, err := r.client.Get(ctx, gradingJobKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.GradingJob{}, ErrGradingJobMissing
	}
	if err != nil {
		return models.GradingJob{}, err
	}

	var job models.GradingJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return models.GradingJob{}, fmt.Errorf("decode grading job: %w", err)
	}
	return job, nil
}

type memoryGradingJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]models.GradingJob
}

// NewMemoryGradingJobRepository keeps job records in process memory. Used when Redis is not configured.
func NewMemoryGradingJobRepository() GradingJobRepository {
	return &memoryGradingJobRepository{jobs: make(map[string]models.GradingJob)}
}

func (r *memoryGradingJobRepository) Save(_ context.Context, job models.GradingJob) error {
	job.Failures = append([]models.GradingJobFailure(nil), job.Failures...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *memoryGradingJobRepository) Get(_ context.Context, id string) (models.GradingJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return models.GradingJob{}, ErrGradingJobMissing
	}
	job.Failures = append([]models.GradingJobFailure(nil), job.Failures...)
	return job, nil
}
