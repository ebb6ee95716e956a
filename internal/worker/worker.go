package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/menumesa/backend/pkg/queue"
	"github.com/menumesa/backend/pkg/storage"
)

// PhotoCleanupProcessor deletes replaced or orphaned photo objects from S3.
// Deletion is asynchronous so an upload request never waits on it.
type PhotoCleanupProcessor struct {
	s3     *storage.S3
	queue  *queue.Queue
	logger *zap.Logger
}

// NewPhotoCleanupProcessor creates a photo cleanup processor.
func NewPhotoCleanupProcessor(s3 *storage.S3, q *queue.Queue, logger *zap.Logger) *PhotoCleanupProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoCleanupProcessor{s3: s3, queue: q, logger: logger}
}

// Process executes one photo cleanup job.
func (p *PhotoCleanupProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypePhotoCleanup {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.PhotoCleanupPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	key := storage.KeyFromURL(payload.PhotoURL)
	if key == "" {
		p.logger.Warn("cleanup job with unparseable photo URL",
			zap.String("job_id", job.ID), zap.String("photo_url", payload.PhotoURL))
		return nil
	}

	if err := p.s3.DeletePhoto(ctx, key); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}

	p.logger.Info("photo cleanup completed",
		zap.String("job_id", job.ID),
		zap.String("restaurant_id", payload.RestaurantID.String()),
		zap.String("key", key),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *PhotoCleanupProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("photo cleanup worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
