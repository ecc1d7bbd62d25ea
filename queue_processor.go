/*
Copyright 2025 The Beamtime Server Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package beamtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/seescience/beamtime-server/database"
	"github.com/seescience/beamtime-server/internal/apierror"
	"github.com/seescience/beamtime-server/model"
)

// Result is the outcome of one ProcessNext call.
type Result int

const (
	// ResultEmpty means no entry was taken, either because the queue is empty
	// or because fetching failed.
	ResultEmpty Result = iota
	ResultProcessed
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultEmpty:
		return "empty"
	case ResultProcessed:
		return "processed"
	case ResultFailed:
		return "failed"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// DequeueError reports that a failed entry could not be removed from the
// queue. The entry stays at the head and would be fetched again.
type DequeueError struct {
	QueueID int64
	Err     error
}

func (e *DequeueError) Error() string {
	return fmt.Sprintf("failed to dequeue entry %d: %v", e.QueueID, e.Err)
}

func (e *DequeueError) Unwrap() error {
	return e.Err
}

// QueueProcessor drains the queue one entry at a time. Every fetched entry is
// attempted once and then removed, whether it succeeded or failed.
type QueueProcessor struct {
	datasource database.IDataSource
	folders    *FolderProcessor
	dois       *DOIProcessor
	dryRun     bool
	logger     logrus.FieldLogger
}

func NewQueueProcessor(datasource database.IDataSource, folders *FolderProcessor, dois *DOIProcessor, dryRun bool, logger logrus.FieldLogger) *QueueProcessor {
	return &QueueProcessor{
		datasource: datasource,
		folders:    folders,
		dois:       dois,
		dryRun:     dryRun,
		logger:     logger,
	}
}

// ProcessNext takes the oldest queue entry and runs it through the folder and
// DOI steps, then records the final status and dequeues it.
//
// Parameters:
// - ctx context.Context: The context for the operation.
//
// Returns:
// - Result: ResultEmpty when nothing was taken, ResultProcessed or ResultFailed otherwise.
// - error: The fetch error for ResultEmpty, or the failure cause (joined with any cleanup failure) for ResultFailed.
func (q *QueueProcessor) ProcessNext(ctx context.Context) (Result, error) {
	return q.processNext(ctx, nil)
}

// processNext stops with ResultEmpty when seen already contains the head of
// the queue. A nil seen disables the check.
func (q *QueueProcessor) processNext(ctx context.Context, seen map[int64]struct{}) (Result, error) {
	ctx, span := tracer.Start(ctx, "ProcessNext")
	defer span.End()

	entry, err := q.datasource.GetNextQueueEntry(ctx)
	if err != nil {
		q.logger.WithError(err).Error("Failed to get next queue entry")
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return ResultEmpty, fmt.Errorf("fetch next queue entry: %w", err)
	}
	if entry == nil {
		span.AddEvent("Queue empty")
		return ResultEmpty, nil
	}

	logger := q.logger.WithFields(logrus.Fields{
		"queue_id":      entry.ID,
		"experiment_id": entry.ExperimentID,
		"attempt_id":    uuid.NewString(),
	})
	span.SetAttributes(attribute.Int64("queue.id", entry.ID), attribute.Int64("experiment.id", entry.ExperimentID))

	if seen != nil {
		if _, ok := seen[entry.ID]; ok {
			logger.Info("[DRY RUN] Queue head already visited, stopping")
			return ResultEmpty, nil
		}
		seen[entry.ID] = struct{}{}
	}

	logger.WithFields(logrus.Fields{"create_doi": entry.CreateDOI, "draft_doi": entry.DraftDOI}).Info("Processing queue entry")

	if err := q.process(ctx, *entry, logger); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "processing failed")
		return ResultFailed, q.fail(ctx, *entry, err, logger)
	}
	return ResultProcessed, nil
}

func (q *QueueProcessor) process(ctx context.Context, entry model.QueueEntry, logger logrus.FieldLogger) error {
	if err := q.folders.Process(ctx, entry); err != nil {
		logger.WithError(err).Error("Folder processing failed")
	}

	if entry.CreateDOI {
		if err := q.dois.Process(ctx, entry); err != nil {
			return err
		}
	}

	old, err := q.datasource.GetOldProcessStatus(ctx, entry.ExperimentID)
	if err != nil {
		return err
	}
	final := model.FinalStatus(old)

	ok, err := q.datasource.UpdateExperiment(ctx, entry.ExperimentID, model.StatusUpdate(final))
	if err != nil {
		return err
	}
	if !ok {
		return apierror.NewOpError(apierror.ErrNotFound, "update_status",
			fmt.Sprintf("experiment %d not found", entry.ExperimentID), nil)
	}

	oldName := "NONE"
	if old != nil {
		oldName = old.String()
	}
	logger.WithFields(logrus.Fields{"status": final.String(), "old_status": oldName}).Info("Set experiment status")

	deleted, err := q.datasource.DeleteQueueEntry(ctx, entry.ID)
	if err != nil {
		return fmt.Errorf("dequeue entry %d: %w", entry.ID, err)
	}
	if !deleted {
		logger.Warn("Queue entry was already removed")
	}

	logger.Info("Successfully processed queue entry")
	return nil
}

// fail marks the experiment as ERROR and removes the entry. Cleanup failures
// are joined to the cause.
func (q *QueueProcessor) fail(ctx context.Context, entry model.QueueEntry, cause error, logger logrus.FieldLogger) error {
	logger.WithError(cause).Error("Failed to process queue entry")
	errs := []error{cause}

	if _, err := q.datasource.UpdateExperiment(ctx, entry.ExperimentID, model.StatusUpdate(model.StatusError)); err != nil {
		logger.WithError(err).Error("Failed to mark experiment as ERROR")
		errs = append(errs, err)
	}

	if _, err := q.datasource.DeleteQueueEntry(ctx, entry.ID); err != nil {
		logger.WithError(err).Error("Failed to remove failed queue entry")
		errs = append(errs, &DequeueError{QueueID: entry.ID, Err: err})
	}

	return errors.Join(errs...)
}

// ProcessAllPending drains the queue and returns how many entries were
// consumed, failed ones included. It stops early when fetching fails, when a
// failed entry could not be dequeued, or when ctx is cancelled.
//
// Parameters:
// - ctx context.Context: The context for the operation. Cancellation is checked between entries.
//
// Returns:
// - int: The number of entries consumed.
// - error: The error that stopped the batch early, if any.
func (q *QueueProcessor) ProcessAllPending(ctx context.Context) (int, error) {
	var seen map[int64]struct{}
	if q.dryRun {
		// Nothing is dequeued in dry-run mode, so the head would repeat forever.
		seen = make(map[int64]struct{})
	}

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			q.logger.WithField("count", count).Info("Batch processing interrupted")
			return count, err
		}

		result, err := q.processNext(context.WithoutCancel(ctx), seen)
		if result == ResultEmpty {
			if err != nil {
				return count, err
			}
			q.logger.WithField("count", count).Infof("Batch processing completed: %d items processed", count)
			return count, nil
		}

		count++
		var dqErr *DequeueError
		if result == ResultFailed && errors.As(err, &dqErr) {
			q.logger.WithField("count", count).Error("Stopping batch: failed entry is still queued")
			return count, err
		}
	}
}

// RunContinuous processes entries until ctx is cancelled, sleeping
// pollInterval whenever the queue is empty or unreachable, or when a failed
// entry could not be removed. An entry in progress is always finished before
// the loop checks ctx again.
func (q *QueueProcessor) RunContinuous(ctx context.Context, pollInterval time.Duration) error {
	q.logger.WithField("poll_interval", pollInterval.String()).Info("Starting continuous queue processing")

	for {
		select {
		case <-ctx.Done():
			q.logger.Info("Queue processing stopped")
			return nil
		default:
		}

		result, err := q.ProcessNext(context.WithoutCancel(ctx))

		// A failed entry that could not be dequeued is still at the head.
		var dqErr *DequeueError
		stuck := errors.As(err, &dqErr)
		if stuck {
			q.logger.WithField("queue_id", dqErr.QueueID).Warn("Failed entry is still queued, waiting before the next attempt")
		}

		// In dry-run mode entries are never dequeued, so wait between passes.
		if result != ResultEmpty && !q.dryRun && !stuck {
			continue
		}

		timer := time.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			q.logger.Info("Queue processing stopped")
			return nil
		case <-timer.C:
		}
	}
}
