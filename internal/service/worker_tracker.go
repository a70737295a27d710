package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/repository"
)

// workerTracker flips worker availability as contracts move through
// their lifecycle. Only the contract service calls it, and only inside
// a transaction. Every flip states the statuses it expects to find, so
// a worker moved by a concurrent operation or an external system turns
// the flip into a zero-row update instead of a lost write.
type workerTracker struct {
	workers *repository.WorkerRepository
}

func (t *workerTracker) transition(ctx context.Context, tx *gorm.DB, workerID uint, from []model.WorkerStatus, to model.WorkerStatus, note string) error {
	rows, err := t.workers.WithTx(tx).TransitionStatus(ctx, workerID, from, to, note)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: worker %d is not %s", ErrInvalidTransition, workerID, statusList(from))
	}
	return nil
}

// release frees the worker unless something else already moved them on.
// A worker who exited while the contract was open stays exited; a
// cancellation never resurrects availability.
func (t *workerTracker) release(ctx context.Context, tx *gorm.DB, workerID uint, note string) error {
	_, err := t.workers.WithTx(tx).TransitionStatus(ctx, workerID,
		[]model.WorkerStatus{model.WorkerStatusOffered, model.WorkerStatusSponsored},
		model.WorkerStatusAvailable, note)
	return err
}

func statusList(statuses []model.WorkerStatus) string {
	parts := make([]string, len(statuses))
	for i, status := range statuses {
		parts[i] = string(status)
	}
	return strings.Join(parts, " or ")
}
