package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
)

type WorkerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

func (r *WorkerRepository) WithTx(tx *gorm.DB) *WorkerRepository {
	return &WorkerRepository{db: tx}
}

func (r *WorkerRepository) GetByID(ctx context.Context, id uint) (*model.Worker, error) {
	var worker model.Worker
	if err := r.db.WithContext(ctx).First(&worker, id).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}

// TransitionStatus flips the worker's status only when the current one
// is among the expected set. The predicate rides in the WHERE clause so
// a worker moved by a concurrent operation or an external system makes
// this a zero-row update instead of a lost write.
func (r *WorkerRepository) TransitionStatus(
	ctx context.Context,
	id uint,
	from []model.WorkerStatus,
	to model.WorkerStatus,
	note string,
) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Worker{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{
			"status":      to,
			"status_note": note,
			"updated_at":  time.Now(),
		})
	return result.RowsAffected, result.Error
}
