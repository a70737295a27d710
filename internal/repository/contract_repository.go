package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// WithTx rebinds the repository to a transaction handle so multi-table
// writes share one unit of work.
func (r *ContractRepository) WithTx(tx *gorm.DB) *ContractRepository {
	return &ContractRepository{db: tx}
}

func (r *ContractRepository) Create(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *ContractRepository) GetByID(ctx context.Context, id uint) (*model.Contract, error) {
	var contract model.Contract
	if err := r.db.WithContext(ctx).First(&contract, id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Contract{}).
		Where("contract_number = ?", number).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// OpenContractIDsForWorker lists the worker's contracts still in DRAFT
// or ACTIVE.
func (r *ContractRepository) OpenContractIDsForWorker(ctx context.Context, workerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Contract{}).
		Where("worker_id = ? AND status IN ?", workerID,
			[]model.ContractStatus{model.ContractStatusDraft, model.ContractStatusActive}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// TransitionStatus flips a contract from one status to another together
// with the given column updates. The status predicate rides in the WHERE
// clause so a concurrent transition makes this a zero-row update instead
// of a lost write; the caller decides what zero rows means.
func (r *ContractRepository) TransitionStatus(
	ctx context.Context,
	id uint,
	from, to model.ContractStatus,
	updates map[string]any,
) (int64, error) {
	values := map[string]any{"status": to, "updated_at": time.Now()}
	for column, value := range updates {
		values[column] = value
	}
	result := r.db.WithContext(ctx).Model(&model.Contract{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	return result.RowsAffected, result.Error
}
