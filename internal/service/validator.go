package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/repository"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/settings"
)

const (
	MinDurationMonths = 6
	MaxDurationMonths = 36
)

// Validator checks proposed contract terms against business rules.
// Purely evaluative: it reads state, accumulates violations, writes
// nothing. Every rule is checked so the caller sees all problems at
// once; only the referential rules short-circuit their own field.
type Validator struct {
	clients   *repository.ClientRepository
	workers   *repository.WorkerRepository
	contracts *repository.ContractRepository
	settings  settings.Provider
	now       func() time.Time
}

func NewValidator(
	clients *repository.ClientRepository,
	workers *repository.WorkerRepository,
	contracts *repository.ContractRepository,
	provider settings.Provider,
) *Validator {
	return &Validator{
		clients:   clients,
		workers:   workers,
		contracts: contracts,
		settings:  provider,
		now:       time.Now,
	}
}

// validateOptions adjusts the rules for the renewal path, where the
// worker is still sponsored under the contract being replaced.
type validateOptions struct {
	renewalOf *uint
}

func (v *Validator) Validate(ctx context.Context, terms ContractTerms) ([]string, error) {
	return v.validate(ctx, terms, validateOptions{})
}

func (v *Validator) validate(ctx context.Context, terms ContractTerms, opts validateOptions) ([]string, error) {
	var violations []string

	if terms.ClientID == 0 {
		violations = append(violations, "client is required")
	} else {
		client, err := v.clients.GetByID(ctx, terms.ClientID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			violations = append(violations, fmt.Sprintf("client %d does not exist", terms.ClientID))
		case err != nil:
			return nil, err
		case client.Status != model.ClientStatusActive:
			violations = append(violations, fmt.Sprintf("client %d is not active", terms.ClientID))
		}
	}

	if terms.WorkerID == 0 {
		violations = append(violations, "worker is required")
	} else {
		worker, err := v.workers.GetByID(ctx, terms.WorkerID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			violations = append(violations, fmt.Sprintf("worker %d does not exist", terms.WorkerID))
		case err != nil:
			return nil, err
		default:
			if !v.workerEligible(worker, opts) {
				violations = append(violations, fmt.Sprintf("worker %d is not available", terms.WorkerID))
			} else if open, err := v.openContractBlocks(ctx, terms.WorkerID, opts); err != nil {
				return nil, err
			} else if open {
				violations = append(violations, fmt.Sprintf("worker %d already has an open contract", terms.WorkerID))
			}
		}
	}

	if terms.ContractType == "" {
		violations = append(violations, "contract type is required")
	} else if !terms.ContractType.Valid() {
		violations = append(violations, fmt.Sprintf("unknown contract type %q", terms.ContractType))
	}

	if terms.StartDate.IsZero() {
		violations = append(violations, "start date is required")
	} else if dateOnly(terms.StartDate).Before(dateOnly(v.now())) {
		violations = append(violations, "start date must not be in the past")
	}

	if terms.DurationMonths < MinDurationMonths || terms.DurationMonths > MaxDurationMonths {
		violations = append(violations, fmt.Sprintf(
			"duration must be between %d and %d months", MinDurationMonths, MaxDurationMonths))
	}

	minSalary := v.settings.Float(settings.KeyMinSalary, settings.DefaultMinSalary)
	maxSalary := v.settings.Float(settings.KeyMaxSalary, settings.DefaultMaxSalary)
	if terms.BasicSalary <= 0 {
		violations = append(violations, "salary is required")
	} else if terms.BasicSalary < minSalary || terms.BasicSalary > maxSalary {
		violations = append(violations, fmt.Sprintf(
			"salary must be between %.0f and %.0f", minSalary, maxSalary))
	}

	return violations, nil
}

// workerEligible accepts available workers, plus the sponsored worker of
// the contract currently being renewed.
func (v *Validator) workerEligible(worker *model.Worker, opts validateOptions) bool {
	if worker.Status == model.WorkerStatusAvailable {
		return true
	}
	return opts.renewalOf != nil && worker.Status == model.WorkerStatusSponsored
}

func (v *Validator) openContractBlocks(ctx context.Context, workerID uint, opts validateOptions) (bool, error) {
	ids, err := v.contracts.OpenContractIDsForWorker(ctx, workerID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		// Renewal tolerates exactly one open contract: the original,
		// which is flipped to RENEWED right after the successor commits.
		// Any other open contract still blocks.
		if opts.renewalOf != nil && id == *opts.renewalOf {
			continue
		}
		return true, nil
	}
	return false, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
