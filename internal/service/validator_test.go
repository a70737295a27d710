package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/repository"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/service"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/settings"
)

type validatorFixture struct {
	db        *gorm.DB
	validator *service.Validator
	client    *model.Client
	worker    *model.Worker
}

func setupValidator(t *testing.T, provider settings.Provider) *validatorFixture {
	t.Helper()
	db := setupTestDB(t)

	client := &model.Client{FullName: "Al Noor Household", Status: model.ClientStatusActive}
	require.NoError(t, db.Create(client).Error)
	worker := &model.Worker{FullName: "Maria Santos", Status: model.WorkerStatusAvailable}
	require.NoError(t, db.Create(worker).Error)

	validator := service.NewValidator(
		repository.NewClientRepository(db),
		repository.NewWorkerRepository(db),
		repository.NewContractRepository(db),
		provider,
	)
	return &validatorFixture{db: db, validator: validator, client: client, worker: worker}
}

func (f *validatorFixture) validTerms() service.ContractTerms {
	return service.ContractTerms{
		ClientID:       f.client.ID,
		WorkerID:       f.worker.ID,
		ContractType:   model.ContractTypeFullTime,
		StartDate:      time.Now().AddDate(0, 0, 1),
		DurationMonths: 12,
		BasicSalary:    3000,
	}
}

func TestValidateAcceptsValidTerms(t *testing.T) {
	f := setupValidator(t, settings.Static{})

	violations, err := f.validator.Validate(context.Background(), f.validTerms())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateRequiredFields(t *testing.T) {
	f := setupValidator(t, settings.Static{})

	violations, err := f.validator.Validate(context.Background(), service.ContractTerms{})
	require.NoError(t, err)

	assert.Contains(t, violations, "client is required")
	assert.Contains(t, violations, "worker is required")
	assert.Contains(t, violations, "contract type is required")
	assert.Contains(t, violations, "start date is required")
	assert.Contains(t, violations, "salary is required")
	assert.Len(t, violations, 6) // plus the duration range rule
}

func TestValidateStartDate(t *testing.T) {
	f := setupValidator(t, settings.Static{})
	ctx := context.Background()

	terms := f.validTerms()
	terms.StartDate = time.Now().AddDate(0, 0, -1)
	violations, err := f.validator.Validate(ctx, terms)
	require.NoError(t, err)
	assert.Contains(t, violations, "start date must not be in the past")

	// Same-day start is allowed.
	terms.StartDate = time.Now()
	violations, err = f.validator.Validate(ctx, terms)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateDurationRange(t *testing.T) {
	f := setupValidator(t, settings.Static{})
	ctx := context.Background()

	for _, duration := range []int{5, 37, 0, -1} {
		terms := f.validTerms()
		terms.DurationMonths = duration
		violations, err := f.validator.Validate(ctx, terms)
		require.NoError(t, err)
		assert.NotEmpty(t, violations, "duration %d must be rejected", duration)
	}

	for _, duration := range []int{6, 36} {
		terms := f.validTerms()
		terms.DurationMonths = duration
		violations, err := f.validator.Validate(ctx, terms)
		require.NoError(t, err)
		assert.Empty(t, violations, "duration %d must be accepted", duration)
	}
}

func TestValidateSalaryBounds(t *testing.T) {
	f := setupValidator(t, settings.Static{
		settings.KeyMinSalary: 1500,
		settings.KeyMaxSalary: 8000,
	})
	ctx := context.Background()

	terms := f.validTerms()
	terms.BasicSalary = 1000
	violations, err := f.validator.Validate(ctx, terms)
	require.NoError(t, err)
	assert.Contains(t, violations, "salary must be between 1500 and 8000")

	terms.BasicSalary = 9000
	violations, err = f.validator.Validate(ctx, terms)
	require.NoError(t, err)
	assert.NotEmpty(t, violations)

	terms.BasicSalary = 1500
	violations, err = f.validator.Validate(ctx, terms)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateClientMustBeActive(t *testing.T) {
	f := setupValidator(t, settings.Static{})
	ctx := context.Background()

	require.NoError(t, f.db.Model(f.client).Update("status", model.ClientStatusSuspended).Error)

	violations, err := f.validator.Validate(ctx, f.validTerms())
	require.NoError(t, err)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "is not active")
}

func TestValidateUnknownReferences(t *testing.T) {
	f := setupValidator(t, settings.Static{})

	terms := f.validTerms()
	terms.ClientID = 404
	terms.WorkerID = 404
	violations, err := f.validator.Validate(context.Background(), terms)
	require.NoError(t, err)
	assert.Contains(t, violations, "client 404 does not exist")
	assert.Contains(t, violations, "worker 404 does not exist")
}

func TestValidateWorkerMustBeAvailable(t *testing.T) {
	f := setupValidator(t, settings.Static{})
	ctx := context.Background()

	require.NoError(t, f.db.Model(f.worker).Update("status", model.WorkerStatusSponsored).Error)

	violations, err := f.validator.Validate(ctx, f.validTerms())
	require.NoError(t, err)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "is not available")
}

func TestValidateWorkerWithOpenContract(t *testing.T) {
	f := setupValidator(t, settings.Static{})

	contract := &model.Contract{
		ContractNumber: "CON-2026-0001",
		ClientID:       f.client.ID,
		WorkerID:       f.worker.ID,
		ContractType:   model.ContractTypeFullTime,
		Status:         model.ContractStatusDraft,
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(1, 0, 0),
		DurationMonths: 12,
		BasicSalary:    3000,
	}
	require.NoError(t, f.db.Create(contract).Error)

	violations, err := f.validator.Validate(context.Background(), f.validTerms())
	require.NoError(t, err)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "already has an open contract")
}

func TestValidateUnknownContractType(t *testing.T) {
	f := setupValidator(t, settings.Static{})

	terms := f.validTerms()
	terms.ContractType = "GIG"
	violations, err := f.validator.Validate(context.Background(), terms)
	require.NoError(t, err)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "unknown contract type")
}
