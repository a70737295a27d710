package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/audit"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/repository"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/sequence"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/service"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/settings"
)

const testActorID = uint(77)

type stubNotifier struct {
	err   error
	calls int
}

func (n *stubNotifier) ContractApproved(context.Context, *model.Contract) error {
	n.calls++
	return n.err
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Client{},
		&model.Worker{},
		&model.Contract{},
		&model.Invoice{},
		&model.AuditEntry{},
	))
	return db
}

type serviceFixture struct {
	db       *gorm.DB
	svc      *service.ContractService
	notifier *stubNotifier
	client   *model.Client
	worker   *model.Worker
}

func setupService(t *testing.T) *serviceFixture {
	t.Helper()
	db := setupTestDB(t)

	notifier := &stubNotifier{}
	svc := service.NewContractService(
		db,
		repository.NewContractRepository(db),
		repository.NewClientRepository(db),
		repository.NewWorkerRepository(db),
		repository.NewInvoiceRepository(db),
		settings.Static{},
		sequence.NewGenerator(),
		notifier,
		audit.NewLogger(repository.NewAuditRepository(db), zerolog.Nop()),
		zerolog.Nop(),
	)

	client := &model.Client{FullName: "Al Noor Household", Status: model.ClientStatusActive}
	require.NoError(t, db.Create(client).Error)
	worker := &model.Worker{FullName: "Maria Santos", Status: model.WorkerStatusAvailable}
	require.NoError(t, db.Create(worker).Error)

	return &serviceFixture{db: db, svc: svc, notifier: notifier, client: client, worker: worker}
}

func (f *serviceFixture) validTerms() service.ContractTerms {
	return service.ContractTerms{
		ClientID:       f.client.ID,
		WorkerID:       f.worker.ID,
		ContractType:   model.ContractTypeFullTime,
		StartDate:      time.Now().AddDate(0, 0, 1),
		DurationMonths: 24,
		BasicSalary:    3000,
	}
}

func (f *serviceFixture) reloadWorker(t *testing.T) *model.Worker {
	t.Helper()
	var worker model.Worker
	require.NoError(t, f.db.First(&worker, f.worker.ID).Error)
	return &worker
}

func (f *serviceFixture) reloadContract(t *testing.T, id uint) *model.Contract {
	t.Helper()
	var contract model.Contract
	require.NoError(t, f.db.First(&contract, id).Error)
	return &contract
}

func TestCreateContract(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	terms := f.validTerms()
	result, err := f.svc.Create(ctx, terms, testActorID)
	require.NoError(t, err)

	contract := result.Contract
	assert.NotZero(t, contract.ID)
	assert.Regexp(t, `^CON-\d{4}-\d{4}$`, contract.ContractNumber)
	assert.Equal(t, model.ContractStatusDraft, contract.Status)
	assert.Equal(t, testActorID, contract.CreatedBy)

	// End date is start date plus the duration in calendar months.
	stored := f.reloadContract(t, contract.ID)
	wantEnd := stored.StartDate.AddDate(0, terms.DurationMonths, 0)
	assert.Equal(t, wantEnd.Format("2006-01-02"), stored.EndDate.Format("2006-01-02"))

	// Scenario figures: 3000 salary over 24 months with default fees.
	assert.Equal(t, 3000.0, stored.MonthlyClientFee)
	assert.Equal(t, 6500.0, stored.AnnualContractFee)
	assert.Equal(t, 3925.0, stored.VATAmount)
	assert.Equal(t, 82425.0, stored.TotalContractValue)

	assert.Equal(t, model.WorkerStatusOffered, f.reloadWorker(t).Status)
}

func TestCreateContractValidationFailureWritesNothing(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	terms := f.validTerms()
	terms.StartDate = time.Now().AddDate(0, 0, -1)
	terms.DurationMonths = 3

	_, err := f.svc.Create(ctx, terms, testActorID)
	assert.ErrorIs(t, err, service.ErrValidation)

	var validationErr *service.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Violations, 2)

	var count int64
	require.NoError(t, f.db.Model(&model.Contract{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, model.WorkerStatusAvailable, f.reloadWorker(t).Status)
}

func TestCreateContractDurationBoundaries(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	terms := f.validTerms()
	terms.DurationMonths = 36
	result, err := f.svc.Create(ctx, terms, testActorID)
	require.NoError(t, err)
	assert.Equal(t, 36, result.Contract.DurationMonths)
}

func TestApproveContract(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)

	result, err := f.svc.Approve(ctx, created.Contract.ID, testActorID)
	require.NoError(t, err)

	contract := result.Contract
	assert.Equal(t, model.ContractStatusActive, contract.Status)
	require.NotNil(t, contract.ApprovedBy)
	assert.Equal(t, testActorID, *contract.ApprovedBy)
	assert.NotNil(t, contract.ApprovedAt)

	require.NotNil(t, result.Invoice)
	assert.Regexp(t, `^INV-\d{4}-\d{4}$`, result.Invoice.InvoiceNumber)
	assert.Equal(t, contract.TotalContractValue, result.Invoice.TotalAmount)
	assert.Equal(t, model.InvoiceStatusPending, result.Invoice.Status)
	wantDue := time.Now().AddDate(0, 0, 30).Format("2006-01-02")
	assert.Equal(t, wantDue, result.Invoice.DueDate.Format("2006-01-02"))

	assert.Equal(t, model.WorkerStatusSponsored, f.reloadWorker(t).Status)
	assert.Equal(t, 1, f.notifier.calls)
	assert.Empty(t, result.Warnings)
}

func TestApproveTwiceFailsAndIssuesOneInvoice(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, created.Contract.ID, testActorID)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, created.Contract.ID, testActorID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	var invoices int64
	require.NoError(t, f.db.Model(&model.Invoice{}).
		Where("contract_id = ?", created.Contract.ID).
		Count(&invoices).Error)
	assert.Equal(t, int64(1), invoices)
	assert.Equal(t, model.WorkerStatusSponsored, f.reloadWorker(t).Status)
}

func TestApproveMissingContract(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.Approve(context.Background(), 9999, testActorID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestApproveNotificationFailureIsWarningOnly(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	f.notifier.err = errors.New("broker unreachable")

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)

	result, err := f.svc.Approve(ctx, created.Contract.ID, testActorID)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "notification failed")

	// Approval stuck despite the failed notification.
	assert.Equal(t, model.ContractStatusActive, f.reloadContract(t, created.Contract.ID).Status)
}

func TestCancelRequiresReason(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, created.Contract.ID, "", testActorID)
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Equal(t, model.ContractStatusDraft, f.reloadContract(t, created.Contract.ID).Status)
}

func TestCancelActiveContract(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)
	approved, err := f.svc.Approve(ctx, created.Contract.ID, testActorID)
	require.NoError(t, err)

	// A paid invoice must survive the cancellation untouched.
	paid := &model.Invoice{
		InvoiceNumber: "INV-2026-9999",
		ContractID:    created.Contract.ID,
		ClientID:      f.client.ID,
		TotalAmount:   500,
		DueDate:       time.Now(),
		Status:        model.InvoiceStatusPaid,
	}
	require.NoError(t, f.db.Create(paid).Error)

	result, err := f.svc.Cancel(ctx, created.Contract.ID, "client request", testActorID)
	require.NoError(t, err)

	contract := result.Contract
	assert.Equal(t, model.ContractStatusCancelled, contract.Status)
	assert.Equal(t, "client request", contract.CancellationReason)
	require.NotNil(t, contract.CancelledBy)
	assert.Equal(t, testActorID, *contract.CancelledBy)

	assert.Equal(t, model.WorkerStatusAvailable, f.reloadWorker(t).Status)

	var pending model.Invoice
	require.NoError(t, f.db.First(&pending, approved.Invoice.ID).Error)
	assert.Equal(t, model.InvoiceStatusCancelled, pending.Status)

	var untouched model.Invoice
	require.NoError(t, f.db.First(&untouched, paid.ID).Error)
	assert.Equal(t, model.InvoiceStatusPaid, untouched.Status)
}

func TestCancelDraftWithoutInvoices(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)

	result, err := f.svc.Cancel(ctx, created.Contract.ID, "changed plans", testActorID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusCancelled, result.Contract.Status)
	assert.Equal(t, model.WorkerStatusAvailable, f.reloadWorker(t).Status)
}

func TestCancelTerminalContract(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, created.Contract.ID, "first", testActorID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, created.Contract.ID, "second", testActorID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestRenewContract(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, created.Contract.ID, testActorID)
	require.NoError(t, err)

	newStart := time.Now().AddDate(0, 1, 0)
	newSalary := 3500.0
	result, err := f.svc.Renew(ctx, created.Contract.ID, service.RenewalTerms{
		StartDate:   newStart,
		BasicSalary: &newSalary,
	}, testActorID)
	require.NoError(t, err)

	successor := result.Contract
	assert.NotEqual(t, created.Contract.ID, successor.ID)
	assert.Equal(t, model.ContractStatusDraft, successor.Status)
	assert.Equal(t, newStart.Format("2006-01-02"), successor.StartDate.Format("2006-01-02"))
	assert.Equal(t, newSalary, successor.BasicSalary)
	// Untouched terms carry over from the original.
	assert.Equal(t, created.Contract.DurationMonths, successor.DurationMonths)
	assert.Equal(t, created.Contract.WorkerID, successor.WorkerID)

	original := f.reloadContract(t, created.Contract.ID)
	assert.Equal(t, model.ContractStatusRenewed, original.Status)
	require.NotNil(t, original.RenewalContractID)
	assert.Equal(t, successor.ID, *original.RenewalContractID)

	assert.Equal(t, model.WorkerStatusOffered, f.reloadWorker(t).Status)
}

func TestRenewFailureLeavesOriginalUntouched(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, created.Contract.ID, testActorID)
	require.NoError(t, err)

	badDuration := 3
	_, err = f.svc.Renew(ctx, created.Contract.ID, service.RenewalTerms{
		StartDate:      time.Now().AddDate(0, 1, 0),
		DurationMonths: &badDuration,
	}, testActorID)
	assert.ErrorIs(t, err, service.ErrValidation)

	original := f.reloadContract(t, created.Contract.ID)
	assert.Equal(t, model.ContractStatusActive, original.Status)
	assert.Nil(t, original.RenewalContractID)
	assert.Equal(t, model.WorkerStatusSponsored, f.reloadWorker(t).Status)

	var count int64
	require.NoError(t, f.db.Model(&model.Contract{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRenewRequiresActiveContract(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)

	_, err = f.svc.Renew(ctx, created.Contract.ID, service.RenewalTerms{
		StartDate: time.Now().AddDate(0, 1, 0),
	}, testActorID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestRenewRequiresStartDate(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, created.Contract.ID, testActorID)
	require.NoError(t, err)

	_, err = f.svc.Renew(ctx, created.Contract.ID, service.RenewalTerms{}, testActorID)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCreateFailsWhenWorkerTakenConcurrently(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	// A second create grabs the worker after this one's validation has
	// read them but before its transaction flips their status.
	stolen := false
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").
		Register("worker_taken", func(tx *gorm.DB) {
			if stolen {
				return
			}
			if _, ok := tx.Statement.Dest.(*model.Contract); !ok {
				return
			}
			stolen = true
			require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Exec(
				"UPDATE workers SET status = ? WHERE id = ?",
				model.WorkerStatusOffered, f.worker.ID).Error)
		}))

	_, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	// The losing transaction rolled back whole.
	var count int64
	require.NoError(t, f.db.Model(&model.Contract{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApproveFailsWhenWorkerNoLongerOffered(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)

	// Worker exits the program while the contract sits in DRAFT.
	require.NoError(t, f.db.Model(&model.Worker{}).
		Where("id = ?", f.worker.ID).
		Update("status", model.WorkerStatusExited).Error)

	_, err = f.svc.Approve(ctx, created.Contract.ID, testActorID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	assert.Equal(t, model.WorkerStatusExited, f.reloadWorker(t).Status)
	assert.Equal(t, model.ContractStatusDraft, f.reloadContract(t, created.Contract.ID).Status)

	var invoices int64
	require.NoError(t, f.db.Model(&model.Invoice{}).Count(&invoices).Error)
	assert.Zero(t, invoices)
	assert.Zero(t, f.notifier.calls)
}

func TestApproveLosesRaceToConcurrentTransition(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)

	// A competing approval flips the row between this transaction's
	// read and its conditional update, so the update matches zero rows.
	stolen := false
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").
		Register("competing_approval", func(tx *gorm.DB) {
			if stolen {
				return
			}
			if _, ok := tx.Statement.Model.(*model.Contract); !ok {
				return
			}
			stolen = true
			require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Exec(
				"UPDATE contracts SET status = ? WHERE id = ?",
				model.ContractStatusActive, created.Contract.ID).Error)
		}))

	_, err = f.svc.Approve(ctx, created.Contract.ID, testActorID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	// Exactly one approval may win; the loser leaves nothing behind.
	var invoices int64
	require.NoError(t, f.db.Model(&model.Invoice{}).Count(&invoices).Error)
	assert.Zero(t, invoices)
	assert.Equal(t, model.ContractStatusDraft, f.reloadContract(t, created.Contract.ID).Status)
	assert.Equal(t, model.WorkerStatusOffered, f.reloadWorker(t).Status)
	assert.Zero(t, f.notifier.calls)
}

func TestApproveRetriesOnInvoiceNumberCollision(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)

	// A racing approval takes the same invoice number between the
	// availability check and the insert.
	stolen := false
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").
		Register("invoice_number_taken", func(tx *gorm.DB) {
			invoice, ok := tx.Statement.Dest.(*model.Invoice)
			if !ok || stolen {
				return
			}
			stolen = true
			require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Exec(
				`INSERT INTO invoices
					(invoice_number, contract_id, client_id, total_amount, currency, due_date, status, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				invoice.InvoiceNumber, created.Contract.ID, f.client.ID, 1.0, "AED",
				time.Now(), model.InvoiceStatusPending, time.Now(), time.Now()).Error)
		}))

	result, err := f.svc.Approve(ctx, created.Contract.ID, testActorID)
	require.NoError(t, err)
	require.NotNil(t, result.Invoice)

	// The first attempt rolled back whole; the retry drew a new number.
	var invoices int64
	require.NoError(t, f.db.Model(&model.Invoice{}).
		Where("contract_id = ?", created.Contract.ID).
		Count(&invoices).Error)
	assert.Equal(t, int64(1), invoices)
	assert.Equal(t, model.ContractStatusActive, f.reloadContract(t, created.Contract.ID).Status)
	assert.Equal(t, model.WorkerStatusSponsored, f.reloadWorker(t).Status)
	assert.Equal(t, 1, f.notifier.calls)
}

func TestRenewLosesRaceToConcurrentTransition(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, created.Contract.ID, testActorID)
	require.NoError(t, err)

	// A cancellation commits between the successor's creation and the
	// original's flip to RENEWED.
	stolen := false
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").
		Register("competing_cancel", func(tx *gorm.DB) {
			if stolen {
				return
			}
			if _, ok := tx.Statement.Model.(*model.Contract); !ok {
				return
			}
			stolen = true
			require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Exec(
				"UPDATE contracts SET status = ? WHERE id = ?",
				model.ContractStatusCancelled, created.Contract.ID).Error)
		}))

	_, err = f.svc.Renew(ctx, created.Contract.ID, service.RenewalTerms{
		StartDate: time.Now().AddDate(0, 1, 0),
	}, testActorID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	original := f.reloadContract(t, created.Contract.ID)
	assert.NotEqual(t, model.ContractStatusRenewed, original.Status)
	assert.Nil(t, original.RenewalContractID)
}

func TestRenewBlockedByUnrelatedOpenContract(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.validTerms(), testActorID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, created.Contract.ID, testActorID)
	require.NoError(t, err)

	// A second open contract for the same worker, seeded out of band.
	// The renewal exemption covers only the contract being replaced.
	other := &model.Contract{
		ContractNumber: "CON-2026-9998",
		ClientID:       f.client.ID,
		WorkerID:       f.worker.ID,
		ContractType:   model.ContractTypeFullTime,
		Status:         model.ContractStatusDraft,
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(1, 0, 0),
		DurationMonths: 12,
		BasicSalary:    2500,
	}
	require.NoError(t, f.db.Create(other).Error)

	_, err = f.svc.Renew(ctx, created.Contract.ID, service.RenewalTerms{
		StartDate: time.Now().AddDate(0, 1, 0),
	}, testActorID)
	assert.ErrorIs(t, err, service.ErrValidation)

	var validationErr *service.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Violations[0], "already has an open contract")
	assert.Equal(t, model.ContractStatusActive, f.reloadContract(t, created.Contract.ID).Status)
}

func TestCreateWritesAuditEntry(t *testing.T) {
	f := setupService(t)

	created, err := f.svc.Create(context.Background(), f.validTerms(), testActorID)
	require.NoError(t, err)

	var entry model.AuditEntry
	require.NoError(t, f.db.Where("action = ?", "contract.create").First(&entry).Error)
	assert.Equal(t, testActorID, entry.ActorID)
	assert.Equal(t, created.Contract.ID, entry.RelatedID)
	assert.Equal(t, "contract", entry.RelatedType)
}
