package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/audit"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/notify"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/repository"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/sequence"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/settings"
)

const (
	contractNumberPrefix = "CON"
	invoiceNumberPrefix  = "INV"
	invoiceDueDays       = 30

	// A fresh number can race a concurrent insert between the existence
	// check and the commit; the duplicate-key failure is a retry signal.
	createAttempts = 3
)

// ContractService owns the contract state machine. Every mutating
// operation runs its writes in one transaction; notifications go out
// after commit and report failure through the result's warning list.
type ContractService struct {
	db        *gorm.DB
	contracts *repository.ContractRepository
	clients   *repository.ClientRepository
	invoices  *repository.InvoiceRepository
	validator *Validator
	tracker   *workerTracker
	settings  settings.Provider
	numbers   *sequence.Generator
	notifier  notify.Notifier
	audit     *audit.Logger
	log       zerolog.Logger
	now       func() time.Time
}

func NewContractService(
	db *gorm.DB,
	contracts *repository.ContractRepository,
	clients *repository.ClientRepository,
	workers *repository.WorkerRepository,
	invoices *repository.InvoiceRepository,
	provider settings.Provider,
	numbers *sequence.Generator,
	notifier notify.Notifier,
	auditLog *audit.Logger,
	log zerolog.Logger,
) *ContractService {
	return &ContractService{
		db:        db,
		contracts: contracts,
		clients:   clients,
		invoices:  invoices,
		validator: NewValidator(clients, workers, contracts, provider),
		tracker:   &workerTracker{workers: workers},
		settings:  provider,
		numbers:   numbers,
		notifier:  notifier,
		audit:     auditLog,
		log:       log,
		now:       time.Now,
	}
}

// OperationResult is what every mutating operation hands back: the
// affected records plus warnings from best-effort side effects.
type OperationResult struct {
	Contract *model.Contract
	Invoice  *model.Invoice
	Warnings []string
}

// RenewalTerms overlays the original contract's terms. StartDate is
// mandatory and always wins; nil fields keep the original value.
type RenewalTerms struct {
	StartDate      time.Time
	DurationMonths *int
	ContractType   *model.ContractType
	BasicSalary    *float64
	ProbationDays  *int
	NoticeDays     *int

	AccommodationAllowance  *float64
	FoodAllowance           *float64
	TransportationAllowance *float64
	CommunicationAllowance  *float64
	MedicalInsurance        *bool
	AnnualTicket            *bool
	EndOfServiceBenefit     *bool
}

// PreviewCost runs the cost calculator against the current settings
// without touching storage, for quotation screens.
func (s *ContractService) PreviewCost(terms ContractTerms) CostBreakdown {
	return CalculateCost(terms, settings.TakeSnapshot(s.settings))
}

// Create validates the terms, computes the financials and persists the
// contract in DRAFT, marking the worker OFFERED in the same transaction.
func (s *ContractService) Create(ctx context.Context, terms ContractTerms, actorID uint) (*OperationResult, error) {
	return s.create(ctx, terms, actorID, validateOptions{})
}

func (s *ContractService) create(ctx context.Context, terms ContractTerms, actorID uint, opts validateOptions) (*OperationResult, error) {
	violations, err := s.validator.validate(ctx, terms, opts)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	snapshot := settings.TakeSnapshot(s.settings)
	breakdown := CalculateCost(terms, snapshot)

	var contract *model.Contract
	for attempt := 0; attempt < createAttempts; attempt++ {
		number, err := s.numbers.Next(ctx, contractNumberPrefix, s.contracts.NumberExists)
		if err != nil {
			return nil, wrapPersistence(err)
		}

		contract = s.buildContract(terms, breakdown, number, actorID)
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.contracts.WithTx(tx).Create(ctx, contract); err != nil {
				return err
			}
			// The validator saw pre-transaction state; the conditional
			// flip re-checks availability under the worker row's lock,
			// so two racing creates cannot both offer the same worker.
			note := fmt.Sprintf("offered under contract %s", contract.ContractNumber)
			return s.tracker.transition(ctx, tx, terms.WorkerID, offerableFrom(opts), model.WorkerStatusOffered, note)
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, wrapPersistence(err)
		}

		s.audit.Log(ctx, "contract.create",
			fmt.Sprintf("contract %s created for worker %d", contract.ContractNumber, contract.WorkerID),
			actorID, contract.ID, "contract")
		return &OperationResult{Contract: contract}, nil
	}
	return nil, wrapPersistence(fmt.Errorf("contract number kept colliding after %d attempts", createAttempts))
}

// offerableFrom lists the statuses a worker may be offered from. A
// renewal offers the worker its original contract still sponsors; a
// fresh contract needs an available one.
func offerableFrom(opts validateOptions) []model.WorkerStatus {
	if opts.renewalOf != nil {
		return []model.WorkerStatus{model.WorkerStatusAvailable, model.WorkerStatusSponsored}
	}
	return []model.WorkerStatus{model.WorkerStatusAvailable}
}

func (s *ContractService) buildContract(terms ContractTerms, breakdown CostBreakdown, number string, actorID uint) *model.Contract {
	currency := terms.Currency
	if currency == "" {
		currency = "AED"
	}
	return &model.Contract{
		ContractNumber: number,
		ClientID:       terms.ClientID,
		WorkerID:       terms.WorkerID,
		ContractType:   terms.ContractType,
		Status:         model.ContractStatusDraft,

		StartDate:      dateOnly(terms.StartDate),
		EndDate:        dateOnly(terms.EndDate()),
		DurationMonths: terms.DurationMonths,
		ProbationDays:  terms.ProbationDays,
		NoticeDays:     terms.NoticeDays,

		BasicSalary:             terms.BasicSalary,
		Currency:                currency,
		AccommodationAllowance:  terms.AccommodationAllowance,
		FoodAllowance:           terms.FoodAllowance,
		TransportationAllowance: terms.TransportationAllowance,
		CommunicationAllowance:  terms.CommunicationAllowance,
		MedicalInsurance:        terms.MedicalInsurance,
		AnnualTicket:            terms.AnnualTicket,
		EndOfServiceBenefit:     terms.EndOfServiceBenefit,

		MonthlyClientFee:   breakdown.MonthlyClientFee,
		AnnualContractFee:  breakdown.AnnualContractFee,
		InsuranceDeposit:   breakdown.InsuranceDeposit,
		GovernmentFees:     breakdown.GovernmentFees,
		AgencyFees:         breakdown.AgencyFees,
		VATAmount:          breakdown.VATAmount,
		TotalContractValue: breakdown.Total,

		JobDescription:    terms.JobDescription,
		SpecialConditions: terms.SpecialConditions,
		ContractTerms:     terms.TermsText,

		CreatedBy: actorID,
	}
}

// Approve moves a DRAFT contract to ACTIVE, sponsors the worker and
// issues the invoice, all in one transaction. A racing approval can
// take the drawn invoice number first; that duplicate-key failure rolls
// the attempt back and a fresh number is drawn. The approval
// notification goes out after commit; its failure comes back as a
// warning.
func (s *ContractService) Approve(ctx context.Context, contractID uint, actorID uint) (*OperationResult, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		var approved *model.Contract
		var invoice *model.Invoice

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			contracts := s.contracts.WithTx(tx)

			contract, err := contracts.GetByID(ctx, contractID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contract %d", ErrNotFound, contractID)
			}
			if err != nil {
				return err
			}
			if contract.Status != model.ContractStatusDraft {
				return fmt.Errorf("%w: cannot approve contract in status %s", ErrInvalidTransition, contract.Status)
			}

			now := s.now()
			rows, err := contracts.TransitionStatus(ctx, contractID,
				model.ContractStatusDraft, model.ContractStatusActive,
				map[string]any{"approved_by": actorID, "approved_at": now})
			if err != nil {
				return err
			}
			if rows == 0 {
				// Lost the race with a concurrent transition.
				return fmt.Errorf("%w: contract %d left DRAFT concurrently", ErrInvalidTransition, contractID)
			}

			// Sponsorship requires the worker to still be the one this
			// contract offered. A worker who exited or was taken in the
			// meantime fails the approval instead of being re-sponsored.
			note := fmt.Sprintf("sponsored under contract %s", contract.ContractNumber)
			if err := s.tracker.transition(ctx, tx, contract.WorkerID,
				[]model.WorkerStatus{model.WorkerStatusOffered},
				model.WorkerStatusSponsored, note); err != nil {
				return err
			}

			invoices := s.invoices.WithTx(tx)
			invoiceNumber, err := s.numbers.Next(ctx, invoiceNumberPrefix, invoices.NumberExists)
			if err != nil {
				return err
			}
			invoice = &model.Invoice{
				InvoiceNumber: invoiceNumber,
				ContractID:    contract.ID,
				ClientID:      contract.ClientID,
				TotalAmount:   contract.TotalContractValue,
				Currency:      contract.Currency,
				DueDate:       dateOnly(now.AddDate(0, 0, invoiceDueDays)),
				Status:        model.InvoiceStatusPending,
			}
			if err := invoices.Create(ctx, invoice); err != nil {
				return err
			}

			contract.Status = model.ContractStatusActive
			contract.ApprovedBy = &actorID
			contract.ApprovedAt = &now
			approved = contract
			return nil
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, wrapPersistence(err)
		}

		result := &OperationResult{Contract: approved, Invoice: invoice}
		if err := s.notifier.ContractApproved(ctx, approved); err != nil {
			s.log.Warn().Err(err).Uint("contract_id", approved.ID).Msg("approval notification failed")
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("approval notification failed: %v", err))
		}

		s.audit.Log(ctx, "contract.approve",
			fmt.Sprintf("contract %s approved", approved.ContractNumber),
			actorID, approved.ID, "contract")
		return result, nil
	}
	return nil, wrapPersistence(fmt.Errorf("invoice number kept colliding after %d attempts", createAttempts))
}

// Cancel terminates a DRAFT or ACTIVE contract, releases the worker and
// cancels any unpaid invoices. The reason is mandatory.
func (s *ContractService) Cancel(ctx context.Context, contractID uint, reason string, actorID uint) (*OperationResult, error) {
	if reason == "" {
		return nil, newValidationError("cancellation reason is required")
	}

	var cancelled *model.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contracts := s.contracts.WithTx(tx)

		contract, err := contracts.GetByID(ctx, contractID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: contract %d", ErrNotFound, contractID)
		}
		if err != nil {
			return err
		}
		if contract.Status.Terminal() {
			return fmt.Errorf("%w: cannot cancel contract in status %s", ErrInvalidTransition, contract.Status)
		}

		now := s.now()
		rows, err := contracts.TransitionStatus(ctx, contractID,
			contract.Status, model.ContractStatusCancelled,
			map[string]any{
				"cancelled_by":        actorID,
				"cancelled_at":        now,
				"cancellation_reason": reason,
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: contract %d changed status concurrently", ErrInvalidTransition, contractID)
		}

		note := fmt.Sprintf("released from contract %s: %s", contract.ContractNumber, reason)
		if err := s.tracker.release(ctx, tx, contract.WorkerID, note); err != nil {
			return err
		}

		// Zero affected invoices is fine; nothing may have been issued yet.
		if _, err := s.invoices.WithTx(tx).CancelOpenByContract(ctx, contractID); err != nil {
			return err
		}

		contract.Status = model.ContractStatusCancelled
		contract.CancelledBy = &actorID
		contract.CancelledAt = &now
		contract.CancellationReason = reason
		cancelled = contract
		return nil
	})
	if err != nil {
		return nil, wrapPersistence(err)
	}

	s.audit.Log(ctx, "contract.cancel",
		fmt.Sprintf("contract %s cancelled: %s", cancelled.ContractNumber, reason),
		actorID, cancelled.ID, "contract")
	return &OperationResult{Contract: cancelled}, nil
}

// Renew creates a successor contract from the original's terms overlaid
// with the renewal terms, then marks the original RENEWED. The successor
// is durably committed before the original is touched; if creating it
// fails for any reason the original stays exactly as it was.
func (s *ContractService) Renew(ctx context.Context, contractID uint, renewal RenewalTerms, actorID uint) (*OperationResult, error) {
	original, err := s.contracts.GetByID(ctx, contractID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: contract %d", ErrNotFound, contractID)
	}
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if original.Status != model.ContractStatusActive {
		return nil, fmt.Errorf("%w: cannot renew contract in status %s", ErrInvalidTransition, original.Status)
	}
	if renewal.StartDate.IsZero() {
		return nil, newValidationError("renewal start date is required")
	}

	merged := mergeRenewalTerms(original, renewal)
	result, err := s.create(ctx, merged, actorID, validateOptions{renewalOf: &original.ID})
	if err != nil {
		return nil, err
	}
	successor := result.Contract

	rows, err := s.contracts.TransitionStatus(ctx, original.ID,
		model.ContractStatusActive, model.ContractStatusRenewed,
		map[string]any{"renewal_contract_id": successor.ID})
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: contract %d left ACTIVE before renewal completed", ErrInvalidTransition, original.ID)
	}

	s.audit.Log(ctx, "contract.renew",
		fmt.Sprintf("contract %s renewed as %s", original.ContractNumber, successor.ContractNumber),
		actorID, original.ID, "contract")
	return result, nil
}

func mergeRenewalTerms(original *model.Contract, renewal RenewalTerms) ContractTerms {
	terms := ContractTerms{
		ClientID:       original.ClientID,
		WorkerID:       original.WorkerID,
		ContractType:   original.ContractType,
		StartDate:      renewal.StartDate,
		DurationMonths: original.DurationMonths,
		ProbationDays:  original.ProbationDays,
		NoticeDays:     original.NoticeDays,

		BasicSalary:             original.BasicSalary,
		Currency:                original.Currency,
		AccommodationAllowance:  original.AccommodationAllowance,
		FoodAllowance:           original.FoodAllowance,
		TransportationAllowance: original.TransportationAllowance,
		CommunicationAllowance:  original.CommunicationAllowance,
		MedicalInsurance:        original.MedicalInsurance,
		AnnualTicket:            original.AnnualTicket,
		EndOfServiceBenefit:     original.EndOfServiceBenefit,

		JobDescription:    original.JobDescription,
		SpecialConditions: original.SpecialConditions,
		TermsText:         original.ContractTerms,
	}

	if renewal.DurationMonths != nil {
		terms.DurationMonths = *renewal.DurationMonths
	}
	if renewal.ContractType != nil {
		terms.ContractType = *renewal.ContractType
	}
	if renewal.BasicSalary != nil {
		terms.BasicSalary = *renewal.BasicSalary
	}
	if renewal.ProbationDays != nil {
		terms.ProbationDays = *renewal.ProbationDays
	}
	if renewal.NoticeDays != nil {
		terms.NoticeDays = *renewal.NoticeDays
	}
	if renewal.AccommodationAllowance != nil {
		terms.AccommodationAllowance = *renewal.AccommodationAllowance
	}
	if renewal.FoodAllowance != nil {
		terms.FoodAllowance = *renewal.FoodAllowance
	}
	if renewal.TransportationAllowance != nil {
		terms.TransportationAllowance = *renewal.TransportationAllowance
	}
	if renewal.CommunicationAllowance != nil {
		terms.CommunicationAllowance = *renewal.CommunicationAllowance
	}
	if renewal.MedicalInsurance != nil {
		terms.MedicalInsurance = *renewal.MedicalInsurance
	}
	if renewal.AnnualTicket != nil {
		terms.AnnualTicket = *renewal.AnnualTicket
	}
	if renewal.EndOfServiceBenefit != nil {
		terms.EndOfServiceBenefit = *renewal.EndOfServiceBenefit
	}
	return terms
}

// Get loads a contract by id.
func (s *ContractService) Get(ctx context.Context, contractID uint) (*model.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: contract %d", ErrNotFound, contractID)
	}
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return contract, nil
}

// Invoices lists every invoice issued for a contract.
func (s *ContractService) Invoices(ctx context.Context, contractID uint) ([]model.Invoice, error) {
	invoices, err := s.invoices.ListByContract(ctx, contractID)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return invoices, nil
}
