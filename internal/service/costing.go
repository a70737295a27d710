package service

import (
	"time"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/settings"
)

// ContractTerms is the caller-supplied part of a contract: parties,
// schedule, compensation. Everything financial beyond this is computed.
type ContractTerms struct {
	ClientID       uint
	WorkerID       uint
	ContractType   model.ContractType
	StartDate      time.Time
	DurationMonths int
	ProbationDays  int
	NoticeDays     int

	BasicSalary             float64
	Currency                string
	AccommodationAllowance  float64
	FoodAllowance           float64
	TransportationAllowance float64
	CommunicationAllowance  float64
	MedicalInsurance        bool
	AnnualTicket            bool
	EndOfServiceBenefit     bool

	JobDescription    string
	SpecialConditions string
	TermsText         string
}

type CostBreakdown struct {
	MonthlyClientFee  float64
	AnnualContractFee float64
	InsuranceDeposit  float64
	GovernmentFees    float64
	AgencyFees        float64
	Subtotal          float64
	VATAmount         float64
	Total             float64
}

// CalculateCost turns contract terms into the client-facing financial
// breakdown. Pure: same terms and same snapshot always produce the same
// figures, which is what invoice reconciliation relies on.
//
// The communication allowance is excluded from the recurring client fee
// unless the FEE_INCLUDE_COMMUNICATION setting turns it on; the other
// three allowances are always summed. Product has not yet confirmed
// whether that asymmetry is intended.
func CalculateCost(terms ContractTerms, snap settings.Snapshot) CostBreakdown {
	monthly := terms.BasicSalary +
		terms.AccommodationAllowance +
		terms.FoodAllowance +
		terms.TransportationAllowance
	if snap.IncludeCommunication {
		monthly += terms.CommunicationAllowance
	}

	annual := snap.BasicContractFee + snap.InsuranceDeposit + snap.GovernmentFees + snap.AgencyFees
	if terms.MedicalInsurance {
		annual += snap.MedicalInsuranceCost
	}
	if terms.AnnualTicket {
		annual += snap.AnnualTicketCost
	}

	subtotal := monthly*float64(terms.DurationMonths) + annual
	vat := subtotal * snap.VATRate

	return CostBreakdown{
		MonthlyClientFee:  monthly,
		AnnualContractFee: annual,
		InsuranceDeposit:  snap.InsuranceDeposit,
		GovernmentFees:    snap.GovernmentFees,
		AgencyFees:        snap.AgencyFees,
		Subtotal:          subtotal,
		VATAmount:         vat,
		Total:             subtotal + vat,
	}
}

// EndDate applies the contract duration as calendar months, not a fixed
// day count.
func (t ContractTerms) EndDate() time.Time {
	return t.StartDate.AddDate(0, t.DurationMonths, 0)
}
