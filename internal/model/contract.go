package model

import "time"

type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "DRAFT"
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusExpired   ContractStatus = "EXPIRED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
	ContractStatusRenewed   ContractStatus = "RENEWED"
)

// Terminal reports whether no transition may leave this status.
func (s ContractStatus) Terminal() bool {
	switch s {
	case ContractStatusExpired, ContractStatusCancelled, ContractStatusRenewed:
		return true
	}
	return false
}

type ContractType string

const (
	ContractTypeFullTime  ContractType = "FULL_TIME"
	ContractTypePartTime  ContractType = "PART_TIME"
	ContractTypeTemporary ContractType = "TEMPORARY"
	ContractTypeSeasonal  ContractType = "SEASONAL"
)

func (t ContractType) Valid() bool {
	switch t {
	case ContractTypeFullTime, ContractTypePartTime, ContractTypeTemporary, ContractTypeSeasonal:
		return true
	}
	return false
}

type Contract struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ContractNumber string         `gorm:"column:contract_number;uniqueIndex" json:"contract_number"`
	ClientID       uint           `gorm:"column:client_id;index;not null" json:"client_id"`
	WorkerID       uint           `gorm:"column:worker_id;index;not null" json:"worker_id"`
	ContractType   ContractType   `gorm:"column:contract_type" json:"contract_type"`
	Status         ContractStatus `gorm:"column:status;index;default:'DRAFT'" json:"status"`

	StartDate      time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate        time.Time `gorm:"column:end_date" json:"end_date"`
	DurationMonths int       `gorm:"column:duration_months" json:"duration_months"`
	ProbationDays  int       `gorm:"column:probation_days" json:"probation_days"`
	NoticeDays     int       `gorm:"column:notice_days" json:"notice_days"`

	BasicSalary             float64 `gorm:"column:basic_salary" json:"basic_salary"`
	Currency                string  `gorm:"column:currency;default:'AED'" json:"currency"`
	AccommodationAllowance  float64 `gorm:"column:accommodation_allowance" json:"accommodation_allowance"`
	FoodAllowance           float64 `gorm:"column:food_allowance" json:"food_allowance"`
	TransportationAllowance float64 `gorm:"column:transportation_allowance" json:"transportation_allowance"`
	CommunicationAllowance  float64 `gorm:"column:communication_allowance" json:"communication_allowance"`
	MedicalInsurance        bool    `gorm:"column:medical_insurance" json:"medical_insurance"`
	AnnualTicket            bool    `gorm:"column:annual_ticket" json:"annual_ticket"`
	EndOfServiceBenefit     bool    `gorm:"column:end_of_service_benefit" json:"end_of_service_benefit"`

	MonthlyClientFee   float64 `gorm:"column:monthly_client_fee" json:"monthly_client_fee"`
	AnnualContractFee  float64 `gorm:"column:annual_contract_fee" json:"annual_contract_fee"`
	InsuranceDeposit   float64 `gorm:"column:insurance_deposit" json:"insurance_deposit"`
	GovernmentFees     float64 `gorm:"column:government_fees" json:"government_fees"`
	AgencyFees         float64 `gorm:"column:agency_fees" json:"agency_fees"`
	VATAmount          float64 `gorm:"column:vat_amount" json:"vat_amount"`
	TotalContractValue float64 `gorm:"column:total_contract_value" json:"total_contract_value"`

	JobDescription    string `gorm:"column:job_description" json:"job_description"`
	SpecialConditions string `gorm:"column:special_conditions" json:"special_conditions"`
	ContractTerms     string `gorm:"column:contract_terms" json:"contract_terms"`

	ApprovedBy         *uint      `gorm:"column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt         *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CancelledBy        *uint      `gorm:"column:cancelled_by" json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"column:cancellation_reason" json:"cancellation_reason,omitempty"`
	RenewalContractID  *uint      `gorm:"column:renewal_contract_id" json:"renewal_contract_id,omitempty"`

	CreatedBy uint      `gorm:"column:created_by" json:"created_by"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Contract) TableName() string { return "contracts" }
