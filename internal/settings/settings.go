package settings

import "github.com/spf13/viper"

// Provider supplies named configuration values with a caller-provided
// default. Business code never hardcodes fee constants; it asks the
// provider and falls back to the documented default.
type Provider interface {
	Float(key string, def float64) float64
	Int(key string, def int) int
	Bool(key string, def bool) bool
}

// Setting keys understood by the contract subsystem.
const (
	KeyMinSalary            = "FEE_MIN_SALARY"
	KeyMaxSalary            = "FEE_MAX_SALARY"
	KeyBasicContractFee     = "FEE_BASIC_CONTRACT"
	KeyInsuranceDeposit     = "FEE_INSURANCE_DEPOSIT"
	KeyGovernmentFees       = "FEE_GOVERNMENT"
	KeyAgencyFees           = "FEE_AGENCY"
	KeyMedicalInsuranceCost = "FEE_MEDICAL_INSURANCE"
	KeyAnnualTicketCost     = "FEE_ANNUAL_TICKET"
	KeyVATRate              = "FEE_VAT_RATE"
	KeyIncludeCommunication = "FEE_INCLUDE_COMMUNICATION"
)

// Defaults applied when a key is absent from the provider.
const (
	DefaultMinSalary            = 1000.0
	DefaultMaxSalary            = 10000.0
	DefaultBasicContractFee     = 3000.0
	DefaultInsuranceDeposit     = 2000.0
	DefaultGovernmentFees       = 500.0
	DefaultAgencyFees           = 1000.0
	DefaultMedicalInsuranceCost = 1000.0
	DefaultAnnualTicketCost     = 1500.0
	DefaultVATRate              = 0.05
)

type ViperProvider struct {
	v *viper.Viper
}

func NewViperProvider(v *viper.Viper) *ViperProvider {
	return &ViperProvider{v: v}
}

func (p *ViperProvider) Float(key string, def float64) float64 {
	if !p.v.IsSet(key) {
		return def
	}
	return p.v.GetFloat64(key)
}

func (p *ViperProvider) Int(key string, def int) int {
	if !p.v.IsSet(key) {
		return def
	}
	return p.v.GetInt(key)
}

func (p *ViperProvider) Bool(key string, def bool) bool {
	if !p.v.IsSet(key) {
		return def
	}
	return p.v.GetBool(key)
}

// Static is a fixed map of settings, used in tests and for snapshotting.
type Static map[string]any

func (s Static) Float(key string, def float64) float64 {
	if value, ok := s[key]; ok {
		switch v := value.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return def
}

func (s Static) Int(key string, def int) int {
	if value, ok := s[key]; ok {
		if v, ok := value.(int); ok {
			return v
		}
	}
	return def
}

func (s Static) Bool(key string, def bool) bool {
	if value, ok := s[key]; ok {
		if v, ok := value.(bool); ok {
			return v
		}
	}
	return def
}

// Snapshot freezes every fee constant the cost calculator reads, so one
// costing run sees a single consistent view of the provider.
type Snapshot struct {
	MinSalary            float64
	MaxSalary            float64
	BasicContractFee     float64
	InsuranceDeposit     float64
	GovernmentFees       float64
	AgencyFees           float64
	MedicalInsuranceCost float64
	AnnualTicketCost     float64
	VATRate              float64
	IncludeCommunication bool
}

func TakeSnapshot(p Provider) Snapshot {
	return Snapshot{
		MinSalary:            p.Float(KeyMinSalary, DefaultMinSalary),
		MaxSalary:            p.Float(KeyMaxSalary, DefaultMaxSalary),
		BasicContractFee:     p.Float(KeyBasicContractFee, DefaultBasicContractFee),
		InsuranceDeposit:     p.Float(KeyInsuranceDeposit, DefaultInsuranceDeposit),
		GovernmentFees:       p.Float(KeyGovernmentFees, DefaultGovernmentFees),
		AgencyFees:           p.Float(KeyAgencyFees, DefaultAgencyFees),
		MedicalInsuranceCost: p.Float(KeyMedicalInsuranceCost, DefaultMedicalInsuranceCost),
		AnnualTicketCost:     p.Float(KeyAnnualTicketCost, DefaultAnnualTicketCost),
		VATRate:              p.Float(KeyVATRate, DefaultVATRate),
		IncludeCommunication: p.Bool(KeyIncludeCommunication, false),
	}
}
