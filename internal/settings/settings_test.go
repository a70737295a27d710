package settings_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/settings"
)

func TestSnapshotDefaults(t *testing.T) {
	snap := settings.TakeSnapshot(settings.Static{})

	assert.Equal(t, 1000.0, snap.MinSalary)
	assert.Equal(t, 10000.0, snap.MaxSalary)
	assert.Equal(t, 3000.0, snap.BasicContractFee)
	assert.Equal(t, 2000.0, snap.InsuranceDeposit)
	assert.Equal(t, 500.0, snap.GovernmentFees)
	assert.Equal(t, 1000.0, snap.AgencyFees)
	assert.Equal(t, 1000.0, snap.MedicalInsuranceCost)
	assert.Equal(t, 1500.0, snap.AnnualTicketCost)
	assert.Equal(t, 0.05, snap.VATRate)
	assert.False(t, snap.IncludeCommunication)
}

func TestSnapshotOverrides(t *testing.T) {
	snap := settings.TakeSnapshot(settings.Static{
		settings.KeyVATRate:              0.1,
		settings.KeyAgencyFees:           1500,
		settings.KeyIncludeCommunication: true,
	})

	assert.Equal(t, 0.1, snap.VATRate)
	assert.Equal(t, 1500.0, snap.AgencyFees)
	assert.True(t, snap.IncludeCommunication)
}

func TestViperProvider(t *testing.T) {
	v := viper.New()
	v.Set(settings.KeyVATRate, 0.08)
	v.Set(settings.KeyIncludeCommunication, true)

	provider := settings.NewViperProvider(v)

	assert.Equal(t, 0.08, provider.Float(settings.KeyVATRate, 0.05))
	assert.Equal(t, 500.0, provider.Float(settings.KeyGovernmentFees, 500))
	assert.True(t, provider.Bool(settings.KeyIncludeCommunication, false))
	assert.Equal(t, 7, provider.Int("MISSING_KEY", 7))
}
