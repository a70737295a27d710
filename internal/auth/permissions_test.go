package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/auth"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
)

func TestRoleOracle(t *testing.T) {
	oracle := auth.NewRoleOracle()

	admin := model.Principal{UserID: 1, Role: "ADMIN"}
	manager := model.Principal{UserID: 2, Role: "MANAGER"}
	accountant := model.Principal{UserID: 3, Role: "ACCOUNTANT"}
	viewer := model.Principal{UserID: 4, Role: "VIEWER"}

	assert.True(t, oracle.Can(admin, auth.ScreenContracts, auth.ActionCancel))

	assert.True(t, oracle.Can(manager, auth.ScreenContracts, auth.ActionCreate))
	assert.True(t, oracle.Can(manager, auth.ScreenContracts, auth.ActionApprove))
	assert.True(t, oracle.Can(manager, auth.ScreenReports, auth.ActionExport))

	assert.True(t, oracle.Can(accountant, auth.ScreenContracts, auth.ActionApprove))
	assert.False(t, oracle.Can(accountant, auth.ScreenContracts, auth.ActionCreate))

	assert.True(t, oracle.Can(viewer, auth.ScreenContracts, auth.ActionView))
	assert.False(t, oracle.Can(viewer, auth.ScreenContracts, auth.ActionApprove))
	assert.False(t, oracle.Can(viewer, auth.ScreenReports, auth.ActionExport))
}
