package auth

import "github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"

// Screens and actions the contracts service gates on.
const (
	ScreenContracts = "contracts"
	ScreenReports   = "reports"

	ActionView    = "view"
	ActionCreate  = "create"
	ActionApprove = "approve"
	ActionCancel  = "cancel"
	ActionRenew   = "renew"
	ActionExport  = "export"
)

// Oracle answers yes/no entitlement questions at the API boundary. The
// state machine itself never consults it; it only receives the already
// authorized actor's identity.
type Oracle interface {
	Can(principal model.Principal, screen, action string) bool
}

// RoleOracle is the built-in role matrix. A central permission service
// can replace it without touching the handlers.
type RoleOracle struct{}

func NewRoleOracle() *RoleOracle {
	return &RoleOracle{}
}

func (o *RoleOracle) Can(principal model.Principal, screen, action string) bool {
	if principal.IsAdmin() {
		return true
	}
	switch screen {
	case ScreenContracts:
		switch action {
		case ActionView:
			return true
		case ActionCreate, ActionCancel, ActionRenew:
			return principal.IsManager()
		case ActionApprove:
			return principal.IsManager() || principal.IsAccountant()
		}
	case ScreenReports:
		switch action {
		case ActionView:
			return true
		case ActionExport:
			return principal.IsManager() || principal.IsAccountant()
		}
	}
	return false
}
