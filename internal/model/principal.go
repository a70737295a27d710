package model

// Principal is the authenticated caller extracted from the access
// token. Operations take its UserID explicitly for audit stamping.
type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) IsAdmin() bool      { return p.Role == "ADMIN" }
func (p Principal) IsManager() bool    { return p.Role == "MANAGER" }
func (p Principal) IsAccountant() bool { return p.Role == "ACCOUNTANT" }
