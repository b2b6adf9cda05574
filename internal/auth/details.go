package auth

// Details is the authentication view of an account. It holds its own copy of the account so
// later changes to the caller's value do not leak in.
type Details struct {
	account Account
}

// NewDetails wraps account for the authentication step.
func NewDetails(account Account) *Details {
	account.Roles = append([]string(nil), account.Roles...)
	return &Details{account: account}
}

func (d *Details) Username() string     { return d.account.Identifier }
func (d *Details) PasswordHash() string { return d.account.PasswordHash }

// Authorities is derived from the roles on every call.
func (d *Details) Authorities() []string {
	return DeriveAuthorities(d.account.Roles)
}

// The status predicates do not consult Account.Status; DORMANT and WITHDRAWN accounts are not
// blocked at this layer.
func (d *Details) AccountNonExpired() bool     { return true }
func (d *Details) AccountNonLocked() bool      { return true }
func (d *Details) CredentialsNonExpired() bool { return true }
func (d *Details) Enabled() bool               { return true }

// Account returns a copy of the wrapped account.
func (d *Details) Account() Account {
	a := d.account
	a.Roles = append([]string(nil), d.account.Roles...)
	return a
}
