package domain

// Credentials authenticate the upstream query provider.
type Credentials struct {
	// Email is the account login.
	Email string
	// Password is the account password. Never logged.
	Password string
}

// IsZero reports whether no credentials are configured.
func (c Credentials) IsZero() bool {
	return c.Email == "" && c.Password == ""
}

// String hides the password.
func (c Credentials) String() string {
	if c.Email == "" {
		return "<none>"
	}
	return c.Email + ":***"
}
