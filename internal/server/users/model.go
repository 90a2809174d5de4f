package users

// Role names known to the service. Every registered user gets RoleGuest;
// the other roles are granted explicitly.
const (
	RoleAdmin   = "ADMIN"
	RolePremium = "PREMIUM_USER"
	RoleGuest   = "GUEST"
)

// SeedRoles are created at startup when missing.
var SeedRoles = []string{RoleAdmin, RolePremium, RoleGuest}

// User is a stored credential record. Login and email are unique across all
// users; uniqueness is enforced by the repository. PasswordHash is the
// one-way hash of the password, never the plaintext.
type User struct {
	ID           string
	Login        string
	Email        string
	PasswordHash string
	Roles        []string
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}
