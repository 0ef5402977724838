package domain

// User is the identity returned by the backend on login and registration.
type User struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// IsZero reports whether the user carries no identity.
func (u User) IsZero() bool {
	return u.ID == "" && u.Email == ""
}
