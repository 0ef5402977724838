package domain

// Session is the authenticated identity with its bearer token. Both fields
// are either set together or empty together.
type Session struct {
	User  User
	Token string
}

// AuthResponse is the backend answer to login and registration.
type AuthResponse struct {
	Token string
	User  User
}

// Credentials holds the login form.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Registration holds the registration form.
type Registration struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}
