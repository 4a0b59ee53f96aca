package models

// User is a dashboard operator allowed to sign in.
// PasswordHash is a bcrypt hash and never leaves the service.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
