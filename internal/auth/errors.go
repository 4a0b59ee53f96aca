package auth

import "fmt"

// ErrorType classifies a sign-in failure
type ErrorType string

const (
	// CredentialsSignin means the email/password pair was rejected
	CredentialsSignin ErrorType = "CredentialsSignin"
	// CallbackRouteError means the credentials check itself failed
	CallbackRouteError ErrorType = "CallbackRouteError"
)

// AuthError is a recognized sign-in failure
type AuthError struct {
	Type ErrorType
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Type, e.Err)
	}
	return string(e.Type)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func credentialsSignin() error {
	return &AuthError{Type: CredentialsSignin}
}
