package validation

// Credentials is a validated sign-in submission
type Credentials struct {
	Email    string
	Password string
}

type credentialFields struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

var credentialMessages = messages{
	"email":    {"*": MsgInvalidEmail},
	"password": {"required": MsgRequired, "min": "Password must contain at least 6 characters"},
}

// ParseCredentials validates the sign-in form
func ParseCredentials(form Form) (Credentials, FieldErrors) {
	fields := credentialFields{
		Email:    form.Value("email"),
		Password: form.Value("password"),
	}

	errs := FieldErrors{}
	check(fields, credentialMessages, errs)

	return Credentials{Email: fields.Email, Password: fields.Password}, errs.orNil()
}
