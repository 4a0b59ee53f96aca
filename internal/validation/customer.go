package validation

// Customer form messages
const (
	MsgRequired      = "Required"
	MsgInvalidEmail  = "Invalid email"
	MsgImageFileType = "File must be a PNG or JPG image."
)

// CustomerInput is a validated customer submission. Image is nil when absent.
type CustomerInput struct {
	Name  string
	Email string
	Image *File
}

type customerFields struct {
	Name      string `form:"name" validate:"required"`
	Email     string `form:"email" validate:"required,email"`
	ImageType string `form:"image_url" validate:"omitempty,oneof=image/png image/jpeg"`
}

var customerMessages = messages{
	"name":      {"*": MsgRequired},
	"email":     {"*": MsgInvalidEmail},
	"image_url": {"*": MsgImageFileType},
}

// ParseCustomer validates a customer form, including the optional image part
func ParseCustomer(form Form) (CustomerInput, FieldErrors) {
	image := form.File("image_url")
	if image.Empty() {
		image = nil
	}

	fields := customerFields{
		Name:  form.Value("name"),
		Email: form.Value("email"),
	}
	if image != nil {
		fields.ImageType = image.MediaType()
	}

	errs := FieldErrors{}
	check(fields, customerMessages, errs)
	if len(errs) > 0 {
		return CustomerInput{}, errs
	}

	return CustomerInput{
		Name:  fields.Name,
		Email: fields.Email,
		Image: image,
	}, nil
}
