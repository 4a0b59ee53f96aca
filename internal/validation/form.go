// Package validation coerces raw dashboard form submissions into typed
// inputs and reports failures per field.
package validation

import (
	"mime"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File is an uploaded file part
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether the part carries no file. Browsers submit an unnamed,
// zero-length part when a file input is left blank.
func (f *File) Empty() bool {
	return f == nil || (f.Filename == "" && len(f.Data) == 0)
}

// MediaType returns the declared media type without parameters, falling back
// to sniffing the content when the client did not declare a useful one.
func (f *File) MediaType() string {
	if f == nil {
		return ""
	}

	declared := strings.TrimSpace(f.ContentType)
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			declared = mt
		}
	}

	if declared == "" || declared == "application/octet-stream" {
		return mimetype.Detect(f.Data).String()
	}
	return strings.ToLower(declared)
}

// Form is a raw submission: text values plus file parts keyed by field name
type Form struct {
	Values url.Values
	Files  map[string]*File
}

// NewForm creates a form from text values
func NewForm(values url.Values) Form {
	if values == nil {
		values = url.Values{}
	}
	return Form{Values: values, Files: map[string]*File{}}
}

// Value returns the first value for the field, or "" when absent
func (f Form) Value(name string) string {
	return f.Values.Get(name)
}

// File returns the file part for the field, or nil
func (f Form) File(name string) *File {
	if f.Files == nil {
		return nil
	}
	return f.Files[name]
}

// WithFile returns the form with a file part attached
func (f Form) WithFile(name string, file *File) Form {
	if f.Files == nil {
		f.Files = map[string]*File{}
	}
	f.Files[name] = file
	return f
}
