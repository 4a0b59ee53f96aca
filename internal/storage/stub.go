package storage

import "context"

// StubImageStore stores nothing. It returns /customers/<filename>, the path
// convention of the static customer images served by the dashboard.
type StubImageStore struct {
	Prefix string
}

// NewStubImageStore creates a stub store rooted at /customers
func NewStubImageStore() *StubImageStore {
	return &StubImageStore{Prefix: "/customers/"}
}

var _ ImageStore = (*StubImageStore)(nil)

// Upload returns the reference the image would be served under
func (s *StubImageStore) Upload(ctx context.Context, image Image) (string, error) {
	name := cleanFilename(image.Filename)
	if name == "" {
		return "", ErrEmptyImage
	}
	return s.Prefix + name, nil
}
