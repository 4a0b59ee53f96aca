// Package storage uploads customer profile images and hands back the
// reference persisted in customers.image_url.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrEmptyImage is returned when an upload carries no filename
var ErrEmptyImage = errors.New("image filename is required")

// Image is an image ready for upload
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageStore uploads images and returns their reference
type ImageStore interface {
	Upload(ctx context.Context, image Image) (string, error)
}

// cleanFilename keeps only the base name so client paths cannot escape the prefix
func cleanFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(strings.TrimSpace(name))
	if base == "." || base == "/" {
		return ""
	}
	return base
}
