// Package media stores post images in a CDN-backed bucket.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ArticlesFolder is where post cover images are uploaded
const ArticlesFolder = "blog/articles"

// MaxImageBytes caps the decoded size of an uploaded image
const MaxImageBytes = 10 << 20

var ErrInvalidImage = errors.New("invalid image")

// Store uploads and deletes images, returning public URLs
type Store interface {
	// Upload stores a data URI under folder and returns its public URL.
	// An http(s) URL is returned unchanged.
	Upload(ctx context.Context, image, folder string) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// IsRemoteURL reports whether s already points at a hosted image
func IsRemoteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DecodeDataURI decodes a base64 data URI and sniffs its content type.
// Only images are accepted.
func DecodeDataURI(dataURI string) ([]byte, *mimetype.MIME, error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return nil, nil, fmt.Errorf("%w: expected a data URI", ErrInvalidImage)
	}
	comma := strings.IndexByte(dataURI, ',')
	if comma < 0 || !strings.HasSuffix(dataURI[:comma], ";base64") {
		return nil, nil, fmt.Errorf("%w: data URI must be base64 encoded", ErrInvalidImage)
	}

	payload := dataURI[comma+1:]
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return nil, nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, nil, fmt.Errorf("%w: unsupported content type %s", ErrInvalidImage, mtype.String())
	}
	return data, mtype, nil
}
