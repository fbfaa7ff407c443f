package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const publicHost = "https://storage.googleapis.com"

// FirebaseStore keeps images in a Firebase Storage bucket
type FirebaseStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewFirebaseStore(bucket *gcs.BucketHandle, bucketName string) *FirebaseStore {
	return &FirebaseStore{bucket: bucket, bucketName: bucketName}
}

func (s *FirebaseStore) Upload(ctx context.Context, image, folder string) (string, error) {
	if IsRemoteURL(image) {
		return image, nil
	}
	data, mtype, err := DecodeDataURI(image)
	if err != nil {
		return "", err
	}

	name := path.Join(folder, uuid.NewString()+mtype.Extension())
	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = mtype.String()
	w.CacheControl = "public, max-age=31536000"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	return PublicURL(s.bucketName, name), nil
}

// Delete removes an object previously returned by Upload. URLs outside the bucket are ignored.
func (s *FirebaseStore) Delete(ctx context.Context, publicURL string) error {
	name, ok := ObjectNameFromURL(s.bucketName, publicURL)
	if !ok {
		return nil
	}
	err := s.bucket.Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	return nil
}

func PublicURL(bucketName, object string) string {
	return publicHost + "/" + bucketName + "/" + object
}

// ObjectNameFromURL extracts the object name from a public URL of bucketName
func ObjectNameFromURL(bucketName, publicURL string) (string, bool) {
	prefix := publicHost + "/" + bucketName + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	name, err := url.PathUnescape(strings.TrimPrefix(publicURL, prefix))
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}
