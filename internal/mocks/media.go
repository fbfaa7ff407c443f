package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/anonto42/inkwell/backend/internal/media"
)

// MockMediaStore records uploads and deletes instead of talking to a bucket
type MockMediaStore struct {
	mu        sync.Mutex
	Uploaded  []string
	Deleted   []string
	UploadErr error
}

func NewMockMediaStore() *MockMediaStore {
	return &MockMediaStore{}
}

var _ media.Store = (*MockMediaStore)(nil)

func (m *MockMediaStore) Upload(ctx context.Context, image, folder string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	if media.IsRemoteURL(image) {
		return image, nil
	}
	url := fmt.Sprintf("https://cdn.test/%s/%d.png", folder, len(m.Uploaded)+1)
	m.Uploaded = append(m.Uploaded, url)
	return url, nil
}

func (m *MockMediaStore) Delete(ctx context.Context, publicURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, publicURL)
	return nil
}
