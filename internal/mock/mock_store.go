// Package mock provides testify/mock doubles for meshnum's storage and
// run-history collaborators, grounded on the teacher's internal/mock
// package.
package mock

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of store.Store.
type MockStore struct {
	mock.Mock
}

// Upload mocks Upload.
func (m *MockStore) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

// UploadFile mocks UploadFile.
func (m *MockStore) UploadFile(ctx context.Context, key string, localPath string) error {
	args := m.Called(ctx, key, localPath)
	return args.Error(0)
}

// Download mocks Download.
func (m *MockStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// DownloadFile mocks DownloadFile.
func (m *MockStore) DownloadFile(ctx context.Context, key string, localPath string) error {
	args := m.Called(ctx, key, localPath)
	return args.Error(0)
}

// Delete mocks Delete.
func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Exists mocks Exists.
func (m *MockStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// GetURL mocks GetURL.
func (m *MockStore) GetURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// ExpectUpload sets up an expectation for Upload.
func (m *MockStore) ExpectUpload(key string, err error) *mock.Call {
	return m.On("Upload", mock.Anything, key, mock.Anything).Return(err)
}

// ExpectDownload sets up an expectation for Download.
func (m *MockStore) ExpectDownload(key string, reader io.ReadCloser, err error) *mock.Call {
	return m.On("Download", mock.Anything, key).Return(reader, err)
}

// ExpectDelete sets up an expectation for Delete.
func (m *MockStore) ExpectDelete(key string, err error) *mock.Call {
	return m.On("Delete", mock.Anything, key).Return(err)
}

// ExpectExists sets up an expectation for Exists.
func (m *MockStore) ExpectExists(key string, exists bool, err error) *mock.Call {
	return m.On("Exists", mock.Anything, key).Return(exists, err)
}

// ExpectGetURL sets up an expectation for GetURL.
func (m *MockStore) ExpectGetURL(key, url string) *mock.Call {
	return m.On("GetURL", key).Return(url)
}
