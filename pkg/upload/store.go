// Package upload receives recorded meeting chunks and stores them in blob
// storage. It is a stateless pass-through with no dependency on room state.
package upload

import (
	"context"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/pkg/errors"
)

// BlobStore writes uploaded chunks to durable storage.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
}

// AzureStore stores chunks in an Azure Blob Storage container.
type AzureStore struct {
	client    *azblob.Client
	container string
}

// NewAzureStore connects to Azure Blob Storage with a connection string.
func NewAzureStore(connectionString, container string) (*AzureStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to blob storage")
	}
	return &AzureStore{client: client, container: container}, nil
}

func (s *AzureStore) Put(ctx context.Context, name, contentType string, data []byte) error {
	_, err := s.client.UploadBuffer(ctx, s.container, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	return errors.Wrapf(err, "uploading %s", name)
}

// MemoryStore keeps chunks in memory. Used when no storage connection is
// configured, and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, name, _ string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.blobs[name] = buf
	return nil
}

// Get returns a stored blob by name.
func (s *MemoryStore) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[name]
	return data, ok
}
