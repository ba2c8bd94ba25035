package provider

import (
	"context"
	"io"

	"github.com/ruimsramos/filehaven/entity"
)

// The async variants are thin goroutine façades over the synchronous
// gateway calls, for callers that must not block a request-handling
// goroutine for the length of a transfer. The logic lives only in the
// synchronous methods.

type UploadResult struct {
	Object entity.StoredObject
	Err    error
}

type DownloadResult struct {
	Data []byte
	Err  error
}

func (s *StorageService) UploadObjectAsync(ctx context.Context, accountID int64, objectKey string, data io.Reader, size int64, contentType string) <-chan UploadResult {
	result := make(chan UploadResult, 1)
	go func() {
		defer close(result)
		object, err := s.UploadObject(ctx, accountID, objectKey, data, size, contentType)
		result <- UploadResult{Object: object, Err: err}
	}()
	return result
}

func (s *StorageService) DownloadObjectAsync(ctx context.Context, accountID int64, objectKey string) <-chan DownloadResult {
	result := make(chan DownloadResult, 1)
	go func() {
		defer close(result)
		data, err := s.DownloadObject(ctx, accountID, objectKey)
		result <- DownloadResult{Data: data, Err: err}
	}()
	return result
}

func (s *StorageService) DeprovisionAccountBucketAsync(ctx context.Context, accountID int64) <-chan error {
	result := make(chan error, 1)
	go func() {
		defer close(result)
		result <- s.DeprovisionAccountBucket(ctx, accountID)
	}()
	return result
}
