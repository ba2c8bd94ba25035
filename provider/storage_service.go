package provider

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/ruimsramos/filehaven/config"
	"github.com/ruimsramos/filehaven/entity"
	"github.com/ruimsramos/filehaven/infra"
	"github.com/ruimsramos/filehaven/repository"
)

// ObjectBackend is the slice of the object-store client the gateway needs.
// *infra.MinioClient satisfies it.
type ObjectBackend interface {
	EnsureBucket(ctx context.Context, bucketName string) error
	SetBucketQuota(ctx context.Context, bucketName string, sizeBytes uint64) error
	DeleteBucketWithObjects(ctx context.Context, bucketName string) error
	ListObjects(ctx context.Context, bucketName, prefix, delimiter string) ([]entity.StoredObject, error)
	PutObject(ctx context.Context, bucketName, objectKey string, data io.Reader, size int64, contentType string) (entity.StoredObject, error)
	PutFolderPlaceholder(ctx context.Context, bucketName, folderKey string) (entity.StoredObject, error)
	GetObjectStream(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, entity.StoredObject, error)
	GetObjectBytes(ctx context.Context, bucketName, objectKey string) ([]byte, error)
	RemoveObject(ctx context.Context, bucketName, objectKey string) error
	CopyObject(ctx context.Context, bucketName, srcKey, dstKey string) error
	StatObject(ctx context.Context, bucketName, objectKey string) (entity.StoredObject, bool, error)
	PresignedPutURL(ctx context.Context, bucketName, objectKey, contentType string, expiry time.Duration) (*url.URL, error)
	PresignedGetURL(ctx context.Context, bucketName, objectKey string, expiry time.Duration) (*url.URL, error)
	NewMultipartUpload(ctx context.Context, bucketName, objectKey, contentType string) (string, error)
	PutObjectPart(ctx context.Context, bucketName, objectKey, uploadID string, partNumber int, data io.Reader, size int64) (entity.ObjectPart, error)
	ListObjectParts(ctx context.Context, bucketName, objectKey, uploadID string) ([]entity.ObjectPart, error)
	CompleteMultipartUpload(ctx context.Context, bucketName, objectKey, uploadID string, parts []entity.ObjectPart) error
	AbortMultipartUpload(ctx context.Context, bucketName, objectKey, uploadID string) error
}

// StorageService is the per-account gateway onto the object store. Every
// operation works against the bucket derived from the account id and the
// configured suffix.
type StorageService struct {
	backend      ObjectBackend
	repo         *repository.Repository
	logger       *infra.LoggerClient
	bucketSuffix string
	presign      time.Duration
	quotaBytes   uint64
}

func NewStorageService(backend ObjectBackend, repo *repository.Repository, logger *infra.LoggerClient, cfg *config.EnvConfig) *StorageService {
	return &StorageService{
		backend:      backend,
		repo:         repo,
		logger:       logger,
		bucketSuffix: cfg.Storage.BucketSuffix,
		presign:      time.Duration(cfg.Storage.PresignExpiryMinute) * time.Minute,
		quotaBytes:   cfg.Storage.QuotaBytes,
	}
}

// BucketName derives the account's bucket from its id and the configured
// suffix.
func (s *StorageService) BucketName(accountID int64) string {
	return fmt.Sprintf("%d%s", accountID, s.bucketSuffix)
}

// ProvisionAccountBucket creates the account's bucket and applies the
// configured quota, if any.
func (s *StorageService) ProvisionAccountBucket(ctx context.Context, accountID int64) error {
	bucket := s.BucketName(accountID)
	s.logger.InfoWithContextf(ctx, "[Storage] Provisioning bucket %s", bucket)

	if err := s.backend.EnsureBucket(ctx, bucket); err != nil {
		return ErrBackend.Wrap(err)
	}
	if s.quotaBytes > 0 {
		if err := s.backend.SetBucketQuota(ctx, bucket, s.quotaBytes); err != nil {
			return ErrBackend.Wrap(err)
		}
	}
	return nil
}

// DeprovisionAccountBucket drains and removes the account's bucket. The
// drain deletes key by key and an already-deleted key is a no-op, so the
// whole operation is safe to retry after a mid-drain failure.
func (s *StorageService) DeprovisionAccountBucket(ctx context.Context, accountID int64) error {
	bucket := s.BucketName(accountID)
	s.logger.InfoWithContextf(ctx, "[Storage] Deprovisioning bucket %s", bucket)

	if err := s.backend.DeleteBucketWithObjects(ctx, bucket); err != nil {
		return ErrBackend.Wrap(err)
	}
	return nil
}

// ListObjects lists the account's objects. An empty delimiter gives a flat
// recursive listing; "/" collapses folders.
func (s *StorageService) ListObjects(ctx context.Context, accountID int64, prefix, delimiter string) ([]entity.StoredObject, error) {
	objects, err := s.backend.ListObjects(ctx, s.BucketName(accountID), prefix, delimiter)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	return objects, nil
}

// UploadObject stores an object in a single shot.
func (s *StorageService) UploadObject(ctx context.Context, accountID int64, objectKey string, data io.Reader, size int64, contentType string) (entity.StoredObject, error) {
	if objectKey == "" {
		return entity.StoredObject{}, ErrInvalidArgument.New("object key cannot be empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	object, err := s.backend.PutObject(ctx, s.BucketName(accountID), objectKey, data, size, contentType)
	if err != nil {
		return entity.StoredObject{}, ErrBackend.Wrap(err)
	}
	s.logger.InfoWithContextf(ctx, "[Storage] Uploaded object %q (%d bytes) for account %d", objectKey, size, accountID)
	return object, nil
}

// CreateFolder synthesizes a zero-byte placeholder whose key ends in the
// path separator and whose content type marks it as a directory.
func (s *StorageService) CreateFolder(ctx context.Context, accountID int64, folderName string) (entity.StoredObject, error) {
	if folderName == "" {
		return entity.StoredObject{}, ErrInvalidArgument.New("folder name cannot be empty")
	}
	if !strings.HasSuffix(folderName, "/") {
		folderName += "/"
	}

	object, err := s.backend.PutFolderPlaceholder(ctx, s.BucketName(accountID), folderName)
	if err != nil {
		return entity.StoredObject{}, ErrBackend.Wrap(err)
	}
	return object, nil
}

// DownloadObject buffers the whole object. Use DownloadObjectStream for
// large payloads.
func (s *StorageService) DownloadObject(ctx context.Context, accountID int64, objectKey string) ([]byte, error) {
	if objectKey == "" {
		return nil, ErrInvalidArgument.New("object key cannot be empty")
	}
	data, err := s.backend.GetObjectBytes(ctx, s.BucketName(accountID), objectKey)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	return data, nil
}

// DownloadObjectStream hands back the backend response stream so the
// caller can copy it through without buffering. The caller owns the
// reader.
func (s *StorageService) DownloadObjectStream(ctx context.Context, accountID int64, objectKey string) (io.ReadCloser, entity.StoredObject, error) {
	if objectKey == "" {
		return nil, entity.StoredObject{}, ErrInvalidArgument.New("object key cannot be empty")
	}
	reader, object, err := s.backend.GetObjectStream(ctx, s.BucketName(accountID), objectKey)
	if err != nil {
		return nil, entity.StoredObject{}, ErrBackend.Wrap(err)
	}
	return reader, object, nil
}

// DeleteObject removes a single object; deleting an absent key succeeds.
func (s *StorageService) DeleteObject(ctx context.Context, accountID int64, objectKey string) error {
	if objectKey == "" {
		return ErrInvalidArgument.New("object key cannot be empty")
	}
	if err := s.backend.RemoveObject(ctx, s.BucketName(accountID), objectKey); err != nil {
		return ErrBackend.Wrap(err)
	}
	return nil
}

// DoesObjectExist maps the backend's missing-key signal to false; any
// other fault surfaces as an error.
func (s *StorageService) DoesObjectExist(ctx context.Context, accountID int64, objectKey string) (bool, error) {
	if objectKey == "" {
		return false, ErrInvalidArgument.New("object key cannot be empty")
	}
	_, found, err := s.backend.StatObject(ctx, s.BucketName(accountID), objectKey)
	if err != nil {
		return false, ErrBackend.Wrap(err)
	}
	return found, nil
}

// RenameObject performs a copy-then-delete rename. Renaming a folder
// placeholder renames every object under the old prefix. Grants held by
// the account against the old key are rewritten afterwards so shared
// access keeps resolving.
func (s *StorageService) RenameObject(ctx context.Context, accountID int64, oldKey, newKey string) error {
	if oldKey == "" || newKey == "" {
		return ErrInvalidArgument.New("object keys cannot be empty")
	}
	if oldKey == newKey {
		return ErrInvalidArgument.New("old and new object keys are identical")
	}

	bucket := s.BucketName(accountID)

	source, found, err := s.backend.StatObject(ctx, bucket, oldKey)
	if err != nil {
		return ErrBackend.Wrap(err)
	}
	if !found {
		return ErrNotFound.New("object %q not found", oldKey)
	}

	isFolder := source.ContentType == entity.FolderContentType || strings.HasSuffix(oldKey, "/")
	if isFolder {
		s.logger.InfoWithContextf(ctx, "[Storage] Renaming folder %q to %q in bucket %s", oldKey, newKey, bucket)
		children, err := s.backend.ListObjects(ctx, bucket, oldKey, "")
		if err != nil {
			return ErrBackend.Wrap(err)
		}
		for _, child := range children {
			renamed := strings.Replace(child.Key, oldKey, newKey, 1)
			if err := s.copyThenDelete(ctx, bucket, child.Key, renamed); err != nil {
				return err
			}
		}
	} else {
		if err := s.copyThenDelete(ctx, bucket, oldKey, newKey); err != nil {
			return err
		}
	}

	// Grant filenames must stay in sync with storage keys, otherwise a
	// shared-access check silently stops finding the object.
	if err := s.repo.FileSharingRepo.UpdateFilenameForOwner(accountID, oldKey, newKey); err != nil {
		return ErrBackend.Wrap(err)
	}

	s.logger.InfoWithContextf(ctx, "[Storage] Renamed %q to %q for account %d", oldKey, newKey, accountID)
	return nil
}

func (s *StorageService) copyThenDelete(ctx context.Context, bucket, srcKey, dstKey string) error {
	if err := s.backend.CopyObject(ctx, bucket, srcKey, dstKey); err != nil {
		return ErrBackend.Wrap(err)
	}
	if err := s.backend.RemoveObject(ctx, bucket, srcKey); err != nil {
		return ErrBackend.Wrap(err)
	}
	return nil
}

// GeneratePresignedUploadURL returns a time-boxed URL that lets the client
// put the object directly against the backend.
func (s *StorageService) GeneratePresignedUploadURL(ctx context.Context, accountID int64, objectKey, contentType string) (*url.URL, error) {
	if objectKey == "" {
		return nil, ErrInvalidArgument.New("object key cannot be empty")
	}
	presignedURL, err := s.backend.PresignedPutURL(ctx, s.BucketName(accountID), objectKey, contentType, s.presign)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	return presignedURL, nil
}

// GeneratePresignedDownloadURL returns a time-boxed URL for a direct get.
func (s *StorageService) GeneratePresignedDownloadURL(ctx context.Context, accountID int64, objectKey string) (*url.URL, error) {
	if objectKey == "" {
		return nil, ErrInvalidArgument.New("object key cannot be empty")
	}
	presignedURL, err := s.backend.PresignedGetURL(ctx, s.BucketName(accountID), objectKey, s.presign)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	return presignedURL, nil
}

// StartMultipartUpload opens a multipart session and returns its upload id.
func (s *StorageService) StartMultipartUpload(ctx context.Context, accountID int64, objectKey, contentType string) (string, error) {
	if objectKey == "" {
		return "", ErrInvalidArgument.New("object key cannot be empty")
	}
	uploadID, err := s.backend.NewMultipartUpload(ctx, s.BucketName(accountID), objectKey, contentType)
	if err != nil {
		return "", ErrBackend.Wrap(err)
	}
	s.logger.InfoWithContextf(ctx, "[Storage] Started multipart upload %s for %q, account %d", uploadID, objectKey, accountID)
	return uploadID, nil
}

// UploadPart stores one part. Parts may arrive concurrently and out of
// order; re-uploading a part number overwrites the earlier part.
func (s *StorageService) UploadPart(ctx context.Context, accountID int64, objectKey, uploadID string, partNumber int, data io.Reader, size int64) (entity.ObjectPart, error) {
	if objectKey == "" || uploadID == "" {
		return entity.ObjectPart{}, ErrInvalidArgument.New("object key and upload id cannot be empty")
	}
	if partNumber < 1 {
		return entity.ObjectPart{}, ErrInvalidArgument.New("part number must be positive, got %d", partNumber)
	}
	part, err := s.backend.PutObjectPart(ctx, s.BucketName(accountID), objectKey, uploadID, partNumber, data, size)
	if err != nil {
		return entity.ObjectPart{}, ErrBackend.Wrap(err)
	}
	return part, nil
}

// CompleteMultipartUpload lists the session's uploaded parts, assembles
// the manifest ascending by part number, and finalizes the object.
func (s *StorageService) CompleteMultipartUpload(ctx context.Context, accountID int64, objectKey, uploadID string) error {
	if objectKey == "" || uploadID == "" {
		return ErrInvalidArgument.New("object key and upload id cannot be empty")
	}

	bucket := s.BucketName(accountID)
	parts, err := s.backend.ListObjectParts(ctx, bucket, objectKey, uploadID)
	if err != nil {
		return ErrBackend.Wrap(err)
	}
	if len(parts) == 0 {
		return ErrInvalidArgument.New("multipart upload %s has no parts", uploadID)
	}

	if err := s.backend.CompleteMultipartUpload(ctx, bucket, objectKey, uploadID, parts); err != nil {
		return ErrBackend.Wrap(err)
	}
	s.logger.InfoWithContextf(ctx, "[Storage] Completed multipart upload %s for %q (%d parts)", uploadID, objectKey, len(parts))
	return nil
}

// AbortMultipartUpload releases the session and its stored parts.
func (s *StorageService) AbortMultipartUpload(ctx context.Context, accountID int64, objectKey, uploadID string) error {
	if objectKey == "" || uploadID == "" {
		return ErrInvalidArgument.New("object key and upload id cannot be empty")
	}
	if err := s.backend.AbortMultipartUpload(ctx, s.BucketName(accountID), objectKey, uploadID); err != nil {
		return ErrBackend.Wrap(err)
	}
	return nil
}
