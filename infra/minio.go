package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/ruimsramos/filehaven/config"
	"github.com/ruimsramos/filehaven/entity"
)

type MinioClient struct {
	Admin    *madmin.AdminClient
	Client   *minio.Client
	Core     *minio.Core
	Endpoint string
	Region   string
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	rootUser := cfg.Minio.RootUser
	if rootUser == "" {
		panic("MinIO root user is not configured")
	}

	rootPassword := cfg.Minio.RootPassword
	if rootPassword == "" {
		panic("MinIO root password is not configured")
	}

	madminClient, err := madmin.New(endpoint, rootUser, rootPassword, cfg.Minio.UseSSL)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO admin client: %v", err))
	}

	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	return &MinioClient{
		Admin:    madminClient,
		Client:   core.Client,
		Core:     core,
		Endpoint: endpoint,
		Region:   cfg.Storage.Region,
	}
}

func toStoredObject(info minio.ObjectInfo) entity.StoredObject {
	return entity.StoredObject{
		Key:          info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ETag:         info.ETag,
		StorageClass: info.StorageClass,
		ContentType:  info.ContentType,
	}
}

// CreateBucket creates a new bucket in MinIO.
func (m *MinioClient) CreateBucket(ctx context.Context, bucketName string) error {
	if bucketName == "" {
		return fmt.Errorf("bucketName cannot be empty")
	}

	err := m.Client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{
		Region: m.Region,
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// EnsureBucket creates a bucket if it doesn't exist.
func (m *MinioClient) EnsureBucket(ctx context.Context, bucketName string) error {
	exists, err := m.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return m.CreateBucket(ctx, bucketName)
	}
	return nil
}

// BucketExists checks if a bucket exists in MinIO.
func (m *MinioClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	if bucketName == "" {
		return false, fmt.Errorf("bucketName cannot be empty")
	}

	exists, err := m.Client.BucketExists(ctx, bucketName)
	if err != nil {
		return false, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	return exists, nil
}

// SetBucketQuota applies a hard storage quota to a bucket. A size of zero
// removes any configured quota.
func (m *MinioClient) SetBucketQuota(ctx context.Context, bucketName string, sizeBytes uint64) error {
	if bucketName == "" {
		return fmt.Errorf("bucketName cannot be empty")
	}

	quota := &madmin.BucketQuota{Quota: sizeBytes, Type: madmin.HardQuota}
	if sizeBytes == 0 {
		quota = &madmin.BucketQuota{}
	}

	if err := m.Admin.SetBucketQuota(ctx, bucketName, quota); err != nil {
		return fmt.Errorf("failed to set bucket quota: %w", err)
	}

	return nil
}

// RemoveBucket deletes an empty bucket.
func (m *MinioClient) RemoveBucket(ctx context.Context, bucketName string) error {
	if bucketName == "" {
		return fmt.Errorf("bucketName cannot be empty")
	}

	if err := m.Client.RemoveBucket(ctx, bucketName); err != nil {
		return fmt.Errorf("failed to delete bucket: %w", err)
	}

	return nil
}

// DrainBucket removes every object from a bucket. Removing an already
// deleted key is a no-op at the backend, so a failed drain can simply be
// retried.
func (m *MinioClient) DrainBucket(ctx context.Context, bucketName string) error {
	if bucketName == "" {
		return fmt.Errorf("bucketName cannot be empty")
	}

	objectsCh := m.Client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{
		Recursive: true,
	})

	objectsToDelete := make(chan minio.ObjectInfo)

	go func() {
		defer close(objectsToDelete)
		for object := range objectsCh {
			if object.Err != nil {
				continue
			}
			objectsToDelete <- object
		}
	}()

	errorCh := m.Client.RemoveObjects(ctx, bucketName, objectsToDelete, minio.RemoveObjectsOptions{})

	for err := range errorCh {
		if err.Err != nil {
			return fmt.Errorf("failed to remove object %s: %w", err.ObjectName, err.Err)
		}
	}

	return nil
}

// DeleteBucketWithObjects drains a bucket and then deletes it.
func (m *MinioClient) DeleteBucketWithObjects(ctx context.Context, bucketName string) error {
	if err := m.DrainBucket(ctx, bucketName); err != nil {
		return fmt.Errorf("failed to remove objects from bucket: %w", err)
	}

	if err := m.RemoveBucket(ctx, bucketName); err != nil {
		return err
	}

	return nil
}

// ListObjects lists objects under a prefix. With an empty delimiter the
// listing is flat and recursive; a non-empty delimiter collapses common
// prefixes into folder entries.
func (m *MinioClient) ListObjects(ctx context.Context, bucketName, prefix, delimiter string) ([]entity.StoredObject, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucketName cannot be empty")
	}

	objectsCh := m.Client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: delimiter == "",
	})

	objects := make([]entity.StoredObject, 0)
	for object := range objectsCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		objects = append(objects, toStoredObject(object))
	}

	return objects, nil
}

// PutObject uploads an object in a single shot.
func (m *MinioClient) PutObject(ctx context.Context, bucketName, objectKey string, data io.Reader, size int64, contentType string) (entity.StoredObject, error) {
	if bucketName == "" || objectKey == "" {
		return entity.StoredObject{}, fmt.Errorf("bucketName and objectKey cannot be empty")
	}

	info, err := m.Client.PutObject(ctx, bucketName, objectKey, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return entity.StoredObject{}, fmt.Errorf("failed to upload object: %w", err)
	}

	return entity.StoredObject{
		Key:          info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ETag:         info.ETag,
		ContentType:  contentType,
	}, nil
}

// PutFolderPlaceholder synthesizes the zero-byte directory marker object.
func (m *MinioClient) PutFolderPlaceholder(ctx context.Context, bucketName, folderKey string) (entity.StoredObject, error) {
	return m.PutObject(ctx, bucketName, folderKey, bytes.NewReader(nil), 0, entity.FolderContentType)
}

// GetObjectStream returns the backend response stream together with the
// object metadata. The caller owns the reader.
func (m *MinioClient) GetObjectStream(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, entity.StoredObject, error) {
	if bucketName == "" || objectKey == "" {
		return nil, entity.StoredObject{}, fmt.Errorf("bucketName and objectKey cannot be empty")
	}

	info, err := m.Client.StatObject(ctx, bucketName, objectKey, minio.StatObjectOptions{})
	if err != nil {
		return nil, entity.StoredObject{}, fmt.Errorf("failed to stat object: %w", err)
	}

	object, err := m.Client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, entity.StoredObject{}, fmt.Errorf("failed to get object: %w", err)
	}

	return object, toStoredObject(info), nil
}

// GetObjectBytes downloads an object fully into memory.
func (m *MinioClient) GetObjectBytes(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	reader, _, err := m.GetObjectStream(ctx, bucketName, objectKey)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	return data, nil
}

// RemoveObject deletes a single object. Deleting a missing key succeeds.
func (m *MinioClient) RemoveObject(ctx context.Context, bucketName, objectKey string) error {
	if bucketName == "" || objectKey == "" {
		return fmt.Errorf("bucketName and objectKey cannot be empty")
	}

	if err := m.Client.RemoveObject(ctx, bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// CopyObject copies a key within the same bucket.
func (m *MinioClient) CopyObject(ctx context.Context, bucketName, srcKey, dstKey string) error {
	if bucketName == "" || srcKey == "" || dstKey == "" {
		return fmt.Errorf("bucketName, srcKey and dstKey cannot be empty")
	}

	_, err := m.Client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: bucketName, Object: dstKey},
		minio.CopySrcOptions{Bucket: bucketName, Object: srcKey},
	)
	if err != nil {
		return fmt.Errorf("failed to copy object: %w", err)
	}

	return nil
}

// StatObject returns the object metadata. A missing key is reported via the
// found flag; any other backend fault is an error.
func (m *MinioClient) StatObject(ctx context.Context, bucketName, objectKey string) (entity.StoredObject, bool, error) {
	if bucketName == "" || objectKey == "" {
		return entity.StoredObject{}, false, fmt.Errorf("bucketName and objectKey cannot be empty")
	}

	info, err := m.Client.StatObject(ctx, bucketName, objectKey, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return entity.StoredObject{}, false, nil
		}
		return entity.StoredObject{}, false, fmt.Errorf("failed to stat object: %w", err)
	}

	return toStoredObject(info), true, nil
}

// PresignedPutURL generates a time-boxed upload URL bound to the given
// content type.
func (m *MinioClient) PresignedPutURL(ctx context.Context, bucketName, objectKey, contentType string, expiry time.Duration) (*url.URL, error) {
	if bucketName == "" || objectKey == "" {
		return nil, fmt.Errorf("bucketName and objectKey cannot be empty")
	}

	headers := http.Header{}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}

	presignedURL, err := m.Client.PresignHeader(ctx, http.MethodPut, bucketName, objectKey, expiry, url.Values{}, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned upload URL: %w", err)
	}

	return presignedURL, nil
}

// PresignedGetURL generates a time-boxed download URL.
func (m *MinioClient) PresignedGetURL(ctx context.Context, bucketName, objectKey string, expiry time.Duration) (*url.URL, error) {
	if bucketName == "" || objectKey == "" {
		return nil, fmt.Errorf("bucketName and objectKey cannot be empty")
	}

	presignedURL, err := m.Client.PresignedGetObject(ctx, bucketName, objectKey, expiry, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return presignedURL, nil
}

// NewMultipartUpload opens a multipart session for the given key.
func (m *MinioClient) NewMultipartUpload(ctx context.Context, bucketName, objectKey, contentType string) (string, error) {
	if bucketName == "" || objectKey == "" {
		return "", fmt.Errorf("bucketName and objectKey cannot be empty")
	}

	uploadID, err := m.Core.NewMultipartUpload(ctx, bucketName, objectKey, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start multipart upload: %w", err)
	}

	return uploadID, nil
}

// PutObjectPart uploads one part of a multipart session. Re-uploading a
// part number overwrites the previous part.
func (m *MinioClient) PutObjectPart(ctx context.Context, bucketName, objectKey, uploadID string, partNumber int, data io.Reader, size int64) (entity.ObjectPart, error) {
	if bucketName == "" || objectKey == "" || uploadID == "" {
		return entity.ObjectPart{}, fmt.Errorf("bucketName, objectKey and uploadID cannot be empty")
	}

	part, err := m.Core.PutObjectPart(ctx, bucketName, objectKey, uploadID, partNumber, data, size, minio.PutObjectPartOptions{})
	if err != nil {
		return entity.ObjectPart{}, fmt.Errorf("failed to upload part %d: %w", partNumber, err)
	}

	return entity.ObjectPart{
		PartNumber: part.PartNumber,
		ETag:       part.ETag,
		Size:       part.Size,
	}, nil
}

// ListObjectParts returns every part uploaded so far, ascending by part
// number.
func (m *MinioClient) ListObjectParts(ctx context.Context, bucketName, objectKey, uploadID string) ([]entity.ObjectPart, error) {
	if bucketName == "" || objectKey == "" || uploadID == "" {
		return nil, fmt.Errorf("bucketName, objectKey and uploadID cannot be empty")
	}

	var parts []entity.ObjectPart
	marker := 0
	for {
		result, err := m.Core.ListObjectParts(ctx, bucketName, objectKey, uploadID, marker, 1000)
		if err != nil {
			return nil, fmt.Errorf("failed to list parts: %w", err)
		}
		for _, part := range result.ObjectParts {
			parts = append(parts, entity.ObjectPart{
				PartNumber: part.PartNumber,
				ETag:       part.ETag,
				Size:       part.Size,
			})
		}
		if !result.IsTruncated {
			break
		}
		marker = result.NextPartNumberMarker
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].PartNumber < parts[j].PartNumber })
	return parts, nil
}

// CompleteMultipartUpload finalizes a session with the given manifest.
func (m *MinioClient) CompleteMultipartUpload(ctx context.Context, bucketName, objectKey, uploadID string, parts []entity.ObjectPart) error {
	if bucketName == "" || objectKey == "" || uploadID == "" {
		return fmt.Errorf("bucketName, objectKey and uploadID cannot be empty")
	}

	completed := make([]minio.CompletePart, 0, len(parts))
	for _, part := range parts {
		completed = append(completed, minio.CompletePart{
			PartNumber: part.PartNumber,
			ETag:       part.ETag,
		})
	}

	_, err := m.Core.CompleteMultipartUpload(ctx, bucketName, objectKey, uploadID, completed, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to complete multipart upload: %w", err)
	}

	return nil
}

// AbortMultipartUpload releases a session and its stored parts.
func (m *MinioClient) AbortMultipartUpload(ctx context.Context, bucketName, objectKey, uploadID string) error {
	if bucketName == "" || objectKey == "" || uploadID == "" {
		return fmt.Errorf("bucketName, objectKey and uploadID cannot be empty")
	}

	if err := m.Core.AbortMultipartUpload(ctx, bucketName, objectKey, uploadID); err != nil {
		return fmt.Errorf("failed to abort multipart upload: %w", err)
	}

	return nil
}
