package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ruimsramos/filehaven/config"
	"github.com/ruimsramos/filehaven/entity"
	"github.com/ruimsramos/filehaven/infra"
	"github.com/ruimsramos/filehaven/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *repository.Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entity.Account{}, &entity.Group{}, &entity.GroupMember{}, &entity.FileSharing{})
	require.NoError(t, err)

	return repository.NewRepository(db)
}

func newTestLogger() *infra.LoggerClient {
	return infra.InitLoggerClient(&config.EnvConfig{})
}

func newTestConfig() *config.EnvConfig {
	cfg := &config.EnvConfig{}
	cfg.Storage.BucketSuffix = "-bucket"
	cfg.Storage.PresignExpiryMinute = 15
	return cfg
}

func createAccount(t *testing.T, repo *repository.Repository, username string) *entity.Account {
	t.Helper()
	account := &entity.Account{Username: username, Password: "hashed"}
	require.NoError(t, repo.AccountRepo.Create(account))
	return account
}

type fakeObject struct {
	data        []byte
	contentType string
}

type fakeMultipartSession struct {
	bucket      string
	key         string
	contentType string
	parts       map[int]entity.ObjectPart
	partData    map[int][]byte
}

// fakeBackend is an in-memory ObjectBackend with fault injection hooks.
type fakeBackend struct {
	mu sync.Mutex

	buckets  map[string]map[string]fakeObject
	quotas   map[string]uint64
	sessions map[string]*fakeMultipartSession
	uploads  int

	// completed records the manifest passed to CompleteMultipartUpload.
	completed map[string][]entity.ObjectPart

	ensureErr error
	statErr   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		buckets:   make(map[string]map[string]fakeObject),
		quotas:    make(map[string]uint64),
		sessions:  make(map[string]*fakeMultipartSession),
		completed: make(map[string][]entity.ObjectPart),
	}
}

func (f *fakeBackend) object(bucket, key string) (fakeObject, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	objects, ok := f.buckets[bucket]
	if !ok {
		return fakeObject{}, false
	}
	object, ok := objects[key]
	return object, ok
}

func (f *fakeBackend) EnsureBucket(ctx context.Context, bucketName string) error {
	if f.ensureErr != nil {
		return f.ensureErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[bucketName]; !ok {
		f.buckets[bucketName] = make(map[string]fakeObject)
	}
	return nil
}

func (f *fakeBackend) SetBucketQuota(ctx context.Context, bucketName string, sizeBytes uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotas[bucketName] = sizeBytes
	return nil
}

func (f *fakeBackend) DeleteBucketWithObjects(ctx context.Context, bucketName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.buckets, bucketName)
	return nil
}

func (f *fakeBackend) ListObjects(ctx context.Context, bucketName, prefix, delimiter string) ([]entity.StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var objects []entity.StoredObject
	for key, object := range f.buckets[bucketName] {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, entity.StoredObject{
				Key:         key,
				Size:        int64(len(object.data)),
				ContentType: object.contentType,
			})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (f *fakeBackend) PutObject(ctx context.Context, bucketName, objectKey string, data io.Reader, size int64, contentType string) (entity.StoredObject, error) {
	payload, err := io.ReadAll(data)
	if err != nil {
		return entity.StoredObject{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[bucketName]; !ok {
		f.buckets[bucketName] = make(map[string]fakeObject)
	}
	f.buckets[bucketName][objectKey] = fakeObject{data: payload, contentType: contentType}
	return entity.StoredObject{Key: objectKey, Size: int64(len(payload)), ContentType: contentType}, nil
}

func (f *fakeBackend) PutFolderPlaceholder(ctx context.Context, bucketName, folderKey string) (entity.StoredObject, error) {
	return f.PutObject(ctx, bucketName, folderKey, bytes.NewReader(nil), 0, entity.FolderContentType)
}

func (f *fakeBackend) GetObjectStream(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, entity.StoredObject, error) {
	object, ok := f.object(bucketName, objectKey)
	if !ok {
		return nil, entity.StoredObject{}, fmt.Errorf("object %q not found", objectKey)
	}
	info := entity.StoredObject{Key: objectKey, Size: int64(len(object.data)), ContentType: object.contentType}
	return io.NopCloser(bytes.NewReader(object.data)), info, nil
}

func (f *fakeBackend) GetObjectBytes(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	object, ok := f.object(bucketName, objectKey)
	if !ok {
		return nil, fmt.Errorf("object %q not found", objectKey)
	}
	return object.data, nil
}

func (f *fakeBackend) RemoveObject(ctx context.Context, bucketName, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.buckets[bucketName], objectKey)
	return nil
}

func (f *fakeBackend) CopyObject(ctx context.Context, bucketName, srcKey, dstKey string) error {
	object, ok := f.object(bucketName, srcKey)
	if !ok {
		return fmt.Errorf("object %q not found", srcKey)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[bucketName][dstKey] = object
	return nil
}

func (f *fakeBackend) StatObject(ctx context.Context, bucketName, objectKey string) (entity.StoredObject, bool, error) {
	if f.statErr != nil {
		return entity.StoredObject{}, false, f.statErr
	}
	object, ok := f.object(bucketName, objectKey)
	if !ok {
		return entity.StoredObject{}, false, nil
	}
	return entity.StoredObject{Key: objectKey, Size: int64(len(object.data)), ContentType: object.contentType}, true, nil
}

func (f *fakeBackend) PresignedPutURL(ctx context.Context, bucketName, objectKey, contentType string, expiry time.Duration) (*url.URL, error) {
	return url.Parse(fmt.Sprintf("https://backend.test/%s/%s?method=PUT&expiry=%d", bucketName, objectKey, int(expiry.Seconds())))
}

func (f *fakeBackend) PresignedGetURL(ctx context.Context, bucketName, objectKey string, expiry time.Duration) (*url.URL, error) {
	return url.Parse(fmt.Sprintf("https://backend.test/%s/%s?method=GET&expiry=%d", bucketName, objectKey, int(expiry.Seconds())))
}

func (f *fakeBackend) NewMultipartUpload(ctx context.Context, bucketName, objectKey, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	uploadID := fmt.Sprintf("upload-%d", f.uploads)
	f.sessions[uploadID] = &fakeMultipartSession{
		bucket:      bucketName,
		key:         objectKey,
		contentType: contentType,
		parts:       make(map[int]entity.ObjectPart),
		partData:    make(map[int][]byte),
	}
	return uploadID, nil
}

func (f *fakeBackend) PutObjectPart(ctx context.Context, bucketName, objectKey, uploadID string, partNumber int, data io.Reader, size int64) (entity.ObjectPart, error) {
	payload, err := io.ReadAll(data)
	if err != nil {
		return entity.ObjectPart{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[uploadID]
	if !ok {
		return entity.ObjectPart{}, fmt.Errorf("upload %q not found", uploadID)
	}
	part := entity.ObjectPart{
		PartNumber: partNumber,
		ETag:       fmt.Sprintf("etag-%d", partNumber),
		Size:       int64(len(payload)),
	}
	session.parts[partNumber] = part
	session.partData[partNumber] = payload
	return part, nil
}

func (f *fakeBackend) ListObjectParts(ctx context.Context, bucketName, objectKey, uploadID string) ([]entity.ObjectPart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[uploadID]
	if !ok {
		return nil, fmt.Errorf("upload %q not found", uploadID)
	}
	parts := make([]entity.ObjectPart, 0, len(session.parts))
	for _, part := range session.parts {
		parts = append(parts, part)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].PartNumber < parts[j].PartNumber })
	return parts, nil
}

func (f *fakeBackend) CompleteMultipartUpload(ctx context.Context, bucketName, objectKey, uploadID string, parts []entity.ObjectPart) error {
	f.mu.Lock()
	session, ok := f.sessions[uploadID]
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("upload %q not found", uploadID)
	}
	var assembled []byte
	for _, part := range parts {
		assembled = append(assembled, session.partData[part.PartNumber]...)
	}
	contentType := session.contentType
	f.completed[uploadID] = parts
	delete(f.sessions, uploadID)
	f.mu.Unlock()

	_, err := f.PutObject(ctx, bucketName, objectKey, bytes.NewReader(assembled), int64(len(assembled)), contentType)
	return err
}

func (f *fakeBackend) AbortMultipartUpload(ctx context.Context, bucketName, objectKey, uploadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[uploadID]; !ok {
		return fmt.Errorf("upload %q not found", uploadID)
	}
	delete(f.sessions, uploadID)
	return nil
}

type testEnv struct {
	repo    *repository.Repository
	backend *fakeBackend
	storage *StorageService
	sharing *SharingService
	groups  *GroupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newTestRepo(t)
	backend := newFakeBackend()
	log := newTestLogger()
	storage := NewStorageService(backend, repo, log, newTestConfig())

	return &testEnv{
		repo:    repo,
		backend: backend,
		storage: storage,
		sharing: NewSharingService(repo, storage, log),
		groups:  NewGroupService(repo, nil, log),
	}
}
