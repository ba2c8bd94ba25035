package provider

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/ruimsramos/filehaven/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketName(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, "42-bucket", env.storage.BucketName(42))
}

func TestProvisionAccountBucket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.storage.ProvisionAccountBucket(ctx, 7))
	_, ok := env.backend.buckets["7-bucket"]
	assert.True(t, ok)
	assert.NotContains(t, env.backend.quotas, "7-bucket")
}

func TestProvisionAccountBucketWithQuota(t *testing.T) {
	repo := newTestRepo(t)
	backend := newFakeBackend()
	cfg := newTestConfig()
	cfg.Storage.QuotaBytes = 1 << 30
	storage := NewStorageService(backend, repo, newTestLogger(), cfg)

	require.NoError(t, storage.ProvisionAccountBucket(context.Background(), 7))
	assert.Equal(t, uint64(1<<30), backend.quotas["7-bucket"])
}

func TestUploadObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("stores object with content type", func(t *testing.T) {
		object, err := env.storage.UploadObject(ctx, 1, "docs/report.pdf", strings.NewReader("content"), 7, "application/pdf")
		require.NoError(t, err)
		assert.Equal(t, "docs/report.pdf", object.Key)
		assert.Equal(t, int64(7), object.Size)
		assert.Equal(t, "application/pdf", object.ContentType)
	})

	t.Run("defaults the content type", func(t *testing.T) {
		object, err := env.storage.UploadObject(ctx, 1, "plain.bin", strings.NewReader("x"), 1, "")
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", object.ContentType)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		_, err := env.storage.UploadObject(ctx, 1, "", strings.NewReader("x"), 1, "")
		assert.True(t, ErrInvalidArgument.Has(err))
	})
}

func TestCreateFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	object, err := env.storage.CreateFolder(ctx, 1, "photos")
	require.NoError(t, err)
	assert.Equal(t, "photos/", object.Key)
	assert.Equal(t, int64(0), object.Size)
	assert.Equal(t, entity.FolderContentType, object.ContentType)

	// Already-terminated names must not get a second separator.
	object, err = env.storage.CreateFolder(ctx, 1, "videos/")
	require.NoError(t, err)
	assert.Equal(t, "videos/", object.Key)
}

func TestDownloadObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.storage.UploadObject(ctx, 1, "file.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)

	data, err := env.storage.DownloadObject(ctx, 1, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	_, err = env.storage.DownloadObject(ctx, 1, "missing.txt")
	assert.True(t, ErrBackend.Has(err))
}

func TestDownloadObjectStream(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.storage.UploadObject(ctx, 1, "file.txt", strings.NewReader("streamed"), 8, "text/plain")
	require.NoError(t, err)

	reader, info, err := env.storage.DownloadObjectStream(ctx, 1, "file.txt")
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, int64(8), info.Size)
	assert.Equal(t, "text/plain", info.ContentType)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "streamed", string(data))
}

func TestDoesObjectExist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.storage.UploadObject(ctx, 1, "present.txt", strings.NewReader("x"), 1, "")
	require.NoError(t, err)

	exists, err := env.storage.DoesObjectExist(ctx, 1, "present.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = env.storage.DoesObjectExist(ctx, 1, "absent.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	env.backend.statErr = io.ErrUnexpectedEOF
	_, err = env.storage.DoesObjectExist(ctx, 1, "present.txt")
	assert.True(t, ErrBackend.Has(err))
}

func TestDeleteObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.storage.UploadObject(ctx, 1, "gone.txt", strings.NewReader("x"), 1, "")
	require.NoError(t, err)

	require.NoError(t, env.storage.DeleteObject(ctx, 1, "gone.txt"))

	exists, err := env.storage.DoesObjectExist(ctx, 1, "gone.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting an absent key is a no-op.
	require.NoError(t, env.storage.DeleteObject(ctx, 1, "gone.txt"))
}

func TestRenameObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := createAccount(t, env.repo, "owner")
	target := createAccount(t, env.repo, "target")

	_, err := env.storage.UploadObject(ctx, owner.ID, "old.txt", strings.NewReader("data"), 4, "text/plain")
	require.NoError(t, err)

	_, err = env.sharing.ShareFileToUser(ctx, owner.ID, target.ID, "old.txt")
	require.NoError(t, err)

	require.NoError(t, env.storage.RenameObject(ctx, owner.ID, "old.txt", "new.txt"))

	exists, err := env.storage.DoesObjectExist(ctx, owner.ID, "old.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	data, err := env.storage.DownloadObject(ctx, owner.ID, "new.txt")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	// Grants must follow the rename.
	sharings, err := env.repo.FileSharingRepo.FindBySharedByUserID(owner.ID)
	require.NoError(t, err)
	require.Len(t, sharings, 1)
	assert.Equal(t, "new.txt", sharings[0].Filename)
}

func TestRenameObjectErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.storage.RenameObject(ctx, 1, "missing.txt", "other.txt")
	assert.True(t, ErrNotFound.Has(err))

	err = env.storage.RenameObject(ctx, 1, "same.txt", "same.txt")
	assert.True(t, ErrInvalidArgument.Has(err))

	err = env.storage.RenameObject(ctx, 1, "", "x")
	assert.True(t, ErrInvalidArgument.Has(err))
}

func TestRenameFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	createAccount(t, env.repo, "owner")

	_, err := env.storage.CreateFolder(ctx, 1, "photos")
	require.NoError(t, err)
	_, err = env.storage.UploadObject(ctx, 1, "photos/a.jpg", strings.NewReader("a"), 1, "image/jpeg")
	require.NoError(t, err)
	_, err = env.storage.UploadObject(ctx, 1, "photos/trip/b.jpg", strings.NewReader("b"), 1, "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, env.storage.RenameObject(ctx, 1, "photos/", "archive/"))

	objects, err := env.storage.ListObjects(ctx, 1, "", "")
	require.NoError(t, err)

	keys := make([]string, 0, len(objects))
	for _, object := range objects {
		keys = append(keys, object.Key)
	}
	assert.ElementsMatch(t, []string{"archive/", "archive/a.jpg", "archive/trip/b.jpg"}, keys)
}

func TestPresignedURLs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	uploadURL, err := env.storage.GeneratePresignedUploadURL(ctx, 3, "up.bin", "application/octet-stream")
	require.NoError(t, err)
	assert.Contains(t, uploadURL.String(), "3-bucket/up.bin")
	assert.Contains(t, uploadURL.String(), "expiry=900")

	downloadURL, err := env.storage.GeneratePresignedDownloadURL(ctx, 3, "down.bin")
	require.NoError(t, err)
	assert.Contains(t, downloadURL.String(), "3-bucket/down.bin")

	_, err = env.storage.GeneratePresignedUploadURL(ctx, 3, "", "")
	assert.True(t, ErrInvalidArgument.Has(err))
}

func TestMultipartUpload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	uploadID, err := env.storage.StartMultipartUpload(ctx, 1, "big.bin", "application/octet-stream")
	require.NoError(t, err)
	require.NotEmpty(t, uploadID)

	// Parts arrive out of order.
	for _, n := range []int{3, 1, 2} {
		part, err := env.storage.UploadPart(ctx, 1, "big.bin", uploadID, n, bytes.NewReader([]byte{byte('0' + n)}), 1)
		require.NoError(t, err)
		assert.Equal(t, n, part.PartNumber)
	}

	require.NoError(t, env.storage.CompleteMultipartUpload(ctx, 1, "big.bin", uploadID))

	manifest := env.backend.completed[uploadID]
	require.Len(t, manifest, 3)
	for i, part := range manifest {
		assert.Equal(t, i+1, part.PartNumber)
	}

	data, err := env.storage.DownloadObject(ctx, 1, "big.bin")
	require.NoError(t, err)
	assert.Equal(t, "123", string(data))
}

func TestMultipartUploadErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	uploadID, err := env.storage.StartMultipartUpload(ctx, 1, "big.bin", "")
	require.NoError(t, err)

	_, err = env.storage.UploadPart(ctx, 1, "big.bin", uploadID, 0, strings.NewReader("x"), 1)
	assert.True(t, ErrInvalidArgument.Has(err))

	// Completing with no uploaded parts is rejected before touching the
	// backend.
	err = env.storage.CompleteMultipartUpload(ctx, 1, "big.bin", uploadID)
	assert.True(t, ErrInvalidArgument.Has(err))

	err = env.storage.CompleteMultipartUpload(ctx, 1, "", uploadID)
	assert.True(t, ErrInvalidArgument.Has(err))
}

func TestAbortMultipartUpload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	uploadID, err := env.storage.StartMultipartUpload(ctx, 1, "big.bin", "")
	require.NoError(t, err)
	_, err = env.storage.UploadPart(ctx, 1, "big.bin", uploadID, 1, strings.NewReader("x"), 1)
	require.NoError(t, err)

	require.NoError(t, env.storage.AbortMultipartUpload(ctx, 1, "big.bin", uploadID))

	// The session is gone, so completing now fails.
	err = env.storage.CompleteMultipartUpload(ctx, 1, "big.bin", uploadID)
	assert.Error(t, err)
}

func TestAsyncFacades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	uploadResult := <-env.storage.UploadObjectAsync(ctx, 1, "async.txt", strings.NewReader("payload"), 7, "text/plain")
	require.NoError(t, uploadResult.Err)
	assert.Equal(t, "async.txt", uploadResult.Object.Key)

	downloadResult := <-env.storage.DownloadObjectAsync(ctx, 1, "async.txt")
	require.NoError(t, downloadResult.Err)
	assert.Equal(t, "payload", string(downloadResult.Data))

	require.NoError(t, <-env.storage.DeprovisionAccountBucketAsync(ctx, 1))
	_, ok := env.backend.buckets["1-bucket"]
	assert.False(t, ok)
}
