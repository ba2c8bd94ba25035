package provider

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareFileToUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := createAccount(t, env.repo, "alice")
	bob := createAccount(t, env.repo, "bob")

	sharing, err := env.sharing.ShareFileToUser(ctx, alice.ID, bob.ID, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, sharing.SharedByUserID)
	assert.Equal(t, bob.ID, sharing.SharedToUserID)
	assert.Equal(t, "notes.txt", sharing.Filename)

	t.Run("duplicate same direction", func(t *testing.T) {
		_, err := env.sharing.ShareFileToUser(ctx, alice.ID, bob.ID, "notes.txt")
		assert.True(t, ErrDuplicate.Has(err))
	})

	t.Run("duplicate reverse direction", func(t *testing.T) {
		_, err := env.sharing.ShareFileToUser(ctx, bob.ID, alice.ID, "notes.txt")
		assert.True(t, ErrDuplicate.Has(err))
	})

	t.Run("different filename is a new grant", func(t *testing.T) {
		_, err := env.sharing.ShareFileToUser(ctx, alice.ID, bob.ID, "other.txt")
		assert.NoError(t, err)
	})

	t.Run("unknown accounts", func(t *testing.T) {
		_, err := env.sharing.ShareFileToUser(ctx, alice.ID, 9999, "notes.txt")
		assert.True(t, ErrNotFound.Has(err))

		_, err = env.sharing.ShareFileToUser(ctx, 9999, bob.ID, "notes.txt")
		assert.True(t, ErrNotFound.Has(err))
	})

	t.Run("empty filename", func(t *testing.T) {
		_, err := env.sharing.ShareFileToUser(ctx, alice.ID, bob.ID, "")
		assert.True(t, ErrInvalidArgument.Has(err))
	})
}

func TestShareFileToGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := createAccount(t, env.repo, "owner")
	carol := createAccount(t, env.repo, "carol")
	dave := createAccount(t, env.repo, "dave")

	group, err := env.groups.CreateGroup(ctx, owner.ID, "team")
	require.NoError(t, err)
	require.NoError(t, env.groups.AddUserToGroup(ctx, carol.ID, group.ID))
	require.NoError(t, env.groups.AddUserToGroup(ctx, dave.ID, group.ID))

	sharings, err := env.sharing.ShareFileToGroup(ctx, owner.ID, group.ID, "plan.doc")
	require.NoError(t, err)
	// One grant per explicit member; the creator holds no member row and
	// gets no grant against themselves.
	require.Len(t, sharings, 2)

	recipients := []int64{sharings[0].SharedToUserID, sharings[1].SharedToUserID}
	assert.ElementsMatch(t, []int64{carol.ID, dave.ID}, recipients)

	t.Run("re-share is idempotent", func(t *testing.T) {
		again, err := env.sharing.ShareFileToGroup(ctx, owner.ID, group.ID, "plan.doc")
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("later joiners get nothing from past shares", func(t *testing.T) {
		eve := createAccount(t, env.repo, "eve")
		require.NoError(t, env.groups.AddUserToGroup(ctx, eve.ID, group.ID))

		shared, err := env.sharing.IsFileSharedWithUser(ctx, owner.ID, eve.ID, "plan.doc")
		require.NoError(t, err)
		assert.False(t, shared)
	})

	t.Run("members already holding a grant are skipped", func(t *testing.T) {
		frank := createAccount(t, env.repo, "frank")
		require.NoError(t, env.groups.AddUserToGroup(ctx, frank.ID, group.ID))

		grants, err := env.sharing.ShareFileToGroup(ctx, owner.ID, group.ID, "plan.doc")
		require.NoError(t, err)
		require.Len(t, grants, 2)

		newRecipients := []int64{grants[0].SharedToUserID, grants[1].SharedToUserID}
		assert.Contains(t, newRecipients, frank.ID)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := env.sharing.ShareFileToGroup(ctx, owner.ID, 9999, "plan.doc")
		assert.True(t, ErrNotFound.Has(err))
	})

	t.Run("group without members", func(t *testing.T) {
		empty, err := env.groups.CreateGroup(ctx, owner.ID, "empty")
		require.NoError(t, err)

		_, err = env.sharing.ShareFileToGroup(ctx, owner.ID, empty.ID, "plan.doc")
		assert.True(t, ErrNotFound.Has(err))
	})
}

func TestUnshareFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := createAccount(t, env.repo, "alice")
	bob := createAccount(t, env.repo, "bob")

	sharing, err := env.sharing.ShareFileToUser(ctx, alice.ID, bob.ID, "notes.txt")
	require.NoError(t, err)

	require.NoError(t, env.sharing.UnshareFile(ctx, sharing.ID))

	shared, err := env.sharing.IsFileSharedWithUser(ctx, alice.ID, bob.ID, "notes.txt")
	require.NoError(t, err)
	assert.False(t, shared)

	err = env.sharing.UnshareFile(ctx, sharing.ID)
	assert.True(t, ErrNotFound.Has(err))
}

func TestGetFilesSharedByUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := createAccount(t, env.repo, "alice")
	bob := createAccount(t, env.repo, "bob")

	_, err := env.storage.UploadObject(ctx, alice.ID, "live.txt", strings.NewReader("x"), 1, "text/plain")
	require.NoError(t, err)

	_, err = env.sharing.ShareFileToUser(ctx, alice.ID, bob.ID, "live.txt")
	require.NoError(t, err)
	_, err = env.sharing.ShareFileToUser(ctx, alice.ID, bob.ID, "deleted.txt")
	require.NoError(t, err)

	shared, err := env.sharing.GetFilesSharedByUser(ctx, alice.ID)
	require.NoError(t, err)

	// The grant whose object no longer exists yields no row.
	require.Len(t, shared, 1)
	assert.Equal(t, "live.txt", shared[0].Object.Key)
	assert.Equal(t, "bob", shared[0].Sharing.SharedToUsername)
}

func TestGetFilesSharedToUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := createAccount(t, env.repo, "alice")
	bob := createAccount(t, env.repo, "bob")

	_, err := env.storage.UploadObject(ctx, alice.ID, "doc.pdf", strings.NewReader("pdf"), 3, "application/pdf")
	require.NoError(t, err)

	_, err = env.sharing.ShareFileToUser(ctx, alice.ID, bob.ID, "doc.pdf")
	require.NoError(t, err)

	received, err := env.sharing.GetFilesSharedToUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "doc.pdf", received[0].Object.Key)
	assert.Equal(t, "alice", received[0].Sharing.SharedByUsername)

	_, err = env.sharing.GetFilesSharedToUser(ctx, 9999)
	assert.True(t, ErrNotFound.Has(err))
}

func TestIsFileSharedWithUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := createAccount(t, env.repo, "alice")
	bob := createAccount(t, env.repo, "bob")
	carol := createAccount(t, env.repo, "carol")

	_, err := env.sharing.ShareFileToUser(ctx, alice.ID, bob.ID, "notes.txt")
	require.NoError(t, err)

	shared, err := env.sharing.IsFileSharedWithUser(ctx, alice.ID, bob.ID, "notes.txt")
	require.NoError(t, err)
	assert.True(t, shared)

	shared, err = env.sharing.IsFileSharedWithUser(ctx, alice.ID, carol.ID, "notes.txt")
	require.NoError(t, err)
	assert.False(t, shared)

	shared, err = env.sharing.IsFileSharedWithUser(ctx, alice.ID, bob.ID, "other.txt")
	require.NoError(t, err)
	assert.False(t, shared)
}
