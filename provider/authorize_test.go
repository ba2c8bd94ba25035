package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(1, 1))

	err := Authorize(1, 2)
	assert.True(t, ErrForbidden.Has(err))
}

func TestAuthorizeObjectRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := createAccount(t, env.repo, "owner")
	grantee := createAccount(t, env.repo, "grantee")
	stranger := createAccount(t, env.repo, "stranger")

	_, err := env.sharing.ShareFileToUser(ctx, owner.ID, grantee.ID, "shared.txt")
	require.NoError(t, err)

	t.Run("owner reads directly", func(t *testing.T) {
		assert.NoError(t, env.sharing.AuthorizeObjectRead(ctx, owner.ID, owner.ID, "shared.txt"))
		assert.NoError(t, env.sharing.AuthorizeObjectRead(ctx, owner.ID, owner.ID, "unshared.txt"))
	})

	t.Run("grantee falls through to the ledger", func(t *testing.T) {
		assert.NoError(t, env.sharing.AuthorizeObjectRead(ctx, grantee.ID, owner.ID, "shared.txt"))
	})

	t.Run("grantee denied for other objects", func(t *testing.T) {
		err := env.sharing.AuthorizeObjectRead(ctx, grantee.ID, owner.ID, "unshared.txt")
		assert.True(t, ErrForbidden.Has(err))
	})

	t.Run("stranger denied", func(t *testing.T) {
		err := env.sharing.AuthorizeObjectRead(ctx, stranger.ID, owner.ID, "shared.txt")
		assert.True(t, ErrForbidden.Has(err))
	})
}
