package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"docscan/internal/errors"
)

func TestEnsureAdmin(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seed := AdminSeed{Username: "admin", Password: "admin123", Credits: 999999}

	outcome, err := EnsureAdmin(ctx, store.Users(), seed)
	require.NoError(t, err)
	assert.Equal(t, SeedCreated, outcome)

	admin, err := store.Users().FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, 999999, admin.Credits)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")))

	outcome, err = EnsureAdmin(ctx, store.Users(), AdminSeed{Username: "admin", Password: "other", Credits: 5})
	require.NoError(t, err)
	assert.Equal(t, SeedSkipped, outcome)

	admin, _ = store.Users().FindByUsername(ctx, "admin")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")))
}

func TestEnsureAdmin_ForcePromotesExistingUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "root", 3, time.Now())

	outcome, err := EnsureAdmin(ctx, store.Users(), AdminSeed{Username: "root", Password: "fresh-pass", Credits: 100, Force: true})
	require.NoError(t, err)
	assert.Equal(t, SeedUpdated, outcome)

	root, err := store.Users().FindByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, root.IsAdmin)
	assert.Equal(t, 100, root.Credits)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(root.PasswordHash), []byte("fresh-pass")))
}

func TestEnsureAdmin_RequiresCredentials(t *testing.T) {
	store := newTestStore(t)

	_, err := EnsureAdmin(context.Background(), store.Users(), AdminSeed{Username: "admin"})
	assert.ErrorIs(t, err, errors.ErrMissingCredentials)
}
