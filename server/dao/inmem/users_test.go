package inmem

import (
	"context"
	"net/mail"
	"testing"

	"github.com/dekarrin/turnstile/server/dao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(t *testing.T, s string) *mail.Address {
	t.Helper()
	a, err := mail.ParseAddress(s)
	require.NoError(t, err)
	return a
}

func Test_InMemoryUsersRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepository()

	created, err := repo.Create(ctx, dao.User{
		Username: "glorious",
		Password: "hashed-pw",
		Email:    addr(t, "glorious@example.com"),
		Role:     dao.Normal,
	})
	require.NoError(t, err)

	assert.NotEqual(t, created.ID.String(), "")
	assert.False(t, created.Created.IsZero())
	assert.False(t, created.LastLogoutTime.IsZero())
}

func Test_InMemoryUsersRepository_Create_duplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepository()

	_, err := repo.Create(ctx, dao.User{Username: "glorious", Email: addr(t, "a@example.com")})
	require.NoError(t, err)

	_, err = repo.Create(ctx, dao.User{Username: "glorious", Email: addr(t, "b@example.com")})
	assert.ErrorIs(t, err, dao.ErrConstraintViolation)
}

func Test_InMemoryUsersRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepository()

	created, err := repo.Create(ctx, dao.User{Username: "glorious", Email: addr(t, "a@example.com")})
	require.NoError(t, err)

	got, err := repo.GetByUsername(ctx, "glorious")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_InMemoryUsersRepository_GetByID_notFound(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepository()

	_, err := repo.GetByID(ctx, mustRandomUUID(t))
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_InMemoryUsersRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepository()

	created, err := repo.Create(ctx, dao.User{Username: "glorious", Email: addr(t, "a@example.com")})
	require.NoError(t, err)

	created.Role = dao.Admin
	updated, err := repo.Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, dao.Admin, updated.Role)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, dao.Admin, got.Role)
}

func Test_InMemoryUsersRepository_Update_usernameConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepository()

	_, err := repo.Create(ctx, dao.User{Username: "taken", Email: addr(t, "a@example.com")})
	require.NoError(t, err)
	other, err := repo.Create(ctx, dao.User{Username: "glorious", Email: addr(t, "b@example.com")})
	require.NoError(t, err)

	other.Username = "taken"
	_, err = repo.Update(ctx, other.ID, other)
	assert.ErrorIs(t, err, dao.ErrConstraintViolation)
}

func Test_InMemoryUsersRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepository()

	created, err := repo.Create(ctx, dao.User{Username: "glorious", Email: addr(t, "a@example.com")})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)

	_, err = repo.GetByUsername(ctx, "glorious")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_InMemoryUsersRepository_GetAll_sorted(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepository()

	_, err := repo.Create(ctx, dao.User{Username: "bbb", Email: addr(t, "a@example.com")})
	require.NoError(t, err)
	_, err = repo.Create(ctx, dao.User{Username: "aaa", Email: addr(t, "b@example.com")})
	require.NoError(t, err)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].ID.String() < all[1].ID.String())
}
