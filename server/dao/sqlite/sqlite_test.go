package sqlite

import (
	"context"
	"net/mail"
	"testing"

	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/internal/proof"
	"github.com/dekarrin/turnstile/server/dao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) dao.Store {
	t.Helper()
	st, err := NewDatastore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func Test_NewDatastore(t *testing.T) {
	st := openTestStore(t)
	assert.NotNil(t, st.Users())
	assert.NotNil(t, st.Proofs())
	assert.NotNil(t, st.Theorems())
}

func Test_UsersDB_CreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	users := st.Users()

	email, err := mail.ParseAddress("glorious@example.com")
	require.NoError(t, err)

	created, err := users.Create(ctx, dao.User{
		Username: "glorious",
		Password: "hashed-pw",
		Email:    email,
		Role:     dao.Normal,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "", created.ID.String())

	got, err := users.GetByUsername(ctx, "glorious")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "glorious@example.com", got.Email.Address)

	got.Role = dao.Admin
	updated, err := users.Update(ctx, got.ID, got)
	require.NoError(t, err)
	assert.Equal(t, dao.Admin, updated.Role)

	all, err := users.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	deleted, err := users.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = users.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_UsersDB_Create_duplicateUsername(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	users := st.Users()

	email, err := mail.ParseAddress("a@example.com")
	require.NoError(t, err)

	_, err = users.Create(ctx, dao.User{Username: "glorious", Email: email})
	require.NoError(t, err)

	_, err = users.Create(ctx, dao.User{Username: "glorious", Email: email})
	assert.ErrorIs(t, err, dao.ErrConstraintViolation)
}

func Test_ProofsDB_CreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	proofs := st.Proofs()

	owner, err := st.Users().Create(ctx, dao.User{
		Username: "owner",
		Email:    mustAddr(t, "owner@example.com"),
	})
	require.NoError(t, err)

	p := logic.Var("p")
	q := logic.Var("q")
	doc := dao.ProofDocument{
		OwnerID:    owner.ID,
		Name:       "modus ponens practice",
		Premises:   []logic.Formula{p, logic.Implies(p, q)},
		Conclusion: q,
		Steps: []proof.ProofStep{
			{ID: "1", Formula: p, Rule: proof.RuleAssumption, Depth: 0},
			{ID: "2", Formula: logic.Implies(p, q), Rule: proof.RuleAssumption, Depth: 0},
			{ID: "3", Formula: q, Rule: proof.RuleImpliesElim, Justification: []string{"1", "2"}, Depth: 0},
		},
	}

	created, err := proofs.Create(ctx, doc)
	require.NoError(t, err)

	got, err := proofs.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Conclusion, got.Conclusion)
	require.Len(t, got.Steps, 3)
	assert.Equal(t, proof.RuleImpliesElim, got.Steps[2].Rule)
	assert.Equal(t, []string{"1", "2"}, got.Steps[2].Justification)

	owned, err := proofs.GetAllByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	got.Name = "renamed"
	updated, err := proofs.Update(ctx, created.ID, got)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)

	_, err = proofs.Delete(ctx, created.ID)
	require.NoError(t, err)
	_, err = proofs.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_TheoremsDB_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	theorems := st.Theorems()

	p := logic.Var("p")
	q := logic.Var("q")
	rec := dao.TheoremRecord{
		Name:       "modus ponens",
		Premises:   []logic.Formula{p, logic.Implies(p, q)},
		Conclusion: q,
	}

	created, err := theorems.Create(ctx, rec)
	require.NoError(t, err)

	got, err := theorems.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "modus ponens", got.Name)
	assert.Equal(t, q, got.Conclusion)

	all, err := theorems.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = theorems.Delete(ctx, created.ID)
	require.NoError(t, err)
	_, err = theorems.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func mustAddr(t *testing.T, s string) *mail.Address {
	t.Helper()
	a, err := mail.ParseAddress(s)
	require.NoError(t, err)
	return a
}
