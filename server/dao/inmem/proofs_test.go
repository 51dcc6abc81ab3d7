package inmem

import (
	"context"
	"testing"

	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/internal/proof"
	"github.com/dekarrin/turnstile/server/dao"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProof(owner uuid.UUID) dao.ProofDocument {
	p := logic.Var("p")
	q := logic.Var("q")
	return dao.ProofDocument{
		OwnerID:    owner,
		Name:       "modus ponens practice",
		Premises:   []logic.Formula{p, logic.Implies(p, q)},
		Conclusion: q,
		Steps: []proof.ProofStep{
			{ID: "1", Formula: p, Rule: proof.RuleAssumption, Depth: 0},
			{ID: "2", Formula: logic.Implies(p, q), Rule: proof.RuleAssumption, Depth: 0},
			{ID: "3", Formula: q, Rule: proof.RuleImpliesElim, Justification: []string{"1", "2"}, Depth: 0},
		},
	}
}

func Test_InMemoryProofsRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewProofsRepository()
	owner := mustRandomUUID(t)

	created, err := repo.Create(ctx, sampleProof(owner))
	require.NoError(t, err)
	assert.NotEqual(t, "", created.ID.String())
	assert.False(t, created.Created.IsZero())
	assert.Equal(t, created.Created, created.Modified)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Conclusion, got.Conclusion)
	assert.Len(t, got.Steps, 3)
}

func Test_InMemoryProofsRepository_GetByID_notFound(t *testing.T) {
	ctx := context.Background()
	repo := NewProofsRepository()

	_, err := repo.GetByID(ctx, mustRandomUUID(t))
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_InMemoryProofsRepository_GetAllByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewProofsRepository()
	owner1 := mustRandomUUID(t)
	owner2 := mustRandomUUID(t)

	_, err := repo.Create(ctx, sampleProof(owner1))
	require.NoError(t, err)
	_, err = repo.Create(ctx, sampleProof(owner1))
	require.NoError(t, err)
	_, err = repo.Create(ctx, sampleProof(owner2))
	require.NoError(t, err)

	owned, err := repo.GetAllByOwner(ctx, owner1)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func Test_InMemoryProofsRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewProofsRepository()
	owner := mustRandomUUID(t)

	created, err := repo.Create(ctx, sampleProof(owner))
	require.NoError(t, err)

	updated := created
	updated.Name = "renamed"
	out, err := repo.Update(ctx, created.ID, updated)
	require.NoError(t, err)
	assert.Equal(t, "renamed", out.Name)
	assert.Equal(t, created.Created, out.Created)
	assert.True(t, out.Modified.After(out.Created) || out.Modified.Equal(out.Created))

	_, err = repo.Update(ctx, mustRandomUUID(t), updated)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_InMemoryProofsRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewProofsRepository()
	owner := mustRandomUUID(t)

	created, err := repo.Create(ctx, sampleProof(owner))
	require.NoError(t, err)

	_, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)

	_, err = repo.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
