package inmem

import (
	"context"
	"testing"

	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/server/dao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTheorem(name string) dao.TheoremRecord {
	p := logic.Var("p")
	q := logic.Var("q")
	return dao.TheoremRecord{
		Name:       name,
		Premises:   []logic.Formula{p, logic.Implies(p, q)},
		Conclusion: q,
	}
}

func Test_InMemoryTheoremsRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewTheoremsRepository()

	created, err := repo.Create(ctx, sampleTheorem("modus ponens"))
	require.NoError(t, err)
	assert.NotEqual(t, "", created.ID.String())
	assert.False(t, created.Created.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "modus ponens", got.Name)
}

func Test_InMemoryTheoremsRepository_GetByID_notFound(t *testing.T) {
	ctx := context.Background()
	repo := NewTheoremsRepository()

	_, err := repo.GetByID(ctx, mustRandomUUID(t))
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_InMemoryTheoremsRepository_GetAll(t *testing.T) {
	ctx := context.Background()
	repo := NewTheoremsRepository()

	_, err := repo.Create(ctx, sampleTheorem("one"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, sampleTheorem("two"))
	require.NoError(t, err)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func Test_InMemoryTheoremsRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewTheoremsRepository()

	created, err := repo.Create(ctx, sampleTheorem("one"))
	require.NoError(t, err)

	_, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func Test_TheoremRecord_ProvenTheorem(t *testing.T) {
	rec := sampleTheorem("modus ponens")
	rec.ID = mustRandomUUID(t)

	pt := rec.ProvenTheorem()
	assert.Equal(t, rec.ID.String(), pt.ID)
	assert.Equal(t, rec.Name, pt.Name)
	assert.Equal(t, rec.Conclusion, pt.Conclusion)
	assert.Equal(t, rec.Premises, pt.Premises)
}
