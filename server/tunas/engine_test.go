package tunas

import (
	"context"
	"testing"

	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/internal/proof"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Service_ParseFormula(t *testing.T) {
	svc := newTestService(t)

	f, parseErr := svc.ParseFormula("p -> q")
	require.Nil(t, parseErr)
	assert.Equal(t, logic.KindImplies, f.Kind())
}

func Test_Service_ParseFormula_invalid(t *testing.T) {
	svc := newTestService(t)

	_, parseErr := svc.ParseFormula("p ->")
	require.NotNil(t, parseErr)
}

func Test_Service_PrintFormula(t *testing.T) {
	svc := newTestService(t)
	f, parseErr := svc.ParseFormula("p & q")
	require.Nil(t, parseErr)

	out := svc.PrintFormula(f, logic.ModeASCII)
	assert.NotEmpty(t, out)
}

func Test_Service_Table(t *testing.T) {
	svc := newTestService(t)
	f, parseErr := svc.ParseFormula("p | ~p")
	require.Nil(t, parseErr)

	tbl := svc.Table(f)
	assert.True(t, tbl.IsTautology)
	assert.Len(t, tbl.Variables, 1)
}

func Test_Service_CheckProof_directRules(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	premises, conclusion, steps := samplePremisesAndSteps()

	result, err := svc.CheckProof(ctx, steps, premises, conclusion)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.Complete)
	assert.Empty(t, result.Errors)
}

func Test_Service_CheckProof_citesPersistedTheorem(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := logic.Var("p")
	q := logic.Var("q")
	rec, err := svc.CreateTheorem(ctx, "modus ponens", []logic.Formula{p, logic.Implies(p, q)}, q)
	require.NoError(t, err)

	premises := []logic.Formula{p, logic.Implies(p, q)}
	steps := proof.Proof{
		{ID: "1", Formula: p, Rule: proof.RuleAssumption, Depth: 0},
		{ID: "2", Formula: logic.Implies(p, q), Rule: proof.RuleAssumption, Depth: 0},
		{ID: "3", Formula: q, Rule: proof.RuleTheorem, Justification: []string{"1", "2"}, Depth: 0, TheoremID: rec.ID.String()},
	}

	result, err := svc.CheckProof(ctx, steps, premises, q)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func Test_Service_CheckProof_unknownTheorem(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := logic.Var("p")
	premises := []logic.Formula{p}
	steps := proof.Proof{
		{ID: "1", Formula: p, Rule: proof.RuleAssumption, Depth: 0},
		{ID: "2", Formula: p, Rule: proof.RuleTheorem, TheoremID: "does-not-exist", Depth: 0},
	}

	result, err := svc.CheckProof(ctx, steps, premises, p)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, proof.CodeTheoremNotFound, result.Errors[0].Code)
}
