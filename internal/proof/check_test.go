package proof

import (
	"testing"

	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(t *testing.T, src string) logic.Formula {
	t.Helper()
	parsed, err := logic.Parse(src)
	require.Nil(t, err)
	return parsed
}

func step(id string, form logic.Formula, rule Rule, depth int, just ...string) ProofStep {
	return ProofStep{ID: id, Formula: form, Rule: rule, Depth: depth, Justification: just}
}

func TestCheck_EmptyProofIsInvalid(t *testing.T) {
	result := Check(nil, nil, f(t, "P"), nil)
	assert.False(t, result.Valid)
	assert.False(t, result.Complete)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeEmptyProof, result.Errors[0].Code)
}

func TestCheck_ModusPonens(t *testing.T) {
	proof := Proof{
		step("1", f(t, "P"), RuleAssumption, 0),
		step("2", f(t, "P -> Q"), RuleAssumption, 0),
		step("3", f(t, "Q"), RuleImpliesElim, 0, "1", "2"),
	}
	premises := []logic.Formula{f(t, "P"), f(t, "P -> Q")}
	result := Check(proof, premises, f(t, "Q"), nil)
	assert.True(t, result.Valid, "%+v", result.Errors)
	assert.True(t, result.Complete)

	// swapped justification order is also accepted
	proof[2].Justification = []string{"2", "1"}
	result = Check(proof, premises, f(t, "Q"), nil)
	assert.True(t, result.Valid, "%+v", result.Errors)
}

func TestCheck_ConditionalIntroduction(t *testing.T) {
	proof := Proof{
		step("1", f(t, "P"), RuleAssumption, 1),
		step("2", f(t, "P -> P"), RuleImpliesIntro, 0, "1"),
	}
	result := Check(proof, nil, f(t, "P -> P"), nil)
	assert.True(t, result.Valid, "%+v", result.Errors)
	assert.True(t, result.Complete)
}

func TestCheck_DisjunctionElimination(t *testing.T) {
	proof := Proof{
		step("disj", f(t, "P \\/ Q"), RuleAssumption, 0),
		step("p2", f(t, "P -> R"), RuleAssumption, 0),
		step("p3", f(t, "Q -> R"), RuleAssumption, 0),
		step("sub1", f(t, "P"), RuleAssumption, 1),
		step("sub1r", f(t, "R"), RuleImpliesElim, 1, "sub1", "p2"),
		step("sub2", f(t, "Q"), RuleAssumption, 1),
		step("sub2r", f(t, "R"), RuleImpliesElim, 1, "sub2", "p3"),
		step("final", f(t, "R"), RuleOrElim, 0, "disj", "sub1", "sub2"),
	}
	premises := []logic.Formula{f(t, "P \\/ Q"), f(t, "P -> R"), f(t, "Q -> R")}
	result := Check(proof, premises, f(t, "R"), nil)
	assert.True(t, result.Valid, "%+v", result.Errors)
	assert.True(t, result.Complete)
}

func TestCheck_AccessibilityViolation(t *testing.T) {
	proof := Proof{
		step("1", f(t, "P"), RuleAssumption, 1),
		step("2", f(t, "P"), RuleAssumption, 0), // closes subproof at depth 0
		step("3", f(t, "P"), RuleImpliesElim, 0, "1", "1"),
	}
	result := Check(proof, nil, f(t, "P"), nil)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, CodeInaccessibleJustification, result.Errors[len(result.Errors)-1].Code)
}

func TestCheck_AccessibilityDeterminism(t *testing.T) {
	proof := Proof{
		step("disj", f(t, "P \\/ Q"), RuleAssumption, 0),
		step("p2", f(t, "P -> R"), RuleAssumption, 0),
		step("p3", f(t, "Q -> R"), RuleAssumption, 0),
		step("sub1", f(t, "P"), RuleAssumption, 1),
		step("sub1r", f(t, "R"), RuleImpliesElim, 1, "sub1", "p2"),
		step("sub2", f(t, "Q"), RuleAssumption, 1),
		step("sub2r", f(t, "R"), RuleImpliesElim, 1, "sub2", "p3"),
	}
	scopes := computeScopes(proof)
	// accessibility of step 0 from step 4 should not change whether or not
	// a trailing step exists
	accBefore := accessible(scopes, 0, 4)

	truncated := proof[:len(proof)-1]
	scopesTrunc := computeScopes(truncated)
	accAfter := accessible(scopesTrunc, 0, 4)

	assert.Equal(t, accBefore, accAfter)
}

func TestCheck_AndIntroElim(t *testing.T) {
	proof := Proof{
		step("1", f(t, "P"), RuleAssumption, 0),
		step("2", f(t, "Q"), RuleAssumption, 0),
		step("3", f(t, "P & Q"), RuleAndIntro, 0, "1", "2"),
		step("4", f(t, "P"), RuleAndElimL, 0, "3"),
		step("5", f(t, "Q"), RuleAndElimR, 0, "3"),
	}
	result := Check(proof, []logic.Formula{f(t, "P"), f(t, "Q")}, f(t, "Q"), nil)
	assert.True(t, result.Valid, "%+v", result.Errors)
}

func TestCheck_NotIntroAndRAA(t *testing.T) {
	premises := []logic.Formula{f(t, "~~_|_")}

	// not_intro: assume P, derive bottom (via not_elim on a doubly-negated
	// contradiction premise), conclude ~P.
	proof := Proof{
		step("p", f(t, "~~_|_"), RuleAssumption, 0),
		step("1", f(t, "P"), RuleAssumption, 1),
		step("2", f(t, "_|_"), RuleNotElim, 1, "p"),
		step("3", f(t, "~P"), RuleNotIntro, 0, "1"),
	}
	result := Check(proof, premises, f(t, "~P"), nil)
	assert.True(t, result.Valid, "%+v", result.Errors)

	// raa: assume ~P, derive bottom the same way, conclude P.
	raaProof := Proof{
		step("p", f(t, "~~_|_"), RuleAssumption, 0),
		step("1", f(t, "~P"), RuleAssumption, 1),
		step("2", f(t, "_|_"), RuleNotElim, 1, "p"),
		step("3", f(t, "P"), RuleRAA, 0, "1"),
	}
	result = Check(raaProof, premises, f(t, "P"), nil)
	assert.True(t, result.Valid, "%+v", result.Errors)
}

func TestCheck_IffIntroElim(t *testing.T) {
	proof := Proof{
		step("1", f(t, "P -> Q"), RuleAssumption, 0),
		step("2", f(t, "Q -> P"), RuleAssumption, 0),
		step("3", f(t, "P <-> Q"), RuleIffIntro, 0, "1", "2"),
		step("4", f(t, "P"), RuleAssumption, 0),
		step("5", f(t, "Q"), RuleIffElim, 0, "3", "4"),
	}
	result := Check(proof, []logic.Formula{f(t, "P -> Q"), f(t, "Q -> P"), f(t, "P")}, f(t, "Q"), nil)
	assert.True(t, result.Valid, "%+v", result.Errors)
}

func TestCheck_NotElimDoubleNegation(t *testing.T) {
	proof := Proof{
		step("1", f(t, "~~P"), RuleAssumption, 0),
		step("2", f(t, "P"), RuleNotElim, 0, "1"),
	}
	result := Check(proof, []logic.Formula{f(t, "~~P")}, f(t, "P"), nil)
	assert.True(t, result.Valid, "%+v", result.Errors)
}

func TestCheck_BottomElim(t *testing.T) {
	proof := Proof{
		step("1", f(t, "_|_"), RuleAssumption, 0),
		step("2", f(t, "Q"), RuleBottomElim, 0, "1"),
	}
	result := Check(proof, []logic.Formula{f(t, "_|_")}, f(t, "Q"), nil)
	assert.True(t, result.Valid, "%+v", result.Errors)
}

func TestCheck_TheoremCitation(t *testing.T) {
	lib := stubLibrary{
		"lem": ProvenTheorem{ID: "lem", Name: "Excluded middle", Conclusion: f(t, "P \\/ ~P")},
	}
	proof := Proof{
		step("1", f(t, "P \\/ ~P"), RuleTheorem, 0),
	}
	proof[0].TheoremID = "lem"
	result := Check(proof, nil, f(t, "P \\/ ~P"), lib)
	assert.True(t, result.Valid, "%+v", result.Errors)

	proof[0].TheoremID = "missing"
	result = Check(proof, nil, f(t, "P \\/ ~P"), lib)
	assert.False(t, result.Valid)
	assert.Equal(t, CodeTheoremNotFound, result.Errors[0].Code)
}

func TestCheck_ArityAndUnknownRule(t *testing.T) {
	proof := Proof{
		step("1", f(t, "P"), RuleAssumption, 0),
		step("2", f(t, "P & Q"), RuleAndIntro, 0, "1"), // missing second justification
	}
	result := Check(proof, []logic.Formula{f(t, "P")}, f(t, "P & Q"), nil)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeInsufficientJustifications, result.Errors[0].Code)

	proof2 := Proof{
		step("1", f(t, "P"), Rule("made_up"), 0),
	}
	result = Check(proof2, nil, f(t, "P"), nil)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeUnknownRule, result.Errors[0].Code)
}

func TestCheck_SoundnessAgainstEntailment(t *testing.T) {
	proof := Proof{
		step("1", f(t, "P"), RuleAssumption, 0),
		step("2", f(t, "P -> Q"), RuleAssumption, 0),
		step("3", f(t, "Q"), RuleImpliesElim, 0, "1", "2"),
	}
	premises := []logic.Formula{f(t, "P"), f(t, "P -> Q")}
	conclusion := f(t, "Q")
	result := Check(proof, premises, conclusion, nil)
	require.True(t, result.Valid && result.Complete)
	assert.True(t, logic.Entails(premises, conclusion))
}

type stubLibrary map[string]ProvenTheorem

func (s stubLibrary) Theorem(id string) (ProvenTheorem, bool) {
	th, ok := s[id]
	return th, ok
}
