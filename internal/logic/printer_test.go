package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint_PrecedenceExamples(t *testing.T) {
	f := Or(Var("P"), And(Var("Q"), Var("R")))
	assert.Equal(t, "P ∨ Q ∧ R", Print(f, ModeUTF8))

	f = Implies(Implies(Var("P"), Var("Q")), Var("R"))
	assert.Equal(t, "(P → Q) → R", Print(f, ModeUTF8))
}

func TestPrint_LeftAssociativeOmitsParens(t *testing.T) {
	f := And(And(Var("A"), Var("B")), Var("C"))
	assert.Equal(t, "A ∧ B ∧ C", Print(f, ModeUTF8))
}

func TestPrint_ImpliesRightAssociativeFlat(t *testing.T) {
	f := Implies(Var("A"), Implies(Var("B"), Var("C")))
	assert.Equal(t, "A → B → C", Print(f, ModeUTF8))
}

func TestPrint_ASCIIMode(t *testing.T) {
	f := Implies(And(Var("P"), Var("Q")), Not(Var("R")))
	assert.Equal(t, "P /\\ Q -> ~R", Print(f, ModeASCII))
}

func TestPrint_RoundTrip(t *testing.T) {
	formulas := []Formula{
		Var("P"),
		Bottom(),
		Not(Var("P")),
		Not(Not(Var("P"))),
		And(Var("P"), Var("Q")),
		Or(Var("P"), And(Var("Q"), Var("R"))),
		Implies(Implies(Var("P"), Var("Q")), Var("R")),
		Implies(Var("P"), Implies(Var("Q"), Var("R"))),
		Iff(Or(Var("A"), Var("B")), And(Var("C"), Var("D"))),
		And(And(Var("A"), Var("B")), Or(Var("C"), Var("D"))),
	}

	for _, f := range formulas {
		for _, m := range []Mode{ModeASCII, ModeUTF8} {
			printed := Print(f, m)
			reparsed, err := Parse(printed)
			require.Nil(t, err, "round-trip parse failed for %q: %v", printed, err)
			assert.True(t, f.Equal(reparsed), "round-trip mismatch: printed %q reparsed to %s, want %s", printed, reparsed, f)
		}
	}
}

func TestPrintSequent(t *testing.T) {
	seq := PrintSequent([]Formula{Var("P"), Implies(Var("P"), Var("Q"))}, Var("Q"), ModeUTF8)
	assert.Equal(t, "P, P → Q ⊢ Q", seq)

	seq = PrintSequent(nil, Var("Q"), ModeASCII)
	assert.Equal(t, " |- Q", seq)
}
