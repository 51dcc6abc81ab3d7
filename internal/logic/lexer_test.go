package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexer_ASCIIAndUTF8Interchangeable(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{"ascii operators", "P & Q | ~R -> S <-> _|_", []TokenType{
			TokenVar, TokenAnd, TokenVar, TokenOr, TokenNot, TokenVar,
			TokenImplies, TokenVar, TokenIff, TokenBottom, TokenEOF,
		}},
		{"utf8 operators", "P ∧ Q ∨ ¬R → S ↔ ⊥", []TokenType{
			TokenVar, TokenAnd, TokenVar, TokenOr, TokenNot, TokenVar,
			TokenImplies, TokenVar, TokenIff, TokenBottom, TokenEOF,
		}},
		{"mixed ascii slash digraphs", "P /\\ Q \\/ R", []TokenType{
			TokenVar, TokenAnd, TokenVar, TokenOr, TokenVar, TokenEOF,
		}},
		{"parens", "(P)", []TokenType{TokenLParen, TokenVar, TokenRParen, TokenEOF}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks := Tokens(tc.input)
			got := make([]TokenType, len(toks))
			for i, tok := range toks {
				got[i] = tok.Type
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLexer_IdentifierMaximalMunch(t *testing.T) {
	toks := Tokens("Foo123Bar")
	assert.Len(t, toks, 2)
	assert.Equal(t, TokenVar, toks[0].Type)
	assert.Equal(t, "Foo123Bar", toks[0].Value)
}

func TestLexer_PositionsAreZeroBasedByteOffsets(t *testing.T) {
	toks := Tokens("P -> Q")
	assert.Equal(t, 0, toks[0].Position)  // P
	assert.Equal(t, 2, toks[1].Position)  // ->
	assert.Equal(t, 5, toks[2].Position)  // Q
	assert.Equal(t, 6, toks[3].Position) // EOF
}

func TestLexer_UnrecognizedRuneBecomesVar(t *testing.T) {
	toks := Tokens("P ! Q")
	assert.Equal(t, TokenVar, toks[1].Type)
	assert.Equal(t, "!", toks[1].Value)
}

func TestLexer_NeverFails(t *testing.T) {
	// the lexer has no failure mode at all; garbage input still produces a
	// token stream terminated by EOF.
	toks := Tokens("@#$%^  ")
	assert.NotEmpty(t, toks)
	assert.Equal(t, TokenEOF, toks[len(toks)-1].Type)
}
