// Package proof implements the natural-deduction proof checker: a flat
// list of steps, checked against a set of premises and a goal conclusion
// in Kalish-Montague / Fitch style with nested subproofs.
package proof

import "github.com/dekarrin/turnstile/internal/logic"

// Rule is the wire name of an inference rule cited by a ProofStep.
type Rule string

// The full, fixed vocabulary of inference rules this checker understands.
// These strings are stable wire identifiers; do not rename them.
const (
	RuleAssumption   Rule = "assumption"
	RuleAndIntro     Rule = "and_intro"
	RuleAndElimL     Rule = "and_elim_l"
	RuleAndElimR     Rule = "and_elim_r"
	RuleOrIntroL     Rule = "or_intro_l"
	RuleOrIntroR     Rule = "or_intro_r"
	RuleOrElim       Rule = "or_elim"
	RuleImpliesIntro Rule = "implies_intro"
	RuleImpliesElim  Rule = "implies_elim"
	RuleNotIntro     Rule = "not_intro"
	RuleNotElim      Rule = "not_elim"
	RuleIffIntro     Rule = "iff_intro"
	RuleIffElim      Rule = "iff_elim"
	RuleBottomElim   Rule = "bottom_elim"
	RuleRAA          Rule = "raa"
	RuleTheorem      Rule = "theorem"
)

// arity holds the fixed justification count for every rule that isn't
// handled by a special case (assumption, theorem) in validateStep.
var arity = map[Rule]int{
	RuleAndIntro:     2,
	RuleAndElimL:     1,
	RuleAndElimR:     1,
	RuleOrIntroL:     1,
	RuleOrIntroR:     1,
	RuleOrElim:       3,
	RuleImpliesIntro: 1,
	RuleImpliesElim:  2,
	RuleNotIntro:     1,
	RuleNotElim:      1,
	RuleIffIntro:     2,
	RuleIffElim:      2,
	RuleBottomElim:   1,
	RuleRAA:          1,
}

// knownRules reports whether r is one of the 16 enumerated tags.
func knownRule(r Rule) bool {
	switch r {
	case RuleAssumption, RuleAndIntro, RuleAndElimL, RuleAndElimR,
		RuleOrIntroL, RuleOrIntroR, RuleOrElim, RuleImpliesIntro,
		RuleImpliesElim, RuleNotIntro, RuleNotElim, RuleIffIntro,
		RuleIffElim, RuleBottomElim, RuleRAA, RuleTheorem:
		return true
	}
	return false
}

// ProofStep is one line of a Fitch-style proof.
type ProofStep struct {
	ID            string
	Formula       logic.Formula
	Rule          Rule
	Justification []string
	Depth         int
	TheoremID     string // empty unless Rule == RuleTheorem
}

// Proof is an ordered sequence of steps. Subproof boundaries are not
// stored explicitly; they are inferred from Depth transitions (§4.5.1).
type Proof []ProofStep

// ProvenTheorem is a named, already-established result a proof may cite
// via RuleTheorem.
type ProvenTheorem struct {
	ID         string
	Name       string
	Premises   []logic.Formula
	Conclusion logic.Formula
}

// Library resolves theorem IDs cited by RuleTheorem steps.
type Library interface {
	Theorem(id string) (ProvenTheorem, bool)
}

// Error codes, stable wire identifiers emitted by the checker.
const (
	CodeEmptyProof                   = "EMPTY_PROOF"
	CodeInsufficientJustifications   = "INSUFFICIENT_JUSTIFICATIONS"
	CodeTooManyJustifications        = "TOO_MANY_JUSTIFICATIONS"
	CodeJustificationNotFound        = "JUSTIFICATION_NOT_FOUND"
	CodeInaccessibleJustification    = "INACCESSIBLE_JUSTIFICATION"
	CodeWrongPremiseType             = "WRONG_PREMISE_TYPE"
	CodeWrongConclusionType          = "WRONG_CONCLUSION_TYPE"
	CodeConclusionMismatch           = "CONCLUSION_MISMATCH"
	CodeInvalidSubproof              = "INVALID_SUBPROOF"
	CodeSubproofMismatch             = "SUBPROOF_MISMATCH"
	CodeSubproofConclusionMismatch   = "SUBPROOF_CONCLUSION_MISMATCH"
	CodeInvalidJustification         = "INVALID_JUSTIFICATION"
	CodeMissingTheoremID             = "MISSING_THEOREM_ID"
	CodeTheoremNotFound              = "THEOREM_NOT_FOUND"
	CodeTheoremMismatch              = "THEOREM_MISMATCH"
	CodeUnknownRule                  = "UNKNOWN_RULE"
)

// ValidationError reports why a single step failed to check. A step
// produces at most one of these per Check invocation.
type ValidationError struct {
	StepID  string
	Message string
	Code    string
}

// ProofCheckResult is the total, accumulated outcome of checking a Proof.
type ProofCheckResult struct {
	Valid      bool
	Complete   bool
	Errors     []ValidationError
}
