package proof

import (
	"fmt"

	"github.com/dekarrin/turnstile/internal/logic"
)

// Check validates steps against premises and conclusion, consulting lib
// (which may be nil) for theorem citations. It never aborts early: every
// step is checked and at most one error per step is recorded, per §4.5.5.
func Check(steps Proof, premises []logic.Formula, conclusion logic.Formula, lib Library) ProofCheckResult {
	if len(steps) == 0 {
		return ProofCheckResult{
			Valid:    false,
			Complete: false,
			Errors:   []ValidationError{{StepID: "", Message: "proof has no steps", Code: CodeEmptyProof}},
		}
	}

	scopes := computeScopes(steps)
	idIndex := make(map[string]int, len(steps))
	for i, s := range steps {
		idIndex[s.ID] = i
	}

	var errs []ValidationError
	for i := range steps {
		if err := validateStep(steps, i, premises, lib, scopes, idIndex); err != nil {
			errs = append(errs, *err)
		}
	}

	last := steps[len(steps)-1]
	complete := last.Depth == 0 && last.Formula.Equal(conclusion)

	return ProofCheckResult{
		Valid:    len(errs) == 0,
		Complete: complete,
		Errors:   errs,
	}
}

// resolveReference resolves a justification id cited from step c, checking
// both existence and accessibility. Returns the referenced step's index.
func resolveReference(idIndex map[string]int, scopes []scope, id string, c int) (int, *ValidationError) {
	t, ok := idIndex[id]
	if !ok || t >= c {
		return 0, &ValidationError{Message: fmt.Sprintf("justification %q does not refer to an earlier step", id), Code: CodeJustificationNotFound}
	}
	if !accessible(scopes, t, c) {
		return 0, &ValidationError{Message: fmt.Sprintf("step %q is not accessible here", id), Code: CodeInaccessibleJustification}
	}
	return t, nil
}

// resolveSubproof resolves a subproof-handle justification, returning the
// scope it opens along with its assumption and last-line formulas.
//
// A handle citation is not an ordinary step reference: the subproof it
// names is, by construction, already closed by the time anything outside
// it can cite it, so checking accessibility of the assumption line itself
// (as resolveReference would) always fails. What must be accessible is
// the subproof's surrounding context: every scope that encloses the
// subproof (but is not the subproof itself) must also enclose c.
func resolveSubproof(idIndex map[string]int, scopes []scope, steps []ProofStep, id string, c int) (assumption, last logic.Formula, ok bool, verr *ValidationError) {
	t, found := idIndex[id]
	if !found || t >= c {
		return logic.Formula{}, logic.Formula{}, false, &ValidationError{Message: fmt.Sprintf("justification %q does not refer to an earlier step", id), Code: CodeJustificationNotFound}
	}
	s, found := scopeForHandle(scopes, steps, id)
	if !found || s.StartIndex != t {
		return logic.Formula{}, logic.Formula{}, false, &ValidationError{Message: fmt.Sprintf("%q does not open a subproof", id), Code: CodeInvalidSubproof}
	}
	for _, anc := range scopes {
		if anc == s {
			continue
		}
		if anc.contains(s.StartIndex) && !anc.contains(c) {
			return logic.Formula{}, logic.Formula{}, false, &ValidationError{Message: fmt.Sprintf("subproof %q is not accessible here", id), Code: CodeInaccessibleJustification}
		}
	}
	return steps[s.StartIndex].Formula, steps[s.SubproofEnd].Formula, true, nil
}

func validateStep(steps []ProofStep, i int, premises []logic.Formula, lib Library, scopes []scope, idIndex map[string]int) *ValidationError {
	step := steps[i]

	if step.Rule == RuleAssumption {
		return nil
	}

	if step.Rule == RuleTheorem {
		return validateTheorem(step, lib)
	}

	n, known := arity[step.Rule]
	if !known {
		return &ValidationError{StepID: step.ID, Message: fmt.Sprintf("unknown rule %q", step.Rule), Code: CodeUnknownRule}
	}
	if len(step.Justification) < n {
		return &ValidationError{StepID: step.ID, Message: "too few justifications", Code: CodeInsufficientJustifications}
	}
	if len(step.Justification) > n {
		return &ValidationError{StepID: step.ID, Message: "too many justifications", Code: CodeTooManyJustifications}
	}

	switch step.Rule {
	case RuleAndIntro:
		return validateAndIntro(steps, i, idIndex, scopes)
	case RuleAndElimL:
		return validateAndElim(steps, i, idIndex, scopes, true)
	case RuleAndElimR:
		return validateAndElim(steps, i, idIndex, scopes, false)
	case RuleOrIntroL:
		return validateOrIntro(steps, i, idIndex, scopes, true)
	case RuleOrIntroR:
		return validateOrIntro(steps, i, idIndex, scopes, false)
	case RuleOrElim:
		return validateOrElim(steps, i, idIndex, scopes)
	case RuleImpliesIntro:
		return validateImpliesIntro(steps, i, idIndex, scopes)
	case RuleImpliesElim:
		return validateImpliesElim(steps, i, idIndex, scopes)
	case RuleNotIntro:
		return validateNotIntro(steps, i, idIndex, scopes)
	case RuleNotElim:
		return validateNotElim(steps, i, idIndex, scopes)
	case RuleIffIntro:
		return validateIffIntro(steps, i, idIndex, scopes)
	case RuleIffElim:
		return validateIffElim(steps, i, idIndex, scopes)
	case RuleBottomElim:
		return validateBottomElim(steps, i, idIndex, scopes)
	case RuleRAA:
		return validateRAA(steps, i, idIndex, scopes)
	}

	return &ValidationError{StepID: step.ID, Message: fmt.Sprintf("unknown rule %q", step.Rule), Code: CodeUnknownRule}
}

func validateTheorem(step ProofStep, lib Library) *ValidationError {
	if step.TheoremID == "" {
		return &ValidationError{StepID: step.ID, Message: "theorem step has no theorem id", Code: CodeMissingTheoremID}
	}
	if lib == nil {
		return &ValidationError{StepID: step.ID, Message: fmt.Sprintf("theorem %q not found", step.TheoremID), Code: CodeTheoremNotFound}
	}
	th, ok := lib.Theorem(step.TheoremID)
	if !ok {
		return &ValidationError{StepID: step.ID, Message: fmt.Sprintf("theorem %q not found", step.TheoremID), Code: CodeTheoremNotFound}
	}
	if !step.Formula.Equal(th.Conclusion) {
		return &ValidationError{StepID: step.ID, Message: "step formula does not match cited theorem's conclusion", Code: CodeTheoremMismatch}
	}
	return nil
}

func ref(steps []ProofStep, idIndex map[string]int, scopes []scope, id string, c int) (logic.Formula, *ValidationError) {
	t, err := resolveReference(idIndex, scopes, id, c)
	if err != nil {
		return logic.Formula{}, err
	}
	return steps[t].Formula, nil
}

func validateAndIntro(steps []ProofStep, i int, idIndex map[string]int, scopes []scope) *ValidationError {
	step := steps[i]
	j1, err := ref(steps, idIndex, scopes, step.Justification[0], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	j2, err := ref(steps, idIndex, scopes, step.Justification[1], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	if step.Formula.Kind() != logic.KindAnd {
		return &ValidationError{StepID: step.ID, Message: "and_intro must conclude a conjunction", Code: CodeWrongConclusionType}
	}
	if !step.Formula.Left().Equal(j1) || !step.Formula.Right().Equal(j2) {
		return &ValidationError{StepID: step.ID, Message: "and_intro conclusion does not match its justifications", Code: CodeConclusionMismatch}
	}
	return nil
}

func validateAndElim(steps []ProofStep, i int, idIndex map[string]int, scopes []scope, left bool) *ValidationError {
	step := steps[i]
	j1, err := ref(steps, idIndex, scopes, step.Justification[0], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	if j1.Kind() != logic.KindAnd {
		return &ValidationError{StepID: step.ID, Message: "and_elim requires a conjunction justification", Code: CodeWrongPremiseType}
	}
	want := j1.Right()
	if left {
		want = j1.Left()
	}
	if !step.Formula.Equal(want) {
		return &ValidationError{StepID: step.ID, Message: "and_elim conclusion does not match the cited conjunct", Code: CodeConclusionMismatch}
	}
	return nil
}

func validateOrIntro(steps []ProofStep, i int, idIndex map[string]int, scopes []scope, left bool) *ValidationError {
	step := steps[i]
	j1, err := ref(steps, idIndex, scopes, step.Justification[0], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	if step.Formula.Kind() != logic.KindOr {
		return &ValidationError{StepID: step.ID, Message: "or_intro must conclude a disjunction", Code: CodeWrongConclusionType}
	}
	want := step.Formula.Right()
	if left {
		want = step.Formula.Left()
	}
	if !want.Equal(j1) {
		return &ValidationError{StepID: step.ID, Message: "or_intro conclusion does not match its justification", Code: CodeConclusionMismatch}
	}
	return nil
}

func validateOrElim(steps []ProofStep, i int, idIndex map[string]int, scopes []scope) *ValidationError {
	step := steps[i]
	disj, err := ref(steps, idIndex, scopes, step.Justification[0], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	if disj.Kind() != logic.KindOr {
		return &ValidationError{StepID: step.ID, Message: "or_elim requires a disjunction justification", Code: CodeWrongPremiseType}
	}

	a1, l1, ok1, err := resolveSubproof(idIndex, scopes, steps, step.Justification[1], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	a2, l2, ok2, err := resolveSubproof(idIndex, scopes, steps, step.Justification[2], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	if !ok1 || !ok2 {
		return &ValidationError{StepID: step.ID, Message: "or_elim subproof handles did not resolve", Code: CodeInvalidSubproof}
	}

	left, right := disj.Left(), disj.Right()
	matches := (a1.Equal(left) && a2.Equal(right)) || (a1.Equal(right) && a2.Equal(left))
	if !matches {
		return &ValidationError{StepID: step.ID, Message: "or_elim subproofs do not assume the two disjuncts", Code: CodeSubproofMismatch}
	}
	if !l1.Equal(step.Formula) || !l2.Equal(step.Formula) {
		return &ValidationError{StepID: step.ID, Message: "or_elim subproofs do not both conclude the target formula", Code: CodeSubproofConclusionMismatch}
	}
	return nil
}

func validateImpliesIntro(steps []ProofStep, i int, idIndex map[string]int, scopes []scope) *ValidationError {
	step := steps[i]
	if step.Formula.Kind() != logic.KindImplies {
		return &ValidationError{StepID: step.ID, Message: "implies_intro must conclude a conditional", Code: CodeWrongConclusionType}
	}
	a, last, ok, err := resolveSubproof(idIndex, scopes, steps, step.Justification[0], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	if !ok {
		return &ValidationError{StepID: step.ID, Message: "implies_intro justification is not a subproof", Code: CodeInvalidSubproof}
	}
	if !a.Equal(step.Formula.Left()) {
		return &ValidationError{StepID: step.ID, Message: "subproof does not assume the conditional's antecedent", Code: CodeSubproofMismatch}
	}
	if !last.Equal(step.Formula.Right()) {
		return &ValidationError{StepID: step.ID, Message: "subproof does not conclude the conditional's consequent", Code: CodeSubproofConclusionMismatch}
	}
	return nil
}

func validateImpliesElim(steps []ProofStep, i int, idIndex map[string]int, scopes []scope) *ValidationError {
	step := steps[i]
	j1, err := ref(steps, idIndex, scopes, step.Justification[0], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	j2, err := ref(steps, idIndex, scopes, step.Justification[1], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}

	if j1.Kind() != logic.KindImplies && j2.Kind() != logic.KindImplies {
		return &ValidationError{StepID: step.ID, Message: "implies_elim requires a conditional among its justifications", Code: CodeWrongPremiseType}
	}

	if j1.Kind() == logic.KindImplies && j1.Left().Equal(j2) && j1.Right().Equal(step.Formula) {
		return nil
	}
	if j2.Kind() == logic.KindImplies && j2.Left().Equal(j1) && j2.Right().Equal(step.Formula) {
		return nil
	}
	return &ValidationError{StepID: step.ID, Message: "implies_elim justifications do not license the conclusion", Code: CodeInvalidJustification}
}

func validateNotIntro(steps []ProofStep, i int, idIndex map[string]int, scopes []scope) *ValidationError {
	step := steps[i]
	if step.Formula.Kind() != logic.KindNot {
		return &ValidationError{StepID: step.ID, Message: "not_intro must conclude a negation", Code: CodeWrongConclusionType}
	}
	a, last, ok, err := resolveSubproof(idIndex, scopes, steps, step.Justification[0], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	if !ok {
		return &ValidationError{StepID: step.ID, Message: "not_intro justification is not a subproof", Code: CodeInvalidSubproof}
	}
	if !a.Equal(step.Formula.Operand()) {
		return &ValidationError{StepID: step.ID, Message: "subproof does not assume the negated formula", Code: CodeSubproofMismatch}
	}
	if last.Kind() != logic.KindBottom {
		return &ValidationError{StepID: step.ID, Message: "subproof does not derive a contradiction", Code: CodeSubproofConclusionMismatch}
	}
	return nil
}

func validateNotElim(steps []ProofStep, i int, idIndex map[string]int, scopes []scope) *ValidationError {
	step := steps[i]
	j1, err := ref(steps, idIndex, scopes, step.Justification[0], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	if j1.Kind() != logic.KindNot || j1.Operand().Kind() != logic.KindNot {
		return &ValidationError{StepID: step.ID, Message: "not_elim requires a double negation justification", Code: CodeWrongPremiseType}
	}
	if !j1.Operand().Operand().Equal(step.Formula) {
		return &ValidationError{StepID: step.ID, Message: "not_elim conclusion does not match the doubly-negated formula", Code: CodeConclusionMismatch}
	}
	return nil
}

func validateIffIntro(steps []ProofStep, i int, idIndex map[string]int, scopes []scope) *ValidationError {
	step := steps[i]
	if step.Formula.Kind() != logic.KindIff {
		return &ValidationError{StepID: step.ID, Message: "iff_intro must conclude a biconditional", Code: CodeWrongConclusionType}
	}
	a, b := step.Formula.Left(), step.Formula.Right()
	j1, err := ref(steps, idIndex, scopes, step.Justification[0], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	j2, err := ref(steps, idIndex, scopes, step.Justification[1], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	want1 := logic.Implies(a, b)
	want2 := logic.Implies(b, a)
	if (j1.Equal(want1) && j2.Equal(want2)) || (j1.Equal(want2) && j2.Equal(want1)) {
		return nil
	}
	return &ValidationError{StepID: step.ID, Message: "iff_intro requires both directional conditionals", Code: CodeInvalidJustification}
}

func validateIffElim(steps []ProofStep, i int, idIndex map[string]int, scopes []scope) *ValidationError {
	step := steps[i]
	j1, err := ref(steps, idIndex, scopes, step.Justification[0], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	j2, err := ref(steps, idIndex, scopes, step.Justification[1], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}

	var biconditional, given logic.Formula
	switch {
	case j1.Kind() == logic.KindIff:
		biconditional, given = j1, j2
	case j2.Kind() == logic.KindIff:
		biconditional, given = j2, j1
	default:
		return &ValidationError{StepID: step.ID, Message: "iff_elim requires a biconditional among its justifications", Code: CodeWrongPremiseType}
	}

	a, b := biconditional.Left(), biconditional.Right()
	if given.Equal(a) && step.Formula.Equal(b) {
		return nil
	}
	if given.Equal(b) && step.Formula.Equal(a) {
		return nil
	}
	return &ValidationError{StepID: step.ID, Message: "iff_elim justifications do not license the conclusion", Code: CodeInvalidJustification}
}

func validateBottomElim(steps []ProofStep, i int, idIndex map[string]int, scopes []scope) *ValidationError {
	step := steps[i]
	j1, err := ref(steps, idIndex, scopes, step.Justification[0], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	if j1.Kind() != logic.KindBottom {
		return &ValidationError{StepID: step.ID, Message: "bottom_elim requires a contradiction justification", Code: CodeWrongPremiseType}
	}
	return nil
}

func validateRAA(steps []ProofStep, i int, idIndex map[string]int, scopes []scope) *ValidationError {
	step := steps[i]
	a, last, ok, err := resolveSubproof(idIndex, scopes, steps, step.Justification[0], i)
	if err != nil {
		err.StepID = step.ID
		return err
	}
	if !ok {
		return &ValidationError{StepID: step.ID, Message: "raa justification is not a subproof", Code: CodeInvalidSubproof}
	}
	if !a.Equal(logic.Not(step.Formula)) {
		return &ValidationError{StepID: step.ID, Message: "subproof does not assume the negation of the conclusion", Code: CodeSubproofMismatch}
	}
	if last.Kind() != logic.KindBottom {
		return &ValidationError{StepID: step.ID, Message: "subproof does not derive a contradiction", Code: CodeSubproofConclusionMismatch}
	}
	return nil
}
