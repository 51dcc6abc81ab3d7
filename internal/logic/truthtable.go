package logic

import (
	"fmt"

	"github.com/dekarrin/turnstile/internal/util"
)

// MaxPracticalVariables is the guard enumeration functions consult before
// doing 2^n work. At 2^20 rows even a trivial formula evaluation starts to
// dominate wall-clock time for no benefit to a classroom-scale caller.
const MaxPracticalVariables = 20

// Variables returns the variable names referenced anywhere in f, sorted
// ascending in Unicode code-point order.
func Variables(f Formula) []string {
	set := util.NewStringSet()
	collectVars(f, set)
	return set.StringOrdered()
}

func collectVars(f Formula, set util.StringSet) {
	switch f.Kind() {
	case KindVar:
		set.Add(f.Name())
	case KindBottom:
	case KindNot:
		collectVars(f.Operand(), set)
	default:
		collectVars(f.Left(), set)
		collectVars(f.Right(), set)
	}
}

// unionVariables returns the sorted union of variable names across fs.
func unionVariables(fs ...Formula) []string {
	set := util.NewStringSet()
	for _, f := range fs {
		collectVars(f, set)
	}
	return set.StringOrdered()
}

// Row is one line of a TruthTable: one assignment of the table's variables
// plus the formula's value under it.
type Row struct {
	Inputs Assignment
	Result bool
}

// TruthTable is the full enumeration of a formula's truth values over all
// assignments to its variables.
type TruthTable struct {
	Formula        Formula
	Variables      []string
	Rows           []Row
	IsTautology    bool
	IsContradiction bool
	IsSatisfiable  bool
}

// assignmentAt builds the i-th assignment (0-based) over vars in the
// canonical enumeration order: v_j at row i is true iff bit (n-1-j) of i is
// zero. Row 0 is all-true; row 2^n-1 is all-false.
func assignmentAt(vars []string, i int) Assignment {
	n := len(vars)
	a := make(Assignment, n)
	for j, name := range vars {
		bit := n - 1 - j
		a[name] = (i>>uint(bit))&1 == 0
	}
	return a
}

// EnumerateAssignments returns all 2^len(vars) assignments over vars, in
// the canonical enumeration order used throughout this package.
func EnumerateAssignments(vars []string) []Assignment {
	n := len(vars)
	if n > MaxPracticalVariables {
		panic(fmt.Sprintf("logic: EnumerateAssignments: %d variables exceeds practical cap of %d (2^n rows)", n, MaxPracticalVariables))
	}
	total := 1 << uint(n)
	out := make([]Assignment, total)
	for i := 0; i < total; i++ {
		out[i] = assignmentAt(vars, i)
	}
	return out
}

// Table computes the full TruthTable for f.
func Table(f Formula) TruthTable {
	vars := Variables(f)
	assignments := EnumerateAssignments(vars)

	rows := make([]Row, len(assignments))
	allTrue, allFalse := true, true
	for i, a := range assignments {
		result := Eval(f, a)
		rows[i] = Row{Inputs: a, Result: result}
		if result {
			allFalse = false
		} else {
			allTrue = false
		}
	}

	return TruthTable{
		Formula:         f,
		Variables:       vars,
		Rows:            rows,
		IsTautology:     allTrue,
		IsContradiction: allFalse,
		IsSatisfiable:   !allFalse,
	}
}

// IsTautology reports whether f evaluates to true under every assignment.
func IsTautology(f Formula) bool {
	return Table(f).IsTautology
}

// IsContradiction reports whether f evaluates to false under every
// assignment.
func IsContradiction(f Formula) bool {
	return Table(f).IsContradiction
}

// IsSatisfiable reports whether some assignment makes f true.
func IsSatisfiable(f Formula) bool {
	return Table(f).IsSatisfiable
}

// Equivalent reports whether a and b evaluate identically under every
// assignment over the union of their variables.
func Equivalent(a, b Formula) bool {
	vars := unionVariables(a, b)
	for _, assignment := range EnumerateAssignments(vars) {
		if Eval(a, assignment) != Eval(b, assignment) {
			return false
		}
	}
	return true
}

// JointlySatisfiable reports whether some assignment over the union of all
// variables makes every formula in fs true. The empty list is satisfiable.
func JointlySatisfiable(fs []Formula) bool {
	if len(fs) == 0 {
		return true
	}
	vars := unionVariables(fs...)
	for _, assignment := range EnumerateAssignments(vars) {
		allTrue := true
		for _, f := range fs {
			if !Eval(f, assignment) {
				allTrue = false
				break
			}
		}
		if allTrue {
			return true
		}
	}
	return false
}

// Entails reports whether premises semantically entail conclusion: no
// assignment over the combined variables makes every premise true while
// conclusion is false.
func Entails(premises []Formula, conclusion Formula) bool {
	_, found := FindCounterexample(premises, conclusion)
	return !found
}

// FindCounterexample returns the first assignment (in canonical enumeration
// order) that makes every premise true and conclusion false, if any exists.
func FindCounterexample(premises []Formula, conclusion Formula) (Assignment, bool) {
	all := append(append([]Formula{}, premises...), conclusion)
	vars := unionVariables(all...)

	for _, assignment := range EnumerateAssignments(vars) {
		premisesHold := true
		for _, p := range premises {
			if !Eval(p, assignment) {
				premisesHold = false
				break
			}
		}
		if premisesHold && !Eval(conclusion, assignment) {
			return assignment, true
		}
	}
	return nil, false
}

// SubmissionRow is one line of a student-submitted truth table: an ordered
// assignment (following VariableOrder) plus the claimed result.
type SubmissionRow struct {
	Inputs []bool
	Result bool
}

// ValidateSubmission compares a student-submitted table (with an explicit
// variable order, which need not match the engine's canonical sort order)
// against the engine's own evaluation of f, and returns the indices (into
// rows, submitted order preserved) of rows whose claimed result disagrees
// with evaluation.
func ValidateSubmission(f Formula, variableOrder []string, rows []SubmissionRow) []int {
	var mismatches []int
	for i, row := range rows {
		assignment := make(Assignment, len(variableOrder))
		for j, name := range variableOrder {
			if j < len(row.Inputs) {
				assignment[name] = row.Inputs[j]
			}
		}
		if Eval(f, assignment) != row.Result {
			mismatches = append(mismatches, i)
		}
	}
	return mismatches
}
