package proof

// scope is a contiguous block of steps opened by an assumption and closed
// when control returns to a shallower (or sibling) depth. StartIndex is
// the index of the opening assumption step itself; SubproofEnd is the
// index of the subproof's last step, inclusive.
type scope struct {
	StartIndex  int
	Depth       int
	SubproofEnd int
}

// contains reports whether index i falls within the scope's interval.
func (s scope) contains(i int) bool {
	return i >= s.StartIndex && i <= s.SubproofEnd
}

// computeScopes walks steps in order and returns every subproof scope
// opened during the proof, per §4.5.1. Scopes still open at the end of
// the proof are closed at the final index.
func computeScopes(steps []ProofStep) []scope {
	var open []scope
	var closed []scope

	closeDeeperThan := func(d, at int) {
		kept := open[:0]
		for _, s := range open {
			if s.Depth > d {
				s.SubproofEnd = at
				closed = append(closed, s)
			} else {
				kept = append(kept, s)
			}
		}
		open = kept
	}

	prevDepth := 0
	for i, step := range steps {
		d := step.Depth
		if i == 0 {
			prevDepth = d
		}

		// Returning to a shallower depth closes every deeper scope.
		closeDeeperThan(d, i-1)

		opensNew := step.Rule == RuleAssumption && (d > prevDepth || (d > 0 && d == prevDepth))
		if opensNew {
			// A new sibling subproof at the same depth closes the
			// previous occupant of that depth first.
			if d == prevDepth && d > 0 && len(open) > 0 && open[len(open)-1].Depth == d {
				s := open[len(open)-1]
				s.SubproofEnd = i - 1
				closed = append(closed, s)
				open = open[:len(open)-1]
			}
			open = append(open, scope{StartIndex: i, Depth: d})
		}

		prevDepth = d
	}

	lastIndex := len(steps) - 1
	for _, s := range open {
		s.SubproofEnd = lastIndex
		closed = append(closed, s)
	}

	return closed
}

// enclosingScopes returns every scope (from all) that contains index i,
// in no particular order.
func enclosingScopes(all []scope, i int) []scope {
	var out []scope
	for _, s := range all {
		if s.contains(i) {
			out = append(out, s)
		}
	}
	return out
}

// accessible implements §4.5.2: a step at index t is accessible from a
// step at index c iff every subproof containing t also contains c.
func accessible(all []scope, t, c int) bool {
	for _, s := range enclosingScopes(all, t) {
		if !s.contains(c) {
			return false
		}
	}
	return true
}

// scopeForHandle resolves a subproof handle (the id of the assumption
// step that opens it) to its scope.
func scopeForHandle(all []scope, steps []ProofStep, handle string) (scope, bool) {
	for _, s := range all {
		if steps[s.StartIndex].ID == handle {
			return s, true
		}
	}
	return scope{}, false
}
