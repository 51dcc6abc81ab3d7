package util

import (
	"sort"
	"strings"
)

// StringSet is an unordered collection of unique strings, used by the
// truth-table engine to collect variable names before sorting them.
type StringSet map[string]bool

// NewStringSet returns a StringSet containing the given initial elements.
func NewStringSet(initial ...string) StringSet {
	s := make(StringSet)
	for _, v := range initial {
		s.Add(v)
	}
	return s
}

// Add adds element to the set. No effect if already present.
func (s StringSet) Add(element string) {
	s[element] = true
}

// Has returns whether element is in the set.
func (s StringSet) Has(element string) bool {
	return s[element]
}

// Len returns the number of elements in the set.
func (s StringSet) Len() int {
	return len(s)
}

// Elements returns the set's members in unspecified order.
func (s StringSet) Elements() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

// StringOrdered returns the set's members sorted ascending in Unicode
// code-point order, comma-separated.
func (s StringSet) StringOrdered() []string {
	out := s.Elements()
	sort.Strings(out)
	return out
}

// String renders the set in sorted order, e.g. "{P, Q, R}".
func (s StringSet) String() string {
	return "{" + strings.Join(s.StringOrdered(), ", ") + "}"
}
