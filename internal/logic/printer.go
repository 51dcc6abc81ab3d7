package logic

import "strings"

// Mode selects which lexeme table Print renders operators with.
type Mode int

const (
	ModeASCII Mode = iota
	ModeUTF8
)

// precedence ranks, higher binds tighter. Carried as float64 so the
// ε-bias technique below can nudge a side's effective precedence by a
// fractional amount without colliding with any real rank.
const (
	precIff     = 1.0
	precImplies = 2.0
	precOr      = 3.0
	precAnd     = 4.0
	precNot     = 5.0
	precAtom    = 6.0
	bias        = 0.5
)

func precedenceOf(f Formula) float64 {
	switch f.Kind() {
	case KindIff:
		return precIff
	case KindImplies:
		return precImplies
	case KindOr:
		return precOr
	case KindAnd:
		return precAnd
	case KindNot:
		return precNot
	default:
		return precAtom
	}
}

type opStrings struct {
	not, and, or, implies, iff, bottom string
}

var asciiOps = opStrings{not: "~", and: "/\\", or: "\\/", implies: "->", iff: "<->", bottom: "_|_"}
var utf8Ops = opStrings{not: "¬", and: "∧", or: "∨", implies: "→", iff: "↔", bottom: "⊥"}

func opsFor(m Mode) opStrings {
	if m == ModeUTF8 {
		return utf8Ops
	}
	return asciiOps
}

// Print renders f to its minimal-parenthesization surface syntax in the
// requested Mode. parse(Print(f, m)) always reparses to a formula
// structurally equal to f.
func Print(f Formula, m Mode) string {
	var sb strings.Builder
	printRec(&sb, f, 0, opsFor(m))
	return sb.String()
}

// printRec writes f into sb, wrapping it in parentheses when its own
// precedence is strictly lower than parentPrec (the precedence context
// imposed by the caller, possibly ε-biased for associativity).
func printRec(sb *strings.Builder, f Formula, parentPrec float64, ops opStrings) {
	own := precedenceOf(f)
	wrap := own < parentPrec
	if wrap {
		sb.WriteByte('(')
	}

	switch f.Kind() {
	case KindVar:
		sb.WriteString(f.Name())
	case KindBottom:
		sb.WriteString(ops.bottom)
	case KindNot:
		sb.WriteString(ops.not)
		printRec(sb, f.Operand(), precNot, ops)
	case KindAnd:
		printRec(sb, f.Left(), precAnd, ops)
		sb.WriteByte(' ')
		sb.WriteString(ops.and)
		sb.WriteByte(' ')
		printRec(sb, f.Right(), precAnd+bias, ops)
	case KindOr:
		printRec(sb, f.Left(), precOr, ops)
		sb.WriteByte(' ')
		sb.WriteString(ops.or)
		sb.WriteByte(' ')
		printRec(sb, f.Right(), precOr+bias, ops)
	case KindImplies:
		// right-associative: bias the LEFT child instead of the right.
		printRec(sb, f.Left(), precImplies+bias, ops)
		sb.WriteByte(' ')
		sb.WriteString(ops.implies)
		sb.WriteByte(' ')
		printRec(sb, f.Right(), precImplies, ops)
	case KindIff:
		printRec(sb, f.Left(), precIff, ops)
		sb.WriteByte(' ')
		sb.WriteString(ops.iff)
		sb.WriteByte(' ')
		printRec(sb, f.Right(), precIff+bias, ops)
	}

	if wrap {
		sb.WriteByte(')')
	}
}

// PrintSequent renders the sequent premises ⊢ conclusion (or premises |-
// conclusion in ASCII mode). With zero premises, only the turnstile and
// conclusion are printed, with a leading space where the premises list
// would otherwise go.
func PrintSequent(premises []Formula, conclusion Formula, m Mode) string {
	var sb strings.Builder
	turnstile := "⊢"
	if m == ModeASCII {
		turnstile = "|-"
	}

	if len(premises) == 0 {
		sb.WriteByte(' ')
	} else {
		parts := make([]string, len(premises))
		for i, p := range premises {
			parts[i] = Print(p, m)
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteByte(' ')
	}

	sb.WriteString(turnstile)
	sb.WriteByte(' ')
	sb.WriteString(Print(conclusion, m))

	return sb.String()
}
