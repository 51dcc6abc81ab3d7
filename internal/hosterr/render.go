package hosterr

import (
	"fmt"

	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/internal/proof"
)

// FromParseError renders a logic.ParseError for display, quoting the
// offending source around its position.
func FromParseError(src string, perr *logic.ParseError) error {
	if perr == nil {
		return nil
	}
	snippet := src
	if perr.Position >= 0 && perr.Position <= len(src) {
		start := perr.Position - 10
		if start < 0 {
			start = 0
		}
		end := perr.Position + 10
		if end > len(src) {
			end = len(src)
		}
		snippet = src[start:end]
	}
	return WrapEditorf(perr, "couldn't read that formula: %s (near %q)", perr.Message, snippet)
}

// lineLookup maps a ProofStep's opaque ID to the 1-based line number the
// host layer displays it as. The engine itself has no concept of line
// numbers (§7: "concrete line numbers ... supplied by the host layer").
type lineLookup func(stepID string) (line int, ok bool)

// FromValidationError renders a proof.ValidationError for display,
// including the offending step's line number (via lines) and its
// formula rendered through the printer rather than the engine's debug
// String().
func FromValidationError(steps proof.Proof, lines lineLookup, verr proof.ValidationError) error {
	var formula logic.Formula
	found := false
	for _, s := range steps {
		if s.ID == verr.StepID {
			formula = s.Formula
			found = true
			break
		}
	}

	line, hasLine := 0, false
	if lines != nil {
		line, hasLine = lines(verr.StepID)
	}

	var where string
	switch {
	case hasLine:
		where = fmt.Sprintf("line %d", line)
	case found:
		where = fmt.Sprintf("step %s", verr.StepID)
	default:
		where = "the proof"
	}

	if found {
		return Editorf("%s: %s (%s) — %s", where, verr.Message, verr.Code, logic.Print(formula, logic.ModeUTF8))
	}
	return Editorf("%s: %s (%s)", where, verr.Message, verr.Code)
}
