package tunas

import (
	"context"

	"github.com/dekarrin/turnstile/internal/library"
	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/internal/proof"
	"github.com/dekarrin/turnstile/server/dao"
	"github.com/dekarrin/turnstile/server/serr"
)

// ParseFormula parses src into a Formula. Returns a *logic.ParseError (not
// wrapped in serr, since the position/message pair is meant to be surfaced
// to the caller directly) if src is not well-formed.
func (svc Service) ParseFormula(src string) (logic.Formula, *logic.ParseError) {
	return logic.Parse(src)
}

// PrintFormula renders f back to its surface syntax in the given mode.
func (svc Service) PrintFormula(f logic.Formula, mode logic.Mode) string {
	return logic.Print(f, mode)
}

// Table computes the full truth table for f.
func (svc Service) Table(f logic.Formula) logic.TruthTable {
	return logic.Table(f)
}

// combinedLibrary resolves theorems first from a bundled TOML library, then
// from server-persisted records, so runtime-added theorems can shadow
// nothing but also never need to duplicate the bundle.
type combinedLibrary struct {
	static  *library.Library
	records []dao.TheoremRecord
}

// dbTheoremLibrary builds a proof.Library view over svc's persisted theorem
// records, falling back to the bundled TOML library (if any) for IDs it
// does not have.
func (svc Service) dbTheoremLibrary(ctx context.Context) (proof.Library, error) {
	records, err := svc.DB.Theorems().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("could not load theorem library", err)
	}
	return combinedLibrary{static: svc.Lib, records: records}, nil
}

func (l combinedLibrary) Theorem(id string) (proof.ProvenTheorem, bool) {
	for _, rec := range l.records {
		if rec.ID.String() == id {
			return rec.ProvenTheorem(), true
		}
	}
	if l.static != nil {
		return l.static.Theorem(id)
	}
	return proof.ProvenTheorem{}, false
}

// CheckProof validates steps against premises and conclusion, resolving any
// theorem citations against both the bundled and persisted theorem
// libraries.
func (svc Service) CheckProof(ctx context.Context, steps proof.Proof, premises []logic.Formula, conclusion logic.Formula) (proof.ProofCheckResult, error) {
	lib, err := svc.dbTheoremLibrary(ctx)
	if err != nil {
		return proof.ProofCheckResult{}, err
	}
	return proof.Check(steps, premises, conclusion, lib), nil
}
