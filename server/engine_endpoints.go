package server

import (
	"net/http"

	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/internal/proof"
)

func formulaResponseOf(f logic.Formula) FormulaResponse {
	return FormulaResponse{
		ASCII: logic.Print(f, logic.ModeASCII),
		UTF8:  logic.Print(f, logic.ModeUTF8),
	}
}

// HTTPParseFormula returns a HandlerFunc that parses a formula's surface
// syntax and returns it in both printable forms.
func (api API) HTTPParseFormula() http.HandlerFunc {
	return Endpoint(api.epParseFormula)
}

func (api API) epParseFormula(req *http.Request) EndpointResult {
	var body FormulaRequest
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), err.Error())
	}

	f, perr := api.Backend.ParseFormula(body.Formula)
	if perr != nil {
		return jsonBadRequest(perr.Error(), "parse %q: %s", body.Formula, perr.Error())
	}

	return jsonOK(formulaResponseOf(f), "parsed formula %q", body.Formula)
}

// HTTPPrintFormula returns a HandlerFunc that parses a formula and echoes it
// back in the mode given by the "mode" query parameter ("ascii" or "utf8",
// default "ascii").
func (api API) HTTPPrintFormula() http.HandlerFunc {
	return Endpoint(api.epPrintFormula)
}

func (api API) epPrintFormula(req *http.Request) EndpointResult {
	src := req.URL.Query().Get("formula")
	if src == "" {
		return jsonBadRequest("formula: property is empty or missing from request", "empty formula")
	}

	f, perr := api.Backend.ParseFormula(src)
	if perr != nil {
		return jsonBadRequest(perr.Error(), "parse %q: %s", src, perr.Error())
	}

	mode := logic.ModeASCII
	switch req.URL.Query().Get("mode") {
	case "", "ascii":
		mode = logic.ModeASCII
	case "utf8":
		mode = logic.ModeUTF8
	default:
		return jsonBadRequest("mode: must be one of 'ascii' or 'utf8'", "unknown mode %q", req.URL.Query().Get("mode"))
	}

	return jsonOK(logic.Print(f, mode), "printed formula %q", src)
}

// HTTPTruthTable returns a HandlerFunc that parses a formula and returns its
// full truth table.
func (api API) HTTPTruthTable() http.HandlerFunc {
	return Endpoint(api.epTruthTable)
}

func (api API) epTruthTable(req *http.Request) EndpointResult {
	var body FormulaRequest
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), err.Error())
	}

	f, perr := api.Backend.ParseFormula(body.Formula)
	if perr != nil {
		return jsonBadRequest(perr.Error(), "parse %q: %s", body.Formula, perr.Error())
	}

	table := api.Backend.Table(f)

	rows := make([]RowModel, len(table.Rows))
	for i, r := range table.Rows {
		rows[i] = RowModel{Inputs: map[string]bool(r.Inputs), Result: r.Result}
	}

	resp := TruthTableResponse{
		Formula:         formulaResponseOf(f),
		Variables:       table.Variables,
		Rows:            rows,
		IsTautology:     table.IsTautology,
		IsContradiction: table.IsContradiction,
		IsSatisfiable:   table.IsSatisfiable,
	}

	return jsonOK(resp, "computed truth table for %q", body.Formula)
}

func parseFormulaList(srcs []string) ([]logic.Formula, string, *logic.ParseError) {
	out := make([]logic.Formula, len(srcs))
	for i, s := range srcs {
		f, err := logic.Parse(s)
		if err != nil {
			return nil, s, err
		}
		out[i] = f
	}
	return out, "", nil
}

// HTTPCheckProof returns a HandlerFunc that validates a proof's steps
// against its premises and conclusion without persisting anything.
func (api API) HTTPCheckProof() http.HandlerFunc {
	return Endpoint(api.epCheckProof)
}

func (api API) epCheckProof(req *http.Request) EndpointResult {
	var body ProofCheckRequest
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), err.Error())
	}

	premises, badSrc, perr := parseFormulaList(body.Premises)
	if perr != nil {
		return jsonBadRequest(perr.Error(), "parse premise %q: %s", badSrc, perr.Error())
	}

	conclusion, perr := logic.Parse(body.Conclusion)
	if perr != nil {
		return jsonBadRequest(perr.Error(), "parse conclusion %q: %s", body.Conclusion, perr.Error())
	}

	steps := make(proof.Proof, len(body.Steps))
	for i, s := range body.Steps {
		f, perr := logic.Parse(s.Formula)
		if perr != nil {
			return jsonBadRequest(perr.Error(), "parse step %s formula %q: %s", s.ID, s.Formula, perr.Error())
		}
		steps[i] = proof.ProofStep{
			ID:            s.ID,
			Formula:       f,
			Rule:          proof.Rule(s.Rule),
			Justification: s.Justification,
			Depth:         s.Depth,
			TheoremID:     s.TheoremID,
		}
	}

	result, err := api.Backend.CheckProof(req.Context(), steps, premises, conclusion)
	if err != nil {
		return jsonInternalServerError(err.Error())
	}

	errs := make([]ValidationErrorModel, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = ValidationErrorModel{StepID: e.StepID, Message: e.Message, Code: e.Code}
	}

	resp := ProofCheckResponse{
		Valid:    result.Valid,
		Complete: result.Complete,
		Errors:   errs,
	}

	return jsonOK(resp, "checked proof (%d step(s)): valid=%t complete=%t", len(steps), result.Valid, result.Complete)
}
