package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/internal/proof"
	"github.com/dekarrin/turnstile/server/dao"
	"github.com/dekarrin/turnstile/server/serr"
)

func proofStepModelOf(s proof.ProofStep) ProofStepModel {
	return ProofStepModel{
		ID:            s.ID,
		Formula:       logic.Print(s.Formula, logic.ModeASCII),
		Rule:          string(s.Rule),
		Justification: s.Justification,
		Depth:         s.Depth,
		TheoremID:     s.TheoremID,
	}
}

func proofModelOf(p dao.ProofDocument) ProofModel {
	premises := make([]string, len(p.Premises))
	for i, f := range p.Premises {
		premises[i] = logic.Print(f, logic.ModeASCII)
	}
	steps := make([]ProofStepModel, len(p.Steps))
	for i, s := range p.Steps {
		steps[i] = proofStepModelOf(s)
	}

	return ProofModel{
		URI:        APIPathPrefix + "/proofs/" + p.ID.String(),
		ID:         p.ID.String(),
		OwnerID:    p.OwnerID.String(),
		Name:       p.Name,
		Premises:   premises,
		Conclusion: logic.Print(p.Conclusion, logic.ModeASCII),
		Steps:      steps,
		Created:    p.Created.Format(time.RFC3339),
		Modified:   p.Modified.Format(time.RFC3339),
	}
}

func proofStepsFromModels(models []ProofStepModel) ([]proof.ProofStep, *logic.ParseError) {
	steps := make([]proof.ProofStep, len(models))
	for i, m := range models {
		f, err := logic.Parse(m.Formula)
		if err != nil {
			return nil, err
		}
		steps[i] = proof.ProofStep{
			ID:            m.ID,
			Formula:       f,
			Rule:          proof.Rule(m.Rule),
			Justification: m.Justification,
			Depth:         m.Depth,
			TheoremID:     m.TheoremID,
		}
	}
	return steps, nil
}

// HTTPCreateProof returns a HandlerFunc that saves a new proof document
// owned by the logged-in user.
func (api API) HTTPCreateProof() http.HandlerFunc {
	return Endpoint(api.epCreateProof)
}

func (api API) epCreateProof(req *http.Request) EndpointResult {
	user := req.Context().Value(AuthUser).(dao.User)

	var body ProofModel
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), err.Error())
	}
	if body.Name == "" {
		return jsonBadRequest("name: property is empty or missing from request", "empty name")
	}

	premises, badSrc, perr := parseFormulaList(body.Premises)
	if perr != nil {
		return jsonBadRequest(perr.Error(), "parse premise %q: %s", badSrc, perr.Error())
	}
	conclusion, perr := logic.Parse(body.Conclusion)
	if perr != nil {
		return jsonBadRequest(perr.Error(), "parse conclusion %q: %s", body.Conclusion, perr.Error())
	}
	steps, perr := proofStepsFromModels(body.Steps)
	if perr != nil {
		return jsonBadRequest(perr.Error(), "parse step: %s", perr.Error())
	}

	created, err := api.Backend.CreateProof(req.Context(), user.ID, body.Name, premises, conclusion, steps)
	if err != nil {
		return jsonInternalServerError(err.Error())
	}

	return jsonCreated(proofModelOf(created), "user '%s' created proof '%s' (%s)", user.Username, created.Name, created.ID)
}

// HTTPGetProof returns a HandlerFunc that retrieves a saved proof. The
// owner or an admin may retrieve it.
func (api API) HTTPGetProof() http.HandlerFunc {
	return Endpoint(api.epGetProof)
}

func (api API) epGetProof(req *http.Request) EndpointResult {
	id := requireIDParam(req)
	user := req.Context().Value(AuthUser).(dao.User)

	p, err := api.Backend.GetProof(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound()
		}
		return jsonInternalServerError(err.Error())
	}

	if p.OwnerID != user.ID && user.Role != dao.Admin {
		return jsonForbidden("user '%s' (role %s) get proof %s: forbidden", user.Username, user.Role, id)
	}

	return jsonOK(proofModelOf(p), "user '%s' got proof '%s'", user.Username, p.Name)
}

// HTTPGetAllProofs returns a HandlerFunc that lists the logged-in user's
// saved proofs, or every saved proof if the caller is an admin.
func (api API) HTTPGetAllProofs() http.HandlerFunc {
	return Endpoint(api.epGetAllProofs)
}

func (api API) epGetAllProofs(req *http.Request) EndpointResult {
	user := req.Context().Value(AuthUser).(dao.User)

	var (
		proofs []dao.ProofDocument
		err    error
	)
	if user.Role == dao.Admin {
		proofs, err = api.Backend.ListAllProofs(req.Context())
	} else {
		proofs, err = api.Backend.ListProofsByOwner(req.Context(), user.ID)
	}
	if err != nil {
		return jsonInternalServerError(err.Error())
	}

	resp := make([]ProofModel, len(proofs))
	for i, p := range proofs {
		resp[i] = proofModelOf(p)
	}

	return jsonOK(resp, "user '%s' got all proofs", user.Username)
}

// HTTPUpdateProof returns a HandlerFunc that replaces the name, premises,
// conclusion, and steps of a saved proof. The owner or an admin may update
// it.
func (api API) HTTPUpdateProof() http.HandlerFunc {
	return Endpoint(api.epUpdateProof)
}

func (api API) epUpdateProof(req *http.Request) EndpointResult {
	id := requireIDParam(req)
	user := req.Context().Value(AuthUser).(dao.User)

	existing, err := api.Backend.GetProof(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound()
		}
		return jsonInternalServerError(err.Error())
	}
	if existing.OwnerID != user.ID && user.Role != dao.Admin {
		return jsonForbidden("user '%s' (role %s) update proof %s: forbidden", user.Username, user.Role, id)
	}

	var body ProofModel
	if err := parseJSON(req, &body); err != nil {
		return jsonBadRequest(err.Error(), err.Error())
	}
	if body.Name == "" {
		return jsonBadRequest("name: property is empty or missing from request", "empty name")
	}

	premises, badSrc, perr := parseFormulaList(body.Premises)
	if perr != nil {
		return jsonBadRequest(perr.Error(), "parse premise %q: %s", badSrc, perr.Error())
	}
	conclusion, perr := logic.Parse(body.Conclusion)
	if perr != nil {
		return jsonBadRequest(perr.Error(), "parse conclusion %q: %s", body.Conclusion, perr.Error())
	}
	steps, perr := proofStepsFromModels(body.Steps)
	if perr != nil {
		return jsonBadRequest(perr.Error(), "parse step: %s", perr.Error())
	}

	updated, err := api.Backend.UpdateProof(req.Context(), id.String(), body.Name, premises, conclusion, steps)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound()
		}
		return jsonInternalServerError(err.Error())
	}

	return jsonOK(proofModelOf(updated), "user '%s' updated proof '%s'", user.Username, updated.Name)
}

// HTTPDeleteProof returns a HandlerFunc that deletes a saved proof. The
// owner or an admin may delete it.
func (api API) HTTPDeleteProof() http.HandlerFunc {
	return Endpoint(api.epDeleteProof)
}

func (api API) epDeleteProof(req *http.Request) EndpointResult {
	id := requireIDParam(req)
	user := req.Context().Value(AuthUser).(dao.User)

	existing, err := api.Backend.GetProof(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound()
		}
		return jsonInternalServerError(err.Error())
	}
	if existing.OwnerID != user.ID && user.Role != dao.Admin {
		return jsonForbidden("user '%s' (role %s) delete proof %s: forbidden", user.Username, user.Role, id)
	}

	deleted, err := api.Backend.DeleteProof(req.Context(), id.String())
	if err != nil && !errors.Is(err, serr.ErrNotFound) {
		return jsonInternalServerError(err.Error())
	}

	return jsonNoContent("user '%s' deleted proof '%s'", user.Username, deleted.Name)
}
