package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/server/dao"
	"github.com/dekarrin/turnstile/server/serr"
)

func theoremModelOf(t dao.TheoremRecord) TheoremModel {
	premises := make([]string, len(t.Premises))
	for i, f := range t.Premises {
		premises[i] = logic.Print(f, logic.ModeASCII)
	}

	return TheoremModel{
		URI:        APIPathPrefix + "/theorems/" + t.ID.String(),
		ID:         t.ID.String(),
		Name:       t.Name,
		Premises:   premises,
		Conclusion: logic.Print(t.Conclusion, logic.ModeASCII),
		Created:    t.Created.Format(time.RFC3339),
	}
}

// HTTPCreateTheorem returns a HandlerFunc that adds a theorem to the
// runtime-editable library. Only an admin may write to the library.
func (api API) HTTPCreateTheorem() http.HandlerFunc {
	return Endpoint(api.epCreateTheorem)
}

func (api API) epCreateTheorem(req *http.Request) EndpointResult {
	user := req.Context().Value(AuthUser).(dao.User)
	if user.Role != dao.Admin {
		return jsonForbidden("user '%s' (role %s) creation of theorem: forbidden", user.Username, user.Role)
	}

	var body TheoremModel
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

	created, err := api.Backend.CreateTheorem(req.Context(), body.Name, premises, conclusion)
	if err != nil {
		return jsonInternalServerError(err.Error())
	}

	return jsonCreated(theoremModelOf(created), "user '%s' created theorem '%s' (%s)", user.Username, created.Name, created.ID)
}

// HTTPGetTheorem returns a HandlerFunc that retrieves a theorem from the
// runtime-editable library. Open to any authenticated user.
func (api API) HTTPGetTheorem() http.HandlerFunc {
	return Endpoint(api.epGetTheorem)
}

func (api API) epGetTheorem(req *http.Request) EndpointResult {
	id := requireIDParam(req)

	t, err := api.Backend.GetTheorem(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return jsonNotFound()
		}
		return jsonInternalServerError(err.Error())
	}

	return jsonOK(theoremModelOf(t), "got theorem '%s'", t.Name)
}

// HTTPGetAllTheorems returns a HandlerFunc that lists every theorem in the
// runtime-editable library. Open to any authenticated user.
func (api API) HTTPGetAllTheorems() http.HandlerFunc {
	return Endpoint(api.epGetAllTheorems)
}

func (api API) epGetAllTheorems(req *http.Request) EndpointResult {
	theorems, err := api.Backend.ListTheorems(req.Context())
	if err != nil {
		return jsonInternalServerError(err.Error())
	}

	resp := make([]TheoremModel, len(theorems))
	for i, t := range theorems {
		resp[i] = theoremModelOf(t)
	}

	return jsonOK(resp, "got all theorems")
}

// HTTPDeleteTheorem returns a HandlerFunc that deletes a theorem from the
// runtime-editable library. Only an admin may write to the library.
func (api API) HTTPDeleteTheorem() http.HandlerFunc {
	return Endpoint(api.epDeleteTheorem)
}

func (api API) epDeleteTheorem(req *http.Request) EndpointResult {
	id := requireIDParam(req)
	user := req.Context().Value(AuthUser).(dao.User)
	if user.Role != dao.Admin {
		return jsonForbidden("user '%s' (role %s) deletion of theorem %s: forbidden", user.Username, user.Role, id)
	}

	deleted, err := api.Backend.DeleteTheorem(req.Context(), id.String())
	if err != nil && !errors.Is(err, serr.ErrNotFound) {
		return jsonInternalServerError(err.Error())
	}

	return jsonNoContent("user '%s' deleted theorem '%s'", user.Username, deleted.Name)
}
