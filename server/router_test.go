package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dekarrin/turnstile/server/dao"
	"github.com/dekarrin/turnstile/server/dao/inmem"
	"github.com/dekarrin/turnstile/server/tunas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (http.Handler, API) {
	t.Helper()
	store := inmem.NewDatastore()
	t.Cleanup(func() { store.Close() })

	api := API{
		Backend: tunas.Service{DB: store},
		Secret:  testSecret,
	}

	return Router(api, store.Users()), api
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func Test_Router_Info_noAuth(t *testing.T) {
	handler, _ := newTestServer(t)

	w := doJSON(t, handler, "GET", "/api/v1/info", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var info InfoModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.NotEmpty(t, info.Version.Server)
	assert.NotEmpty(t, info.Version.Engine)
}

func Test_Router_Login_and_AuthenticatedRequest(t *testing.T) {
	handler, api := newTestServer(t)

	_, err := api.Backend.CreateUser(context.Background(), "glorious", "hunter2", "glorious@example.com", dao.Admin)
	require.NoError(t, err)

	w := doJSON(t, handler, "POST", "/api/v1/login", LoginRequest{Username: "glorious", Password: "hunter2"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.NotEmpty(t, login.Token)

	w = doJSON(t, handler, "GET", "/api/v1/users", nil, login.Token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func Test_Router_Login_badCredentials(t *testing.T) {
	handler, _ := newTestServer(t)

	w := doJSON(t, handler, "POST", "/api/v1/login", LoginRequest{Username: "nobody", Password: "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_Router_Users_requiresAuth(t *testing.T) {
	handler, _ := newTestServer(t)

	w := doJSON(t, handler, "GET", "/api/v1/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_Router_FormulasParse(t *testing.T) {
	handler, api := newTestServer(t)
	token := loginAs(t, handler, api, "glorious", "hunter2")

	w := doJSON(t, handler, "POST", "/api/v1/formulas/parse", FormulaRequest{Formula: "p -> q"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var resp FormulaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ASCII)
}

func Test_Router_TruthTable(t *testing.T) {
	handler, api := newTestServer(t)
	token := loginAs(t, handler, api, "glorious", "hunter2")

	w := doJSON(t, handler, "POST", "/api/v1/formulas/truth-table", FormulaRequest{Formula: "p | ~p"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var resp TruthTableResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsTautology)
}

func Test_Router_ProofsCheck(t *testing.T) {
	handler, api := newTestServer(t)
	token := loginAs(t, handler, api, "glorious", "hunter2")

	body := ProofCheckRequest{
		Premises:   []string{"p", "p -> q"},
		Conclusion: "q",
		Steps: []ProofStepModel{
			{ID: "1", Formula: "p", Rule: "assumption", Depth: 0},
			{ID: "2", Formula: "p -> q", Rule: "assumption", Depth: 0},
			{ID: "3", Formula: "q", Rule: "implies_elim", Justification: []string{"1", "2"}, Depth: 0},
		},
	}

	w := doJSON(t, handler, "POST", "/api/v1/proofs/check", body, token)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ProofCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.True(t, resp.Complete)
}

func Test_Router_Proofs_CreateGetUpdateDelete(t *testing.T) {
	handler, api := newTestServer(t)
	token := loginAs(t, handler, api, "glorious", "hunter2")

	create := ProofModel{
		Name:       "mp practice",
		Premises:   []string{"p", "p -> q"},
		Conclusion: "q",
		Steps: []ProofStepModel{
			{ID: "1", Formula: "p", Rule: "assumption", Depth: 0},
			{ID: "2", Formula: "p -> q", Rule: "assumption", Depth: 0},
			{ID: "3", Formula: "q", Rule: "implies_elim", Justification: []string{"1", "2"}, Depth: 0},
		},
	}

	w := doJSON(t, handler, "POST", "/api/v1/proofs", create, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var created ProofModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	w = doJSON(t, handler, "GET", "/api/v1/proofs/"+created.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	create.Name = "renamed"
	w = doJSON(t, handler, "PUT", "/api/v1/proofs/"+created.ID, create, token)
	require.Equal(t, http.StatusOK, w.Code)

	var updated ProofModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "renamed", updated.Name)

	w = doJSON(t, handler, "DELETE", "/api/v1/proofs/"+created.ID, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, handler, "GET", "/api/v1/proofs/"+created.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func Test_Router_Proofs_ownerOnly(t *testing.T) {
	handler, api := newTestServer(t)
	ownerTok := loginAs(t, handler, api, "owner", "hunter2")
	otherTok := loginAs(t, handler, api, "intruder", "hunter2")

	create := ProofModel{
		Name:       "mp practice",
		Premises:   []string{"p"},
		Conclusion: "p",
		Steps: []ProofStepModel{
			{ID: "1", Formula: "p", Rule: "assumption", Depth: 0},
		},
	}

	w := doJSON(t, handler, "POST", "/api/v1/proofs", create, ownerTok)
	require.Equal(t, http.StatusCreated, w.Code)

	var created ProofModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, handler, "GET", "/api/v1/proofs/"+created.ID, nil, otherTok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func Test_Router_Theorems_adminOnlyWrite(t *testing.T) {
	handler, api := newTestServer(t)

	_, err := api.Backend.CreateUser(context.Background(), "admin", "hunter2", "admin@example.com", dao.Admin)
	require.NoError(t, err)

	w := doJSON(t, handler, "POST", "/api/v1/login", LoginRequest{Username: "admin", Password: "hunter2"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var adminLogin LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &adminLogin))
	adminTok := adminLogin.Token

	normalTok := loginAs(t, handler, api, "normal", "hunter2")

	create := TheoremModel{Name: "modus ponens", Premises: []string{"p", "p -> q"}, Conclusion: "q"}

	w = doJSON(t, handler, "POST", "/api/v1/theorems", create, normalTok)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, handler, "POST", "/api/v1/theorems", create, adminTok)
	require.Equal(t, http.StatusCreated, w.Code)

	var created TheoremModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, handler, "GET", "/api/v1/theorems/"+created.ID, nil, normalTok)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, handler, "DELETE", "/api/v1/theorems/"+created.ID, nil, normalTok)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, handler, "DELETE", "/api/v1/theorems/"+created.ID, nil, adminTok)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func loginAs(t *testing.T, handler http.Handler, api API, username, password string) string {
	t.Helper()

	_, err := api.Backend.CreateUser(context.Background(), username, password, username+"@example.com", 0)
	require.NoError(t, err)

	w := doJSON(t, handler, "POST", "/api/v1/login", LoginRequest{Username: username, Password: password}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	return login.Token
}
