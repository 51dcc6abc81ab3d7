package server

import (
	"net/http"

	"github.com/dekarrin/turnstile/server/dao"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router builds the complete HTTP handler for a turnstile server: the full
// set of API routes mounted under APIPathPrefix, wrapped in request logging
// and recovery middleware. db is used directly by the auth middleware to
// look up the calling user on each request; it is normally the same store
// that backs api.Backend.
func Router(api API, db dao.UserRepository) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	required := func(next http.Handler) http.Handler {
		return RequireAuth(db, api.Secret, api.UnauthDelay, dao.User{}, next)
	}
	optional := func(next http.Handler) http.Handler {
		return OptionalAuth(db, api.Secret, api.UnauthDelay, dao.User{}, next)
	}

	r.Route(APIPathPrefix, func(r chi.Router) {
		r.With(optional).Get("/info", api.HTTPGetInfo())

		r.Post("/login", api.HTTPCreateLogin())
		r.With(required).Delete("/login/{id}", api.HTTPDeleteLogin())
		r.With(required).Post("/tokens", api.HTTPCreateToken())

		r.Route("/users", func(r chi.Router) {
			r.Use(required)
			r.Get("/", api.HTTPGetAllUsers())
			r.Post("/", api.HTTPCreateUser())
			r.Get("/{id}", api.HTTPGetUser())
			r.Patch("/{id}", api.HTTPUpdateUser())
			r.Put("/{id}", api.HTTPReplaceUser())
			r.Delete("/{id}", api.HTTPDeleteUser())
		})

		r.Route("/formulas", func(r chi.Router) {
			r.Use(required)
			r.Post("/parse", api.HTTPParseFormula())
			r.Get("/print", api.HTTPPrintFormula())
			r.Post("/truth-table", api.HTTPTruthTable())
		})

		r.Route("/proofs", func(r chi.Router) {
			r.Use(required)
			r.Post("/check", api.HTTPCheckProof())
			r.Get("/", api.HTTPGetAllProofs())
			r.Post("/", api.HTTPCreateProof())
			r.Get("/{id}", api.HTTPGetProof())
			r.Put("/{id}", api.HTTPUpdateProof())
			r.Delete("/{id}", api.HTTPDeleteProof())
		})

		r.Route("/theorems", func(r chi.Router) {
			r.Use(required)
			r.Get("/", api.HTTPGetAllTheorems())
			r.Post("/", api.HTTPCreateTheorem())
			r.Get("/{id}", api.HTTPGetTheorem())
			r.Delete("/{id}", api.HTTPDeleteTheorem())
		})
	})

	return r
}
