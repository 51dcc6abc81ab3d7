// Package inmem provides an in-memory dao.Store implementation, useful
// for tests and for running the server without a database.
package inmem

import (
	"fmt"

	"github.com/dekarrin/turnstile/server/dao"
)

type store struct {
	users    *InMemoryUsersRepository
	proofs   *InMemoryProofsRepository
	theorems *InMemoryTheoremsRepository
}

func NewDatastore() dao.Store {
	return &store{
		users:    NewUsersRepository(),
		proofs:   NewProofsRepository(),
		theorems: NewTheoremsRepository(),
	}
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Proofs() dao.ProofRepository {
	return s.proofs
}

func (s *store) Theorems() dao.TheoremRepository {
	return s.theorems
}

func (s *store) Close() error {
	var err error

	closers := []func() error{s.users.Close, s.proofs.Close, s.theorems.Close}
	for _, close := range closers {
		if nextErr := close(); nextErr != nil {
			if err != nil {
				err = fmt.Errorf("%s\nadditionally, %w", err, nextErr)
			} else {
				err = nextErr
			}
		}
	}

	return err
}
