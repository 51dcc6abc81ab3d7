package inmem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dekarrin/turnstile/server/dao"
	"github.com/google/uuid"
)

func NewProofsRepository() *InMemoryProofsRepository {
	return &InMemoryProofsRepository{
		proofs: make(map[uuid.UUID]dao.ProofDocument),
	}
}

type InMemoryProofsRepository struct {
	proofs map[uuid.UUID]dao.ProofDocument
}

func (r *InMemoryProofsRepository) Close() error {
	return nil
}

func (r *InMemoryProofsRepository) Create(ctx context.Context, p dao.ProofDocument) (dao.ProofDocument, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.ProofDocument{}, fmt.Errorf("could not generate ID: %w", err)
	}

	p.ID = newUUID
	p.Created = time.Now()
	p.Modified = p.Created

	r.proofs[p.ID] = p
	return p, nil
}

func (r *InMemoryProofsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.ProofDocument, error) {
	p, ok := r.proofs[id]
	if !ok {
		return dao.ProofDocument{}, dao.ErrNotFound
	}
	return p, nil
}

func (r *InMemoryProofsRepository) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]dao.ProofDocument, error) {
	var out []dao.ProofDocument
	for _, p := range r.proofs {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *InMemoryProofsRepository) GetAll(ctx context.Context) ([]dao.ProofDocument, error) {
	all := make([]dao.ProofDocument, 0, len(r.proofs))
	for _, p := range r.proofs {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return all, nil
}

func (r *InMemoryProofsRepository) Update(ctx context.Context, id uuid.UUID, p dao.ProofDocument) (dao.ProofDocument, error) {
	existing, ok := r.proofs[id]
	if !ok {
		return dao.ProofDocument{}, dao.ErrNotFound
	}

	p.ID = id
	p.Created = existing.Created
	p.Modified = time.Now()

	r.proofs[id] = p
	return p, nil
}

func (r *InMemoryProofsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.ProofDocument, error) {
	p, ok := r.proofs[id]
	if !ok {
		return dao.ProofDocument{}, dao.ErrNotFound
	}
	delete(r.proofs, id)
	return p, nil
}
