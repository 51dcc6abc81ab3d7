package inmem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dekarrin/turnstile/server/dao"
	"github.com/google/uuid"
)

func NewTheoremsRepository() *InMemoryTheoremsRepository {
	return &InMemoryTheoremsRepository{
		theorems: make(map[uuid.UUID]dao.TheoremRecord),
	}
}

type InMemoryTheoremsRepository struct {
	theorems map[uuid.UUID]dao.TheoremRecord
}

func (r *InMemoryTheoremsRepository) Close() error {
	return nil
}

func (r *InMemoryTheoremsRepository) Create(ctx context.Context, t dao.TheoremRecord) (dao.TheoremRecord, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.TheoremRecord{}, fmt.Errorf("could not generate ID: %w", err)
	}

	t.ID = newUUID
	t.Created = time.Now()

	r.theorems[t.ID] = t
	return t, nil
}

func (r *InMemoryTheoremsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.TheoremRecord, error) {
	t, ok := r.theorems[id]
	if !ok {
		return dao.TheoremRecord{}, dao.ErrNotFound
	}
	return t, nil
}

func (r *InMemoryTheoremsRepository) GetAll(ctx context.Context) ([]dao.TheoremRecord, error) {
	all := make([]dao.TheoremRecord, 0, len(r.theorems))
	for _, t := range r.theorems {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return all, nil
}

func (r *InMemoryTheoremsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.TheoremRecord, error) {
	t, ok := r.theorems[id]
	if !ok {
		return dao.TheoremRecord{}, dao.ErrNotFound
	}
	delete(r.theorems, id)
	return t, nil
}
