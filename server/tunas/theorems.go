package tunas

import (
	"context"
	"errors"

	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/server/dao"
	"github.com/dekarrin/turnstile/server/serr"
	"github.com/google/uuid"
)

// CreateTheorem adds a new entry to the runtime-editable theorem library.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the error occured due to
// an unexpected problem with the DB, it will match serr.ErrDB. If one of the
// arguments is invalid, it will match serr.ErrBadArgument.
func (svc Service) CreateTheorem(ctx context.Context, name string, premises []logic.Formula, conclusion logic.Formula) (dao.TheoremRecord, error) {
	if name == "" {
		return dao.TheoremRecord{}, serr.New("name cannot be blank", serr.ErrBadArgument)
	}

	rec := dao.TheoremRecord{
		Name:       name,
		Premises:   premises,
		Conclusion: conclusion,
	}

	created, err := svc.DB.Theorems().Create(ctx, rec)
	if err != nil {
		return dao.TheoremRecord{}, serr.WrapDB("could not create theorem", err)
	}

	return created, nil
}

// GetTheorem returns the theorem record with the given ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no theorem with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB.
func (svc Service) GetTheorem(ctx context.Context, id string) (dao.TheoremRecord, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.TheoremRecord{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	t, err := svc.DB.Theorems().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.TheoremRecord{}, serr.ErrNotFound
		}
		return dao.TheoremRecord{}, serr.WrapDB("could not get theorem", err)
	}

	return t, nil
}

// ListTheorems returns every theorem currently in the runtime-editable
// library.
func (svc Service) ListTheorems(ctx context.Context) ([]dao.TheoremRecord, error) {
	theorems, err := svc.DB.Theorems().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return theorems, nil
}

// DeleteTheorem deletes the theorem with the given ID. It returns the
// deleted record as it existed just prior to deletion.
func (svc Service) DeleteTheorem(ctx context.Context, id string) (dao.TheoremRecord, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.TheoremRecord{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	deleted, err := svc.DB.Theorems().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.TheoremRecord{}, serr.ErrNotFound
		}
		return dao.TheoremRecord{}, serr.WrapDB("could not delete theorem", err)
	}

	return deleted, nil
}
