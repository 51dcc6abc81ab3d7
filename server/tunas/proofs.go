package tunas

import (
	"context"
	"errors"

	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/internal/proof"
	"github.com/dekarrin/turnstile/server/dao"
	"github.com/dekarrin/turnstile/server/serr"
	"github.com/google/uuid"
)

// CreateProof saves a new proof document owned by ownerID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the error occured due to
// an unexpected problem with the DB, it will match serr.ErrDB.
func (svc Service) CreateProof(ctx context.Context, ownerID uuid.UUID, name string, premises []logic.Formula, conclusion logic.Formula, steps []proof.ProofStep) (dao.ProofDocument, error) {
	if name == "" {
		return dao.ProofDocument{}, serr.New("name cannot be blank", serr.ErrBadArgument)
	}

	doc := dao.ProofDocument{
		OwnerID:    ownerID,
		Name:       name,
		Premises:   premises,
		Conclusion: conclusion,
		Steps:      steps,
	}

	created, err := svc.DB.Proofs().Create(ctx, doc)
	if err != nil {
		return dao.ProofDocument{}, serr.WrapDB("could not create proof", err)
	}

	return created, nil
}

// GetProof returns the proof document with the given ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no proof with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if
// there is an issue with one of the arguments, it will match
// serr.ErrBadArgument.
func (svc Service) GetProof(ctx context.Context, id string) (dao.ProofDocument, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.ProofDocument{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	p, err := svc.DB.Proofs().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.ProofDocument{}, serr.ErrNotFound
		}
		return dao.ProofDocument{}, serr.WrapDB("could not get proof", err)
	}

	return p, nil
}

// ListProofsByOwner returns all proof documents owned by ownerID.
func (svc Service) ListProofsByOwner(ctx context.Context, ownerID uuid.UUID) ([]dao.ProofDocument, error) {
	proofs, err := svc.DB.Proofs().GetAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return proofs, nil
}

// ListAllProofs returns every saved proof document, regardless of owner.
func (svc Service) ListAllProofs(ctx context.Context) ([]dao.ProofDocument, error) {
	proofs, err := svc.DB.Proofs().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return proofs, nil
}

// UpdateProof replaces the name, premises, conclusion, and steps of the
// proof with the given ID. The owner is left unchanged.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no proof with the given
// ID exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB.
func (svc Service) UpdateProof(ctx context.Context, id string, name string, premises []logic.Formula, conclusion logic.Formula, steps []proof.ProofStep) (dao.ProofDocument, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.ProofDocument{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	existing, err := svc.DB.Proofs().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.ProofDocument{}, serr.ErrNotFound
		}
		return dao.ProofDocument{}, serr.WrapDB("", err)
	}

	existing.Name = name
	existing.Premises = premises
	existing.Conclusion = conclusion
	existing.Steps = steps

	updated, err := svc.DB.Proofs().Update(ctx, uuidID, existing)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.ProofDocument{}, serr.ErrNotFound
		}
		return dao.ProofDocument{}, serr.WrapDB("could not update proof", err)
	}

	return updated, nil
}

// DeleteProof deletes the proof with the given ID. It returns the deleted
// proof document as it existed just prior to deletion.
func (svc Service) DeleteProof(ctx context.Context, id string) (dao.ProofDocument, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.ProofDocument{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	deleted, err := svc.DB.Proofs().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.ProofDocument{}, serr.ErrNotFound
		}
		return dao.ProofDocument{}, serr.WrapDB("could not delete proof", err)
	}

	return deleted, nil
}
