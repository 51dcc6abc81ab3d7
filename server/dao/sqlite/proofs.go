package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/turnstile/server/dao"
	"github.com/google/uuid"
)

type ProofsDB struct {
	db *sql.DB
}

func (repo *ProofsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS proofs (
		id TEXT NOT NULL PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		premises TEXT NOT NULL,
		conclusion TEXT NOT NULL,
		steps TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *ProofsDB) Create(ctx context.Context, p dao.ProofDocument) (dao.ProofDocument, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.ProofDocument{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO proofs (id, owner_id, name, premises, conclusion, steps, created, modified) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.ProofDocument{}, wrapDBError(err)
	}

	now := convertToDB_Time(time.Now())
	_, err = stmt.ExecContext(ctx,
		convertToDB_UUID(newUUID),
		convertToDB_UUID(p.OwnerID),
		p.Name,
		convertToDB_Formulas(p.Premises),
		convertToDB_Formula(p.Conclusion),
		convertToDB_Steps(p.Steps),
		now,
		now,
	)
	if err != nil {
		return dao.ProofDocument{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *ProofsDB) scanOne(row *sql.Row) (dao.ProofDocument, error) {
	var p dao.ProofDocument
	var id, ownerID, premises, conclusion, steps string
	var created, modified int64

	err := row.Scan(&id, &ownerID, &p.Name, &premises, &conclusion, &steps, &created, &modified)
	if err != nil {
		return p, wrapDBError(err)
	}

	return p, repo.fill(&p, id, ownerID, premises, conclusion, steps, created, modified)
}

func (repo *ProofsDB) fill(p *dao.ProofDocument, id, ownerID, premises, conclusion, steps string, created, modified int64) error {
	if err := convertFromDB_UUID(id, &p.ID); err != nil {
		return err
	}
	if err := convertFromDB_UUID(ownerID, &p.OwnerID); err != nil {
		return err
	}
	if err := convertFromDB_Formulas(premises, &p.Premises); err != nil {
		return err
	}
	if err := convertFromDB_Formula(conclusion, &p.Conclusion); err != nil {
		return err
	}
	if err := convertFromDB_Steps(steps, &p.Steps); err != nil {
		return err
	}
	if err := convertFromDB_Time(created, &p.Created); err != nil {
		return err
	}
	if err := convertFromDB_Time(modified, &p.Modified); err != nil {
		return err
	}
	return nil
}

func (repo *ProofsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.ProofDocument, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, owner_id, name, premises, conclusion, steps, created, modified FROM proofs WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	return repo.scanOne(row)
}

func (repo *ProofsDB) queryAll(ctx context.Context, query string, args ...any) ([]dao.ProofDocument, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.ProofDocument
	for rows.Next() {
		var p dao.ProofDocument
		var id, ownerID, premises, conclusion, steps string
		var created, modified int64

		if err := rows.Scan(&id, &ownerID, &p.Name, &premises, &conclusion, &steps, &created, &modified); err != nil {
			return all, wrapDBError(err)
		}
		if err := repo.fill(&p, id, ownerID, premises, conclusion, steps, created, modified); err != nil {
			return all, err
		}
		all = append(all, p)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *ProofsDB) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]dao.ProofDocument, error) {
	return repo.queryAll(ctx, `SELECT id, owner_id, name, premises, conclusion, steps, created, modified FROM proofs WHERE owner_id = ? ORDER BY id;`,
		convertToDB_UUID(ownerID),
	)
}

func (repo *ProofsDB) GetAll(ctx context.Context) ([]dao.ProofDocument, error) {
	return repo.queryAll(ctx, `SELECT id, owner_id, name, premises, conclusion, steps, created, modified FROM proofs ORDER BY id;`)
}

func (repo *ProofsDB) Update(ctx context.Context, id uuid.UUID, p dao.ProofDocument) (dao.ProofDocument, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE proofs SET owner_id=?, name=?, premises=?, conclusion=?, steps=?, modified=? WHERE id=?;`,
		convertToDB_UUID(p.OwnerID),
		p.Name,
		convertToDB_Formulas(p.Premises),
		convertToDB_Formula(p.Conclusion),
		convertToDB_Steps(p.Steps),
		convertToDB_Time(time.Now()),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.ProofDocument{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.ProofDocument{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.ProofDocument{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, id)
}

func (repo *ProofsDB) Delete(ctx context.Context, id uuid.UUID) (dao.ProofDocument, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM proofs WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

func (repo *ProofsDB) Close() error {
	return nil
}
