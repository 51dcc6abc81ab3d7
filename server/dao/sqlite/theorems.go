package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/turnstile/server/dao"
	"github.com/google/uuid"
)

type TheoremsDB struct {
	db *sql.DB
}

func (repo *TheoremsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS theorems (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		premises TEXT NOT NULL,
		conclusion TEXT NOT NULL,
		created INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *TheoremsDB) Create(ctx context.Context, t dao.TheoremRecord) (dao.TheoremRecord, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.TheoremRecord{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO theorems (id, name, premises, conclusion, created) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.TheoremRecord{}, wrapDBError(err)
	}

	_, err = stmt.ExecContext(ctx,
		convertToDB_UUID(newUUID),
		t.Name,
		convertToDB_Formulas(t.Premises),
		convertToDB_Formula(t.Conclusion),
		convertToDB_Time(time.Now()),
	)
	if err != nil {
		return dao.TheoremRecord{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *TheoremsDB) fill(t *dao.TheoremRecord, id, premises, conclusion string, created int64) error {
	if err := convertFromDB_UUID(id, &t.ID); err != nil {
		return err
	}
	if err := convertFromDB_Formulas(premises, &t.Premises); err != nil {
		return err
	}
	if err := convertFromDB_Formula(conclusion, &t.Conclusion); err != nil {
		return err
	}
	if err := convertFromDB_Time(created, &t.Created); err != nil {
		return err
	}
	return nil
}

func (repo *TheoremsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.TheoremRecord, error) {
	var t dao.TheoremRecord
	var rowID, premises, conclusion string
	var created int64

	row := repo.db.QueryRowContext(ctx, `SELECT id, name, premises, conclusion, created FROM theorems WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	err := row.Scan(&rowID, &t.Name, &premises, &conclusion, &created)
	if err != nil {
		return t, wrapDBError(err)
	}

	return t, repo.fill(&t, rowID, premises, conclusion, created)
}

func (repo *TheoremsDB) GetAll(ctx context.Context) ([]dao.TheoremRecord, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, name, premises, conclusion, created FROM theorems ORDER BY id;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.TheoremRecord
	for rows.Next() {
		var t dao.TheoremRecord
		var rowID, premises, conclusion string
		var created int64

		if err := rows.Scan(&rowID, &t.Name, &premises, &conclusion, &created); err != nil {
			return all, wrapDBError(err)
		}
		if err := repo.fill(&t, rowID, premises, conclusion, created); err != nil {
			return all, err
		}
		all = append(all, t)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *TheoremsDB) Delete(ctx context.Context, id uuid.UUID) (dao.TheoremRecord, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM theorems WHERE id = ?`, convertToDB_UUID(id))
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

func (repo *TheoremsDB) Close() error {
	return nil
}
