// Package sqlite provides a dao.Store backed by a single SQLite database
// file, for use when the server needs persistence across restarts.
package sqlite

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"path/filepath"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/internal/proof"
	"github.com/dekarrin/turnstile/server/dao"
	"github.com/dekarrin/turnstile/server/serr"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

type store struct {
	dbFilename string

	db *sql.DB

	users    *UsersDB
	proofs   *ProofsDB
	theorems *TheoremsDB
}

func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{
		dbFilename: "turnstile.db",
	}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.users = &UsersDB{db: st.db}
	if err := st.users.init(); err != nil {
		return nil, err
	}

	st.proofs = &ProofsDB{db: st.db}
	if err := st.proofs.init(); err != nil {
		return nil, err
	}

	st.theorems = &TheoremsDB{db: st.db}
	if err := st.theorems.init(); err != nil {
		return nil, err
	}

	return st, nil
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
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%s: %w", s.dbFilename, err)
	}
	return nil
}

// convertToDB_Role converts a dao.Role to storage DB format.
func convertToDB_Role(r dao.Role) string {
	return r.String()
}

// convertToDB_Email converts a *mail.Address to storage DB format. If the
// pointer is nil, it will return the zero value.
func convertToDB_Email(email *mail.Address) string {
	if email == nil {
		return ""
	}
	return email.Address
}

// convertToDB_UUID converts a uuid.UUID to storage DB format on disk.
func convertToDB_UUID(u uuid.UUID) string {
	return u.String()
}

// convertToDB_Time converts a time.Time to storage DB format on disk.
func convertToDB_Time(t time.Time) int64 {
	return t.Unix()
}

// convertToDB_ByteSlice converts bytes to storage DB format on disk.
func convertToDB_ByteSlice(b []byte) string {
	if len(b) < 1 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

// convertToDB_Formula converts a logic.Formula to storage DB format on
// disk via REZI binary encoding, which in turn defers to Formula's
// MarshalBinary (its ASCII surface syntax).
func convertToDB_Formula(f logic.Formula) string {
	data := rezi.EncBinary(&f)
	return convertToDB_ByteSlice(data)
}

// convertToDB_Formulas converts a slice of logic.Formula (a proof's
// premise list) to storage DB format on disk.
func convertToDB_Formulas(fs []logic.Formula) string {
	data := rezi.EncBinary(&fs)
	return convertToDB_ByteSlice(data)
}

// convertToDB_Steps converts a proof's recorded steps to storage DB
// format on disk.
func convertToDB_Steps(steps []proof.ProofStep) string {
	data := rezi.EncBinary(&steps)
	return convertToDB_ByteSlice(data)
}

// convertFromDB_Email converts storage DB format value to a *mail.Address
// and stores it at the address pointed to by target. If the zero value is
// provided, target is set to a nil pointer. If there is a problem with the
// decoding, the returned error will be of type serr.Error, and will wrap
// dao.ErrDecodingFailure. If this function returns a non-nil error, target will
// not have been modified.
func convertFromDB_Email(s string, target **mail.Address) error {
	if s == "" {
		*target = nil
		return nil
	}

	email, err := mail.ParseAddress(s)
	if err != nil {
		return serr.New("", err, dao.ErrDecodingFailure)
	}

	*target = email
	return nil
}

// convertFromDB_Role converts storage DB format value to a dao.Role and
// stores it at the address pointed to by target. If there is a problem with the
// decoding, the returned error will be of type serr.Error, and will wrap
// dao.ErrDecodingFailure. If this function returns a non-nil error, target will
// not have been modified.
func convertFromDB_Role(s string, target *dao.Role) error {
	r, err := dao.ParseRole(s)
	if err != nil {
		return serr.New("", err, dao.ErrDecodingFailure)
	}
	*target = r
	return nil
}

// convertFromDB_UUID converts storage DB format value to a uuid.UUID and
// stores it at the address pointed to by target. If there is a problem with the
// decoding, the returned error will be of type serr.Error, and will wrap
// dao.ErrDecodingFailure. If this function returns a non-nil error, target will
// not have been modified.
func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return serr.New("", err, dao.ErrDecodingFailure)
	}
	*target = u
	return nil
}

// convertFromDB_Time converts storage DB format value to a time.Time and
// stores it at the address pointed to by target. If there is a problem with the
// decoding, the returned error will be of type serr.Error, and will wrap
// dao.ErrDecodingFailure. If this function returns a non-nil error, target will
// not have been modified.
func convertFromDB_Time(i int64, target *time.Time) error {
	t := time.Unix(i, 0)
	*target = t
	return nil
}

// convertFromDB_ByteSlice converts storage DB format string to an actual byte
// slice and stores it at the address pointed to by target. If there is a
// problem with the decoding, the returned error will be of type serr.Error, and
// will wrap dao.ErrDecodingFailure. If this function returns a non-nil error,
// target will not have been modified.
func convertFromDB_ByteSlice(s string, target *[]byte) error {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return serr.New("", err, dao.ErrDecodingFailure)
	}
	*target = decoded
	return nil
}

// convertFromDB_Formula converts a storage DB format string to a
// logic.Formula and stores it at the address pointed to by target. If
// there is a problem with the decoding, the returned error will be of
// type serr.Error, and will wrap dao.ErrDecodingFailure. If this function
// returns a non-nil error, target will not have been modified.
func convertFromDB_Formula(s string, target *logic.Formula) error {
	var data []byte
	if err := convertFromDB_ByteSlice(s, &data); err != nil {
		return serr.New("decode stored to bytes", err)
	}

	var f logic.Formula
	n, err := rezi.DecBinary(data, &f)
	if err != nil {
		return serr.New("REZI decode", err, dao.ErrDecodingFailure)
	}
	if n != len(data) {
		return serr.New(fmt.Sprintf("REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(data)), dao.ErrDecodingFailure)
	}

	*target = f
	return nil
}

// convertFromDB_Formulas converts a storage DB format string to a slice of
// logic.Formula and stores it at the address pointed to by target. Errors
// behave as for convertFromDB_Formula.
func convertFromDB_Formulas(s string, target *[]logic.Formula) error {
	if s == "" {
		*target = nil
		return nil
	}

	var data []byte
	if err := convertFromDB_ByteSlice(s, &data); err != nil {
		return serr.New("decode stored to bytes", err)
	}

	var fs []logic.Formula
	n, err := rezi.DecBinary(data, &fs)
	if err != nil {
		return serr.New("REZI decode", err, dao.ErrDecodingFailure)
	}
	if n != len(data) {
		return serr.New(fmt.Sprintf("REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(data)), dao.ErrDecodingFailure)
	}

	*target = fs
	return nil
}

// convertFromDB_Steps converts a storage DB format string to a slice of
// proof.ProofStep and stores it at the address pointed to by target.
// Errors behave as for convertFromDB_Formula.
func convertFromDB_Steps(s string, target *[]proof.ProofStep) error {
	if s == "" {
		*target = nil
		return nil
	}

	var data []byte
	if err := convertFromDB_ByteSlice(s, &data); err != nil {
		return serr.New("decode stored to bytes", err)
	}

	var steps []proof.ProofStep
	n, err := rezi.DecBinary(data, &steps)
	if err != nil {
		return serr.New("REZI decode", err, dao.ErrDecodingFailure)
	}
	if n != len(data) {
		return serr.New(fmt.Sprintf("REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(data)), dao.ErrDecodingFailure)
	}

	*target = steps
	return nil
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
