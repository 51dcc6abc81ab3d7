// Package dao provides data access objects for use in the turnstile
// server.
package dao

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/internal/proof"
	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
)

// Store holds all the repositories a running server needs.
type Store interface {
	Users() UserRepository
	Proofs() ProofRepository
	Theorems() TheoremRepository
	Close() error
}

// UserRepository persists proof-editor accounts.
type UserRepository interface {
	// Create creates a new User. All attributes except for auto-generated
	// fields are taken from the provided User.
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)

	// Close closes the connection.
	Close() error
}

type Role int

const (
	Guest Role = iota
	Unverified
	Normal

	Admin Role = 100
)

func (r Role) String() string {
	switch r {
	case Guest:
		return "guest"
	case Unverified:
		return "unverified"
	case Normal:
		return "normal"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

func ParseRole(s string) (Role, error) {
	check := strings.ToLower(s)
	switch check {
	case "guest":
		return Guest, nil
	case "unverified":
		return Unverified, nil
	case "normal":
		return Normal, nil
	case "admin":
		return Admin, nil
	default:
		return Guest, fmt.Errorf("must be one of 'guest', 'unverified', 'normal', or 'admin'")
	}
}

type User struct {
	ID             uuid.UUID     // PK, NOT NULL
	Username       string        // UNIQUE, NOT NULL
	Password       string        // NOT NULL
	Email          *mail.Address // NOT NULL
	Role           Role          // NOT NULL
	Created        time.Time     // NOT NULL
	Modified       time.Time
	LastLogoutTime time.Time // NOT NULL DEFAULT NOW()
	LastLoginTime  time.Time // NOT NULL
}

// ProofRepository persists a user's saved proof attempts, complete or
// in-progress.
type ProofRepository interface {
	Create(ctx context.Context, p ProofDocument) (ProofDocument, error)
	GetByID(ctx context.Context, id uuid.UUID) (ProofDocument, error)
	GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]ProofDocument, error)
	GetAll(ctx context.Context) ([]ProofDocument, error)
	Update(ctx context.Context, id uuid.UUID, p ProofDocument) (ProofDocument, error)
	Delete(ctx context.Context, id uuid.UUID) (ProofDocument, error)
	Close() error
}

// ProofDocument is a saved attempt at a proof: the premises and goal
// conclusion it targets, plus whatever steps have been written so far.
type ProofDocument struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	Premises   []logic.Formula
	Conclusion logic.Formula
	Steps      []proof.ProofStep
	Created    time.Time
	Modified   time.Time
}

// TheoremRepository persists runtime-editable theorem-library entries,
// a database-backed companion to the bundled TOML theorem library.
type TheoremRepository interface {
	Create(ctx context.Context, t TheoremRecord) (TheoremRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (TheoremRecord, error)
	GetAll(ctx context.Context) ([]TheoremRecord, error)
	Delete(ctx context.Context, id uuid.UUID) (TheoremRecord, error)
	Close() error
}

// TheoremRecord is a persisted proof.ProvenTheorem plus bookkeeping
// fields.
type TheoremRecord struct {
	ID         uuid.UUID
	Name       string
	Premises   []logic.Formula
	Conclusion logic.Formula
	Created    time.Time
}

// ProvenTheorem converts r to the engine-facing value the proof checker
// consults for "theorem" rule citations.
func (r TheoremRecord) ProvenTheorem() proof.ProvenTheorem {
	return proof.ProvenTheorem{
		ID:         r.ID.String(),
		Name:       r.Name,
		Premises:   r.Premises,
		Conclusion: r.Conclusion,
	}
}
