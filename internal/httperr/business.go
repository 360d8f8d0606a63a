package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInactive     Kind = "inactive"
	KindUnavailable  Kind = "unavailable"
	KindConflict     Kind = "conflict"
	KindInvalidToken Kind = "invalid_token"
	KindValidation   Kind = "validation"
	KindPersistence  Kind = "persistence"
)

// BusinessError is the typed error channel between use cases and handlers,
// so callers branch on Kind/Code instead of matching message strings.
type BusinessError struct {
	Kind Kind
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func NotFoundErr(code string) error     { return BusinessError{Kind: KindNotFound, Code: code} }
func InactiveErr(code string) error     { return BusinessError{Kind: KindInactive, Code: code} }
func UnavailableErr(code string) error  { return BusinessError{Kind: KindUnavailable, Code: code} }
func ConflictErr(code string) error     { return BusinessError{Kind: KindConflict, Code: code} }
func ValidationErr(code string) error   { return BusinessError{Kind: KindValidation, Code: code} }
func InvalidTokenErr(code string) error { return BusinessError{Kind: KindInvalidToken, Code: code} }

func IsKind(err error, kind Kind) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// IsUniqueViolation detects a Postgres unique-constraint violation (23505),
// the backstop for bookings that race past the in-transaction conflict search.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
