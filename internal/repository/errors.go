package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Store errors. The in-memory store returns the same values.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("email already exists")
	ErrWalletNotFound = errors.New("wallet not found")
	ErrAPIKeyNotFound = errors.New("API key not found")

	// ErrBalanceOutOfRange means a transaction would move a wallet balance
	// outside NUMERIC(12,2). Nothing is written.
	ErrBalanceOutOfRange = errors.New("wallet balance out of range")
)

// PostgreSQL SQLSTATE codes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNumericOutOfRange   = "22003"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == codeUniqueViolation
}

func isNumericOutOfRange(err error) bool {
	return pgErrorCode(err) == codeNumericOutOfRange
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == codeForeignKeyViolation
}
