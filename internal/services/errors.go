package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// isConstraintViolation detects check and not-null constraint violations across vendors. Callers
// wrap them in ErrConstraintViolation, which is reported as a storage failure.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil {
		switch pgErr.Code {
		case "23502", "23514": // not_null_violation, check_violation
			return true
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil {
		switch myErr.Number {
		case 1048, 3819: // ER_BAD_NULL_ERROR, ER_CHECK_CONSTRAINT_VIOLATED
			return true
		}
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "check constraint") ||
		strings.Contains(lower, "not null constraint")
}
