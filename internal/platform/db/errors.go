package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// Unique constraint names declared in schema.sql.
const (
	ConstraintOrderNumber   = "orders_number_key"
	ConstraintBillNumber    = "bills_number_key"
	ConstraintPaymentNumber = "payments_number_key"
	ConstraintPaymentBill   = "payments_bill_id_key"
)

// Classify maps well-known PostgreSQL failures onto the shared error taxonomy.
// Unrecognised errors are returned unchanged.
func Classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		switch {
		case pgErr.ConstraintName == ConstraintPaymentBill:
			return fmt.Errorf("%w: %s", shared.ErrAlreadySettled, pgErr.Detail)
		case strings.HasSuffix(pgErr.ConstraintName, "_number_key"):
			return fmt.Errorf("%w: %s", shared.ErrDuplicateNumber, pgErr.Detail)
		}
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", shared.ErrNotFound, pgErr.Detail)
	case codeCheckViolation:
		return shared.NewValidationError(checkField(pgErr), "violates "+pgErr.ConstraintName)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %s", shared.ErrContention, pgErr.Message)
	}
	return err
}

// checkField names the column behind a CHECK violation. Postgres names
// column checks <table>_<column>_check.
func checkField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	name := strings.TrimSuffix(pgErr.ConstraintName, "_check")
	if table := pgErr.TableName; table != "" {
		name = strings.TrimPrefix(name, table+"_")
	}
	if name == "" {
		return "body"
	}
	return name
}
