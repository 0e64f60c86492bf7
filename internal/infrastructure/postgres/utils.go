package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Sastreria-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isConcurrencyFailure serialización (40001), deadlock (40P01) o lock no disponible (55P03).
func isConcurrencyFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

// wrapPgError envuelve err con op y lo traduce a un error de dominio cuando aplica.
func wrapPgError(op string, err error) error {
	switch {
	case isConcurrencyFailure(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrDuplicate, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
