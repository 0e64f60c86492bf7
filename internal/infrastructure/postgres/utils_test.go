package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Sastreria-api/internal/domain"
)

func TestWrapPgError(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		err := wrapPgError("update order", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, domain.ErrConflict, code)
	}

	err := wrapPgError("insert order", &pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NotErrorIs(t, err, domain.ErrConflict)

	plain := errors.New("conn reset")
	err = wrapPgError("select", plain)
	assert.ErrorIs(t, err, plain)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "select: conn reset", err.Error())
}
