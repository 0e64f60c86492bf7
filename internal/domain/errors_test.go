package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Sastreria-api/internal/domain"
)

func TestValidationError_EsErrInvalidInput(t *testing.T) {
	err := domain.NewValidationError("new_status", "estado desconocido")
	wrapped := fmt.Errorf("cambiar estado: %w", err)

	assert.True(t, errors.Is(wrapped, domain.ErrInvalidInput))

	var ve *domain.ValidationError
	assert.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "estado desconocido", ve.Fields["new_status"])
}

func TestValidationError_MensajeOrdenado(t *testing.T) {
	ve := &domain.ValidationError{}
	assert.False(t, ve.HasErrors())
	ve.Add("store_id", "requerido")
	ve.Add("lines", "al menos una prenda")

	assert.True(t, ve.HasErrors())
	assert.Equal(t, "entrada inválida (lines: al menos una prenda; store_id: requerido)", ve.Error())
}

func TestErrInvalidTransition_EsConflicto(t *testing.T) {
	assert.True(t, errors.Is(domain.ErrInvalidTransition, domain.ErrConflict))
	assert.False(t, errors.Is(domain.ErrConflict, domain.ErrInvalidTransition))
}
