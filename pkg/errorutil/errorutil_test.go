package errorutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"validation", NewValidationError("bad input", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"not found", NewNotFound("ticket", nil), "NOT_FOUND", http.StatusNotFound},
		{"unavailable", NewServiceUnavailable("email service is not configured"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
		{"send failure", NewSendFailure(errors.New("smtp down")), "SEND_FAILED", http.StatusBadGateway},
		{"internal", NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var de *DomainError
			require.True(t, errors.As(tt.err, &de))
			assert.Equal(t, tt.wantCode, de.Code)
			assert.Equal(t, tt.wantStatus, de.HTTPStatus)
		})
	}
}

func TestSendFailureKeepsCause(t *testing.T) {
	cause := errors.New("smtp down")
	err := NewSendFailure(cause)

	assert.Contains(t, err.Error(), "failed to send email: smtp down")
	assert.True(t, errors.Is(err, cause))
}

func TestToDomainError(t *testing.T) {
	de := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", de.Code)

	de = ToDomainError(errors.New("something broke"))
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)

	assert.Nil(t, ToDomainError(nil))

	original := NewValidationError("bad", nil)
	assert.Same(t, original, ToDomainError(original))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("ticket", nil)))
	assert.True(t, IsNotFound(pgx.ErrNoRows))
	assert.False(t, IsNotFound(NewValidationError("bad", nil)))
	assert.False(t, IsNotFound(errors.New("other")))
}
