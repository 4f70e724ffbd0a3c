package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad", nil), KindValidation},
		{"wrapped forbidden", fmt.Errorf("ctx: %w", Forbidden("no")), KindForbidden},
		{"plain error", errors.New("boom"), KindInternal},
		{"not found", NotFound("missing"), KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindValidation))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindUnauthenticated))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(KindForbidden))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(KindConflict))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindInternal))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Kind("other")))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("db down")
	err := Internal(cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", err.Message)
	assert.Contains(t, err.Error(), "db down")
}
