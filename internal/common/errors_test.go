package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"bad mime", InputError(CodeUnsupportedMime, "x", nil), http.StatusBadRequest},
		{"too large", InputError(CodePayloadTooLarge, "x", nil), http.StatusRequestEntityTooLarge},
		{"wrong method", InputError(CodeMethodNotAllowed, "x", nil), http.StatusMethodNotAllowed},
		{"origin", InputError(CodeOriginNotAllowed, "x", nil), http.StatusForbidden},
		{"upstream", UpstreamError("x", nil), http.StatusServiceUnavailable},
		{"shape", ShapeError(CodeMalformedResponse, "x", nil), http.StatusBadGateway},
		{"provisioning", ProvisioningError(CodeManualProvisioning, "x", "hint", nil), http.StatusBadRequest},
		{"write", WriteError(CodeWriteFailed, "x", nil), http.StatusBadRequest},
		{"internal", NewAppError(KindInternal, CodeInternal, "x", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestAppError_Retryable(t *testing.T) {
	assert.True(t, UpstreamError("down", nil).Retryable())
	assert.False(t, ShapeError(CodeMalformedResponse, "bad", nil).Retryable())
	assert.False(t, InputError(CodeUnsupportedMime, "bad", nil).Retryable())
}

func TestAsAppError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, AsAppError(nil))
	})

	t.Run("wrapped app error is found", func(t *testing.T) {
		inner := WriteError(CodeWriteFailed, "insert failed", errors.New("boom"))
		wrapped := fmt.Errorf("save: %w", inner)

		got := AsAppError(wrapped)
		require.NotNil(t, got)
		assert.Same(t, inner, got)
		assert.True(t, IsKind(wrapped, KindStorageWrite))
	})

	t.Run("raw error becomes internal", func(t *testing.T) {
		raw := errors.New("raw")
		got := AsAppError(raw)
		assert.Equal(t, KindInternal, got.Kind)
		assert.ErrorIs(t, got, raw)
	})
}

func TestAppError_ErrorString(t *testing.T) {
	err := ProvisioningError(CodeManualProvisioning, "create the table manually", "CREATE TABLE ...", errors.New("permission denied"))
	assert.Equal(t, "MANUAL_PROVISIONING_REQUIRED: create the table manually: permission denied", err.Error())
	assert.Equal(t, "CREATE TABLE ...", err.Hint)
}
