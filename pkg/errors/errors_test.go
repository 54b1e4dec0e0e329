package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConstructorsSetStatus(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		name   string
		err    *AppError
		typ    ErrorType
		status int
	}{
		{"malformed input", NewMalformedInputError("id is required"), ErrorTypeMalformedInput, http.StatusBadRequest},
		{"store unavailable", NewStoreUnavailableError("HSET", cause), ErrorTypeStoreUnavailable, http.StatusServiceUnavailable},
		{"store write", NewStoreWriteError("RPUSH", cause), ErrorTypeStoreWrite, http.StatusInternalServerError},
		{"store read", NewStoreReadError("LRANGE", cause), ErrorTypeStoreRead, http.StatusInternalServerError},
		{"internal", NewInternalError("panic"), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.StackTrace)
		})
	}
}

func TestTypeChecksThroughWrapping(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("command handler failed: %w", NewStoreUnavailableError("HSET", cause))

	assert.NotNil(t, GetAppError(err))
	assert.True(t, IsStoreUnavailable(err))
	assert.False(t, IsStoreWrite(err))
	assert.ErrorIs(t, err, cause)
}

func TestErrorHandler(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	t.Run("app error uses its status and type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/set", nil)
		req.Header.Set("X-Request-ID", "req-1")
		w := httptest.NewRecorder()

		h.Handle(w, req, NewMalformedInputError("id is required"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Error)
		assert.Equal(t, "MALFORMED_INPUT", body.Type)
		assert.Equal(t, "req-1", body.RequestID)
		assert.Nil(t, body.Details)
	})

	t.Run("code and details are rendered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/set", nil)
		w := httptest.NewRecorder()

		err := NewStoreWriteError("RPUSH", stderrors.New("WRONGTYPE")).
			WithCode("WRONG_KEY_TYPE").
			WithDetails(map[string]interface{}{"operation": "RPUSH", "key": "flowy:a_children"})
		h.Handle(w, req, err)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "WRONG_KEY_TYPE", body.Code)
		assert.Equal(t, "flowy:a_children", body.Details["key"])
		assert.NotContains(t, w.Body.String(), "WRONGTYPE")
	})

	t.Run("unknown error hides the message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/a", nil)
		w := httptest.NewRecorder()

		h.Handle(w, req, stderrors.New("secret detail"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret detail")
	})

	t.Run("debug mode exposes the cause", func(t *testing.T) {
		dh := NewErrorHandler(zap.NewNop(), true)
		req := httptest.NewRequest(http.MethodGet, "/a", nil)
		w := httptest.NewRecorder()

		dh.Handle(w, req, NewStoreReadError("HGET", stderrors.New("wrong type")))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "wrong type")
	})

	t.Run("unavailable store asks the client to retry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/a", nil)
		w := httptest.NewRecorder()

		h.Handle(w, req, NewStoreUnavailableError("HGET", stderrors.New("dial tcp: refused")))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
		assert.NotContains(t, w.Body.String(), "refused")
	})

	t.Run("middleware recovers panics", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/a", nil)
		w := httptest.NewRecorder()

		h.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("test panic")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL")
	})
}
