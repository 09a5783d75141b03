package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableserve-backend/pkg/apperror"
)

func setupContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestOK(t *testing.T) {
	c, w := setupContext(t)
	c.Set("request_id", "req-123")

	OK(c, http.StatusOK, gin.H{"balance": 5000})

	assert.Equal(t, http.StatusOK, w.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.Equal(t, "req-123", env.RequestID)
	assert.NotEmpty(t, env.Timestamp)
}

func TestError_AppError(t *testing.T) {
	c, w := setupContext(t)

	Error(c, apperror.NewTableUnavailable())

	assert.Equal(t, http.StatusConflict, w.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BKG_001", env.Error.Code)
}

func TestError_WrappedAppError(t *testing.T) {
	c, w := setupContext(t)

	wrapped := errors.Join(errors.New("outer"), apperror.NewInsufficientFunds())
	Error(c, wrapped)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestError_UnknownErrorBecomesInternal(t *testing.T) {
	c, w := setupContext(t)

	Error(c, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "SYS_002", env.Error.Code)
	// Internal causes must never leak to clients.
	assert.NotContains(t, env.Error.Message, "pq:")
}
