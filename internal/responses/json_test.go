package responses

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidharth07/verbiforge-sub000/internal/services"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		services.ErrInvalidInput:      http.StatusBadRequest,
		services.ErrUnauthorized:      http.StatusUnauthorized,
		services.ErrForbidden:         http.StatusForbidden,
		services.ErrNotFound:          http.StatusNotFound,
		services.ErrConflict:          http.StatusConflict,
		services.ErrInvalidTransition: http.StatusConflict,
		errors.New("boom"):            http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}

func TestErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, slog.New(slog.NewTextHandler(io.Discard, nil)), errors.New("pq: password authentication failed"), "Could not load project")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "internal server error", body.Error)
	assert.True(t, c.IsAborted())
}
