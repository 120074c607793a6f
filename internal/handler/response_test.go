package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snippet-activity/internal/apperror"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		errType string
	}{
		{"validation", apperror.ValidationFailed("name", "name is required"), http.StatusBadRequest, "validation_error"},
		{"wrapped not found", fmt.Errorf("loading: %w", apperror.NotFound("snip", 3)), http.StatusNotFound, "not_found"},
		{"unauthorized", apperror.Unauthorized("no token"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperror.Forbidden("no capability"), http.StatusForbidden, "forbidden"},
		{"conflict", apperror.Conflict("category", 1), http.StatusConflict, "conflict"},
		{"plain error", errors.New("sqlstore: disk I/O error"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.errType, body.Error)
			assert.NotContains(t, body.Message, "sqlstore")
		})
	}
}

func TestParseOptionalID(t *testing.T) {
	id, err := parseOptionalID("categoryid", "0")
	require.NoError(t, err)
	assert.False(t, id.IsSet())

	id, err = parseOptionalID("categoryid", "12")
	require.NoError(t, err)
	assert.True(t, id.Is(12))

	_, err = parseOptionalID("categoryid", "-4")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = parseOptionalID("categoryid", "abc")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
