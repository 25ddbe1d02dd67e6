package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erpsync/backend/internal/domain/shared"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{shared.CodeValidation, http.StatusBadRequest},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{shared.CodeMissingParent, http.StatusUnprocessableEntity},
		{shared.CodeConsistency, http.StatusUnprocessableEntity},
		{shared.CodeDuplicateKey, http.StatusConflict},
		{shared.CodeRangeOverlap, http.StatusConflict},
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeTransient, http.StatusServiceUnavailable},
		{shared.CodePersistence, http.StatusInternalServerError},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GetHTTPStatus(tt.code), tt.code)
	}
}

func TestNewErrorResponseDefaultsErrors(t *testing.T) {
	resp := NewErrorResponse("storage operation failed", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, []string{"storage operation failed"}, resp.Errors)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestNewSuccessResponseCarriesNoErrors(t *testing.T) {
	resp := NewSuccessResponse("department retrieved", map[string]int{"NUMDPTO": 1})
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Errors)
	assert.NotNil(t, resp.Data)
}
