package dto

import (
	"net/http"

	"github.com/erpsync/backend/internal/domain/shared"
)

// ErrCodeBadRequest marks malformed requests rejected before they
// reach the engine (unparseable JSON, bad path or query parameters)
const ErrCodeBadRequest = "BAD_REQUEST"

// ErrorCodeHTTPStatus maps the engine's error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:    http.StatusBadRequest,
	ErrCodeBadRequest:        http.StatusBadRequest,
	shared.CodeMissingParent: http.StatusUnprocessableEntity,
	shared.CodeConsistency:   http.StatusUnprocessableEntity,
	shared.CodeDuplicateKey:  http.StatusConflict,
	shared.CodeRangeOverlap:  http.StatusConflict,
	shared.CodeNotFound:      http.StatusNotFound,
	shared.CodeTransient:     http.StatusServiceUnavailable,
	shared.CodePersistence:   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 for
// anything unmapped
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
