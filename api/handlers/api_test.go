package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/remlic/remlic-api/licenses"
)

func TestHealthCheckHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/health", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(healthCheckHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"alive": true}`, rr.Body.String())
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&licenses.QuotaExceededError{Category: licenses.CategoryVehicles, Limit: 2}, http.StatusForbidden},
		{licenses.ErrAccessDenied, http.StatusPaymentRequired},
		{licenses.ErrDuplicateValue, http.StatusConflict},
		{licenses.ErrInvalidDate, http.StatusBadRequest},
		{licenses.ErrUnknownCategory, http.StatusBadRequest},
		{licenses.ErrNotFound, http.StatusNotFound},
		{licenses.ErrUnauthenticated, http.StatusUnauthorized},
		{licenses.ErrFetchFailed, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusForError(tt.err), "error %v", tt.err)
	}
}
