package server

import (
	"fmt"
	"net/http"
	"testing"

	authdomain "github.com/kahera/kahera/internal/auth/domain"
	catalogdomain "github.com/kahera/kahera/internal/catalog/domain"
	saledomain "github.com/kahera/kahera/internal/sale/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"invalid credentials", authdomain.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{"expired session", authdomain.ErrSessionExpired, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "forbidden"},
		{"duplicate user", authdomain.ErrUserExists, http.StatusConflict, "conflict"},
		{"duplicate category", catalogdomain.ErrCategoryExists, http.StatusConflict, "conflict"},
		{"lock conflict", catalogdomain.ErrConcurrencyConflict, http.StatusConflict, "concurrency_conflict"},
		{"missing product", catalogdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"missing sale", saledomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"product gone mid-sale", saledomain.ErrProductGone, http.StatusNotFound, "not_found"},
		{"bad price", catalogdomain.ErrInvalidPrice, http.StatusBadRequest, "validation_error"},
		{"empty sale", saledomain.ErrEmptySale, http.StatusBadRequest, "validation_error"},
		{"empty sale via checkout", withStatus(http.StatusUnprocessableEntity, saledomain.ErrEmptySale), http.StatusUnprocessableEntity, "validation_error"},
		{"bad checkout body", withStatus(http.StatusUnprocessableEntity, invalidRequestError()), http.StatusUnprocessableEntity, "validation_error"},
		{"unknown error", fmt.Errorf("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.typ, payload.Type)
		})
	}
}

func TestMapError_InsufficientStockIsUnprocessable(t *testing.T) {
	err := &catalogdomain.InsufficientStockError{
		ProductID:   7,
		ProductName: "Coke Sakto",
		Available:   1,
		Requested:   3,
	}

	status, payload := mapError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "insufficient_stock", payload.Type)
	assert.Equal(t, int64(7), payload.Details["product_id"])
	assert.Equal(t, 1, payload.Details["available"])
	assert.Equal(t, 3, payload.Details["requested"])
}

func TestMapError_WrappedErrorsStillMatch(t *testing.T) {
	status, payload := mapError(fmt.Errorf("list products: %w", catalogdomain.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", payload.Type)
}

func TestValidationErrorField(t *testing.T) {
	assert.Equal(t, "request", validationErrorField("invalid_request"))
	assert.Equal(t, "price", validationErrorField("invalid_price"))
	assert.Equal(t, "", validationErrorField("something_else"))
}
