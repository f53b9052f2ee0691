package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST: invalid email (email)", BadRequest("invalid email", "email").Error())
	assert.Equal(t, "FORBIDDEN: nope", Forbidden("nope").Error())

	var nilErr *APIError
	assert.Equal(t, "", nilErr.Error())
}

func TestConstructorsCarryStatus(t *testing.T) {
	cases := map[*APIError]int{
		BadRequest("x", ""): http.StatusBadRequest,
		Unauthorized("x"):   http.StatusUnauthorized,
		Forbidden("x"):      http.StatusForbidden,
		NotFound("x", ""):   http.StatusNotFound,
		Internal("x"):       http.StatusInternalServerError,
	}
	for err, status := range cases {
		assert.Equal(t, status, err.HTTPStatus, err.Code)
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("verify: %w", NotFound("club not found", "42"))

	var apiErr *APIError
	require.True(t, errors.As(wrapped, &apiErr))
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "42", apiErr.Details)
}
