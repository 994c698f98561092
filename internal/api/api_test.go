package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idilsaglam/tada/internal/accounts"
	"github.com/idilsaglam/tada/internal/store"
)

func TestEncodeDecodeKnownErrors(t *testing.T) {
	for _, c := range codes {
		t.Run(c.code, func(t *testing.T) {
			status, body := Encode(fmt.Errorf("wrapped: %w", c.err))
			assert.Equal(t, c.status, status)
			assert.Equal(t, c.code, body.Code)
			assert.ErrorIs(t, Decode(status, body), c.err)
		})
	}
}

func TestEncodeHidesInternalErrors(t *testing.T) {
	status, body := Encode(errors.New("disk on fire"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", body.Error)
}

func TestDecodeFallbacks(t *testing.T) {
	assert.ErrorIs(t, Decode(http.StatusBadGateway, ErrorBody{}), store.ErrUnavailable)
	assert.ErrorIs(t, Decode(http.StatusUnauthorized, ErrorBody{}), ErrUnauthenticated)
	assert.ErrorIs(t, Decode(http.StatusNotFound, ErrorBody{}), store.ErrNotFound)
	assert.EqualError(t, Decode(http.StatusTeapot, ErrorBody{Error: "short and stout"}), "short and stout")
	assert.ErrorIs(t, Decode(http.StatusConflict, ErrorBody{Code: "email_in_use"}), accounts.ErrEmailInUse)
}
