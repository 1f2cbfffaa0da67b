package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = NotFound("Product not found")

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("dup"), http.StatusBadRequest},
		{Unauthorized("no"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{New(KindGateway, "upstream"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("gone")), http.StatusNotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestIsMatchesByKindAndMessage(t *testing.T) {
	err := fmt.Errorf("get product 4: %w", Wrap(KindNotFound, "Product not found", errors.New("record not found")))
	assert.ErrorIs(t, err, errSentinel)
	assert.NotErrorIs(t, err, NotFound("Order not found"))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "gone", MessageOf(fmt.Errorf("x: %w", NotFound("gone")), "fallback"))
	assert.Equal(t, "fallback", MessageOf(errors.New("db down"), "fallback"))
}
