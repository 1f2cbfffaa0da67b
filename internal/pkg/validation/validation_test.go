package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/pkg/apperr"
)

type lineItem struct {
	Name string `json:"name" validate:"required"`
	Qty  int    `json:"qty" validate:"gte=1"`
}

type sample struct {
	Email string     `json:"email" validate:"required,email"`
	Price *float64   `json:"price" validate:"required"`
	Items []lineItem `json:"items" validate:"min=1,dive"`
}

func TestStructJoinsMessages(t *testing.T) {
	err := Struct(&sample{Email: "nope", Items: []lineItem{{Qty: 0}}})
	require.Error(t, err)

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	msg := apperr.MessageOf(err, "")
	assert.Contains(t, msg, "email must be a valid email")
	assert.Contains(t, msg, "price is required")
	assert.Contains(t, msg, "items[0].name is required")
	assert.Contains(t, msg, "items[0].qty must be 1 or more")
}

func TestStructAcceptsZeroPointer(t *testing.T) {
	zero := 0.0
	err := Struct(&sample{Email: "a@b.co", Price: &zero, Items: []lineItem{{Name: "x", Qty: 1}}})
	assert.NoError(t, err)
}

func TestFlattenPlainError(t *testing.T) {
	assert.Equal(t, "boom", Flatten(errors.New("boom")))
}
