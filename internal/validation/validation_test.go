package validation

import (
	"strings"
	"testing"

	"townsquare/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type listing struct {
	Name  string          `json:"name" validate:"notblank,max=120"`
	Price decimal.Decimal `json:"price" validate:"price"`
}

type profile struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Age      int    `json:"age" validate:"gte=0,lte=150"`
}

func TestStruct_Price(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		price   string
		wantErr bool
	}{
		{"Whole", "10", false},
		{"Two Places", "10.99", false},
		{"Trailing Zero", "5.50", false},
		{"Three Places", "1.999", true},
		{"Zero", "0", true},
		{"Negative", "-3.00", true},
		{"Too Large", "99999999999999999", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(listing{Name: "Lamp", Price: decimal.RequireFromString(tt.price)})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
				assert.Contains(t, err.Error(), "price")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStruct_Messages(t *testing.T) {
	t.Parallel()

	err := Struct(listing{Name: "   ", Price: decimal.NewFromInt(1)})
	assert.EqualError(t, err, "name is required")

	err = Struct(listing{Name: strings.Repeat("x", 121), Price: decimal.NewFromInt(1)})
	assert.EqualError(t, err, "name must be at most 120 characters")

	err = Struct(profile{Username: "no spaces!", Email: "a@b.co", Age: 20})
	assert.EqualError(t, err, "username must be 3-50 letters, digits or underscores")

	err = Struct(profile{Username: "valid_name", Email: "nope", Age: 20})
	assert.EqualError(t, err, "email must be a valid email address")

	err = Struct(profile{Username: "valid_name", Email: "a@b.co", Age: -1})
	assert.EqualError(t, err, "age is out of range")

	assert.NoError(t, Struct(profile{Username: "valid_name", Email: "a@b.co", Age: 20}))
}
