package validator

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type genderPayload struct {
	Gender string `validate:"required,gender"`
}

type pricingPayload struct {
	Option string `validate:"required,pricing_option"`
}

type amountPayload struct {
	Amount *decimal.Decimal `validate:"required,nonnegative"`
}

type coordsPayload struct {
	Latitude  *float64 `validate:"required,gte=-90,lte=90"`
	Longitude *float64 `validate:"required,gte=-180,lte=180"`
}

func TestGenderTag(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, Validate(ctx, genderPayload{Gender: "male"}))
	assert.NoError(t, Validate(ctx, genderPayload{Gender: "female"}))
	assert.Error(t, Validate(ctx, genderPayload{Gender: "other"}))
	assert.Error(t, Validate(ctx, genderPayload{Gender: "MALE"}))
}

func TestPricingOptionTag(t *testing.T) {
	ctx := context.Background()

	for _, opt := range []string{
		"full", "full_food", "full_accommodation",
		"full_food_accommodation", "daily", "daily_food",
	} {
		assert.NoError(t, Validate(ctx, pricingPayload{Option: opt}), opt)
	}
	assert.Error(t, Validate(ctx, pricingPayload{Option: "weekend"}))
}

func TestNonNegativeTag(t *testing.T) {
	ctx := context.Background()

	zero := decimal.Zero
	pos := decimal.NewFromFloat(10.50)
	neg := decimal.NewFromInt(-1)
	negFraction := decimal.RequireFromString("-0.01")

	assert.NoError(t, Validate(ctx, amountPayload{Amount: &zero}))
	assert.NoError(t, Validate(ctx, amountPayload{Amount: &pos}))
	assert.Error(t, Validate(ctx, amountPayload{Amount: &neg}))
	assert.Error(t, Validate(ctx, amountPayload{Amount: &negFraction}))
	assert.Error(t, Validate(ctx, amountPayload{Amount: nil}))
}

func coords(lat, lng float64) coordsPayload {
	return coordsPayload{Latitude: &lat, Longitude: &lng}
}

func TestCoordinateBounds(t *testing.T) {
	ctx := context.Background()

	// Boundary values are valid.
	assert.NoError(t, Validate(ctx, coords(-90, -180)))
	assert.NoError(t, Validate(ctx, coords(90, 180)))
	assert.NoError(t, Validate(ctx, coords(0, 0)))

	// Just past the boundary is not.
	assert.Error(t, Validate(ctx, coords(-90.0001, 0)))
	assert.Error(t, Validate(ctx, coords(90.0001, 0)))
	assert.Error(t, Validate(ctx, coords(0, -180.0001)))
	assert.Error(t, Validate(ctx, coords(0, 180.0001)))
}
