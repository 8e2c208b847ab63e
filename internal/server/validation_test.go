package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name     string `validate:"required"`
	Capacity int    `validate:"required,min=1"`
	Category string `validate:"required,oneof=gym coaching library"`
}

func TestValidateStructOK(t *testing.T) {
	errs := ValidateStruct(sampleRequest{Name: "Downtown Gym", Capacity: 20, Category: "gym"})
	assert.Empty(t, errs)
}

func TestValidateStructMissingFields(t *testing.T) {
	errs := ValidateStruct(sampleRequest{})
	require.Len(t, errs, 3)
	assert.Equal(t, "Name", errs[0].Field)
	assert.Equal(t, "required", errs[0].Tag)
	assert.Equal(t, "Name is required", errs[0].Message)
}

func TestValidateStructMessages(t *testing.T) {
	errs := ValidateStruct(sampleRequest{Name: "Gym", Capacity: -1, Category: "pool"})
	require.Len(t, errs, 2)
	assert.Equal(t, "Capacity must be at least 1", errs[0].Message)
	assert.Equal(t, "Category must be one of: gym coaching library", errs[1].Message)
}
