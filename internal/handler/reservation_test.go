package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", formatCents(0))
	assert.Equal(t, "0.05", formatCents(5))
	assert.Equal(t, "120.00", formatCents(12000))
	assert.Equal(t, "1234.56", formatCents(123456))
	assert.Equal(t, "-10.00", formatCents(-1000))
}
