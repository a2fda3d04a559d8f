package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents    int
		expected string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{1500, "$15.00"},
		{123456, "$1,234.56"},
		{100000000, "$1,000,000.00"},
		{-2500, "-$25.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatCents(tt.cents))
	}
}

func TestBuildOrderConfirmationBody(t *testing.T) {
	items := []OrderItem{
		{ProductID: "prod-1", Name: "Classic Tee", Quantity: 2, Price: 1500},
		{ProductID: "prod-2", Quantity: 1, Price: 4500},
	}

	body := BuildOrderConfirmationBody("order-123", 7500, items)

	assert.Contains(t, body, "order-123")
	assert.Contains(t, body, "Classic Tee")
	// Item with no name falls back to the product ID
	assert.Contains(t, body, "prod-2")
	assert.Contains(t, body, "$75.00")
	assert.Contains(t, body, "$30.00") // 2 x $15.00
}

func TestBuildRefundBody(t *testing.T) {
	body := BuildRefundBody("issue-1", 3000)

	assert.Contains(t, body, "issue-1")
	assert.Contains(t, body, "$30.00")
}

func TestBuildInfoRequestBody(t *testing.T) {
	withNote := BuildInfoRequestBody("issue-1", "Please attach a photo of the full shirt")
	assert.Contains(t, withNote, "Please attach a photo")

	withoutNote := BuildInfoRequestBody("issue-1", "")
	assert.Contains(t, withoutNote, "issue-1")
}
