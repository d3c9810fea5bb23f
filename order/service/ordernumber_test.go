package service

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	orderNumber, err := generateOrderNumber(now)
	require.NoError(t, err)

	pattern := fmt.Sprintf(`^ORD-%d-[A-Z0-9]{6}$`, now.UnixMilli())
	assert.Regexp(t, regexp.MustCompile(pattern), orderNumber)
}

func TestGenerateOrderNumberUniqueness(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		orderNumber, err := generateOrderNumber(now)
		require.NoError(t, err)
		assert.False(t, seen[orderNumber], "duplicate order number %s", orderNumber)
		seen[orderNumber] = true
	}
}
