package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	orderNumberPrefix  = "ORD"
	orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderNumberRandLen = 6
)

// generateOrderNumber produces a human readable identifier such as
// ORD-1735689600000-K3F9ZQ. The millisecond timestamp keeps numbers roughly
// sortable; the random suffix disambiguates orders placed in the same
// millisecond. Uniqueness is ultimately enforced by the database constraint.
func generateOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, orderNumberRandLen)
	max := big.NewInt(int64(len(orderNumberCharset)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed generating order number with error=%w", err)
		}
		suffix[i] = orderNumberCharset[n.Int64()]
	}
	return fmt.Sprintf("%s-%d-%s", orderNumberPrefix, now.UnixMilli(), suffix), nil
}
