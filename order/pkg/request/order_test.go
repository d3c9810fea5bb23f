package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutMasksCardNumber(t *testing.T) {
	checkoutReq := Checkout{
		ShippingAddress: "123 Example Street, Springfield",
		CardNumber:      "4111111111111111",
		CardHolder:      "Alice Example",
	}

	actual, err := json.Marshal(checkoutReq)
	assert.NoError(t, err)

	decoded := map[string]string{}
	assert.NoError(t, json.Unmarshal(actual, &decoded))
	assert.EqualValues(t, "****1111", decoded["card_number"])
	assert.EqualValues(t, "4111111111111111", checkoutReq.CardNumber)
}

func TestMaskedCardKeepsLastFour(t *testing.T) {
	assert.EqualValues(t, "****4242", Checkout{CardNumber: "4242424242424242"}.MaskedCard())
	assert.EqualValues(t, "****", Checkout{CardNumber: "42"}.MaskedCard())
}
