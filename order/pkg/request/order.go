package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

type Checkout struct {
	ShippingAddress string `validate:"required,min=10" json:"shipping_address"`
	CardNumber      string `validate:"required,credit_card" json:"card_number"`
	CardHolder      string `validate:"required"        json:"card_holder"`
	Notes           string `validate:"max=500"         json:"notes"`
}

func (c Checkout) MarshalZerologObject(e *zerolog.Event) {
	e.Str("shipping_address", c.ShippingAddress).
		Str("card_number", maskCard(c.CardNumber)).
		Str("card_holder", c.CardHolder)
}

func (c Checkout) MarshalJSON() ([]byte, error) {
	c.CardNumber = maskCard(c.CardNumber)
	type C Checkout
	return json.Marshal(C(c))
}

// MaskedCard keeps only the last four digits, the form safe to persist and log.
func (c Checkout) MaskedCard() string {
	return maskCard(c.CardNumber)
}

func maskCard(number string) string {
	if len(number) <= 4 {
		return "****"
	}
	return "****" + number[len(number)-4:]
}

type UpdateOrderStatus struct {
	Status string `validate:"required,oneof=pending processing completed cancelled" json:"status"`
}

type UpdateOrder struct {
	ShippingAddress string `validate:"required,min=10" json:"shipping_address"`
	Notes           string `validate:"max=500"         json:"notes"`
}
