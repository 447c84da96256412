package notification

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared across payload checks; the instance is safe for
// concurrent use and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// OrderItem is one purchased line item.
type OrderItem struct {
	Title        string  `json:"title" validate:"required"`
	VariantTitle string  `json:"variantTitle,omitempty"`
	Quantity     int     `json:"quantity" validate:"required,gt=0"`
	Price        float64 `json:"price" validate:"gte=0"`
}

// ShippingAddress is the destination block rendered into order emails.
type ShippingAddress struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Address1  string `json:"address1" validate:"required"`
	City      string `json:"city" validate:"required"`
	Country   string `json:"country" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
}

// OrderConfirmationPayload is the data for an order confirmation email.
type OrderConfirmationPayload struct {
	ID              string          `json:"id" validate:"required"`
	OrderNumber     string          `json:"orderNumber" validate:"required"`
	Email           string          `json:"email" validate:"required,email"`
	Total           float64         `json:"total" validate:"gte=0"`
	Currency        string          `json:"currency" validate:"required"`
	Items           []OrderItem     `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress" validate:"required"`
}

// ShippingUpdatePayload is the data for a shipping update email.
// Tracking details are optional: carriers often assign them after the
// shipment notification fires.
type ShippingUpdatePayload struct {
	Email             string `json:"email" validate:"required,email"`
	OrderNumber       string `json:"orderNumber" validate:"required"`
	TrackingNumber    string `json:"trackingNumber,omitempty"`
	Carrier           string `json:"carrier,omitempty"`
	EstimatedDelivery string `json:"estimatedDelivery,omitempty"`
}

// decodePayload normalizes an arbitrary payload value into the typed
// struct for the given kind and validates it against the kind's schema.
// The round-trip through JSON accepts both typed structs and generic
// maps from callers while guaranteeing the enqueued bytes match what
// the handler will decode.
func decodePayload(kind Kind, payload any) (any, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: payload is required", ErrValidation)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not serializable: %v", ErrValidation, err)
	}

	var typed any
	switch kind {
	case KindOrderConfirmation:
		var p OrderConfirmationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: malformed %s payload: %v", ErrValidation, kind, err)
		}
		typed = p
	case KindShippingUpdate:
		var p ShippingUpdatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: malformed %s payload: %v", ErrValidation, kind, err)
		}
		typed = p
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	if err := validate.Struct(typed); err != nil {
		return nil, fmt.Errorf("%w: invalid %s payload: %v", ErrValidation, kind, err)
	}

	return typed, nil
}
