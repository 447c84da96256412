package notification

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// composeOrderConfirmation renders the order confirmation email.
func composeOrderConfirmation(p OrderConfirmationPayload) (subject, bodyHTML string, err error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, "order_confirmation.html", p); err != nil {
		return "", "", fmt.Errorf("failed to render order confirmation %s: %w", p.OrderNumber, err)
	}
	return fmt.Sprintf("Order %s confirmed", p.OrderNumber), sb.String(), nil
}

// composeShippingUpdate renders the shipping update email.
func composeShippingUpdate(p ShippingUpdatePayload) (subject, bodyHTML string, err error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, "shipping_update.html", p); err != nil {
		return "", "", fmt.Errorf("failed to render shipping update %s: %w", p.OrderNumber, err)
	}
	return fmt.Sprintf("Your order %s has shipped", p.OrderNumber), sb.String(), nil
}
