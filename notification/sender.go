package notification

import (
	"context"
	"fmt"

	"github.com/shopkit/notifier/pkg/email"
)

// Sender performs the actual delivery of one notification: it composes
// the kind-specific email and hands it to the transport. It is the
// single source of truth for how a notification gets sent — both the
// queue handlers and the direct-send fallback go through it, so the two
// paths can never drift apart.
type Sender struct {
	mailer email.EmailSender
}

// NewSender creates a Sender on top of the given transport.
func NewSender(mailer email.EmailSender) (*Sender, error) {
	if mailer == nil {
		return nil, ErrSenderNil
	}
	return &Sender{mailer: mailer}, nil
}

// Send validates, composes, and delivers a notification of the given
// kind synchronously. It blocks until the provider round-trip resolves
// and propagates any transport failure to the caller.
func (s *Sender) Send(ctx context.Context, kind Kind, payload any) error {
	typed, err := decodePayload(kind, payload)
	if err != nil {
		return err
	}
	return s.deliver(ctx, typed)
}

// deliver routes an already validated, typed payload to its
// kind-specific send path.
func (s *Sender) deliver(ctx context.Context, typed any) error {
	switch p := typed.(type) {
	case OrderConfirmationPayload:
		return s.SendOrderConfirmation(ctx, p)
	case ShippingUpdatePayload:
		return s.SendShippingUpdate(ctx, p)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, typed)
	}
}

// SendOrderConfirmation composes and sends an order confirmation email.
func (s *Sender) SendOrderConfirmation(ctx context.Context, p OrderConfirmationPayload) error {
	subject, body, err := composeOrderConfirmation(p)
	if err != nil {
		return err
	}

	return s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   p.Email,
		Subject:  subject,
		BodyHTML: body,
		Tag:      KindOrderConfirmation.String(),
	})
}

// SendShippingUpdate composes and sends a shipping update email.
func (s *Sender) SendShippingUpdate(ctx context.Context, p ShippingUpdatePayload) error {
	subject, body, err := composeShippingUpdate(p)
	if err != nil {
		return err
	}

	return s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   p.Email,
		Subject:  subject,
		BodyHTML: body,
		Tag:      KindShippingUpdate.String(),
	})
}
