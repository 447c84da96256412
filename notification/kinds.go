package notification

// Kind identifies a notification type. The set is closed: every Kind
// has exactly one payload schema, one template, and one queue handler.
// Jobs arriving from outside the process boundary may still carry an
// unknown string, which the worker dead-letters at dispatch time.
type Kind string

const (
	KindOrderConfirmation Kind = "order_confirmation"
	KindShippingUpdate    Kind = "shipping_update"
)

// Kinds returns all known notification kinds.
func Kinds() []Kind {
	return []Kind{KindOrderConfirmation, KindShippingUpdate}
}

// Valid reports whether k is a known notification kind.
func (k Kind) Valid() bool {
	switch k {
	case KindOrderConfirmation, KindShippingUpdate:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}
