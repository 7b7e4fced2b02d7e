package booking

// PricingType describes how a service is priced.
type PricingType string

const (
	PricingHourly PricingType = "hourly"
	PricingFixed  PricingType = "fixed"
	PricingQuote  PricingType = "quote"
)

// IsValid returns true if the pricing type is recognized.
func (p PricingType) IsValid() bool {
	switch p {
	case PricingHourly, PricingFixed, PricingQuote:
		return true
	}
	return false
}

// PaymentStatus tracks the payment collaborator's view of the booking. It is
// updated only from payment events, never by the lifecycle engine.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentDisputed PaymentStatus = "disputed"
)

// IsValid returns true if the payment status is recognized.
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentRefunded, PaymentDisputed:
		return true
	}
	return false
}
