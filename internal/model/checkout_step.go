package model

// CheckoutStep names one step of the checkout flow.  Each step maps to the
// status the reservation enters when the shopper advances past it; the
// mapping itself lives in the checkout gate.
type CheckoutStep string

const (
	// StepCustomize covers dates, rooms, traveler counts and add-ons.
	StepCustomize CheckoutStep = "customize"
	// StepTravelers covers per-traveler personal data entry.
	StepTravelers CheckoutStep = "travelers"
	// StepConfirm is the final confirmation step.
	StepConfirm CheckoutStep = "confirm"
)
