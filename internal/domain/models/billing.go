package models

// BillingInfo represents billing information supplied with a payment
type BillingInfo struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}
