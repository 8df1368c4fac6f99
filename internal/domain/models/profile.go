package models

import "time"

// CustomerProfile is the local cross-reference between a contact and the
// gateway's server-side customer profile. At most one row exists per contact;
// it is looked up before any remote creation to avoid duplicate remote state.
type CustomerProfile struct {
	ID              int64
	ContactID       int64
	RemoteProfileID string
	RefID           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PaymentProfile is the local cross-reference for a stored payment
// instrument. Unique per (contact, remote payment profile id).
type PaymentProfile struct {
	ID               int64
	ContactID        int64
	CustomerProfile  int64 // customer_profiles row id
	RemoteProfileID  string
	CardNumberMasked string
	CreatedAt        time.Time
}
