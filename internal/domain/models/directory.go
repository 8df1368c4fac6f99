package models

// Contact is the payer record an invoice bills against.
type Contact struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// User is a salesperson account. Sub-accounts delegate merchant credentials
// to their parent: charges made by a sub-account settle against the parent's
// stored credential.
type User struct {
	ID       int64
	ParentID int64 // 0 when the account is its own merchant
	Email    string
}
