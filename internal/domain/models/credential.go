package models

// CredentialFormatObfuscatedV1 is the marker-spliced double-base64 scheme the
// billing application has always stored. It is reversible obfuscation, not
// encryption; the version travels with the stored row so a future move to
// authenticated encryption is a detectable migration rather than a silent
// format change.
const CredentialFormatObfuscatedV1 = "obf-v1"

// MerchantCredential is the decoded login/transaction-key/client-key triple
// identifying a seller account to the payment network. Decoded values exist
// only transiently for a single gateway call and are never persisted.
type MerchantCredential struct {
	LoginID        string
	TransactionKey string
	ClientKey      string
}

// StoredCredential is the at-rest form of a merchant credential. Each field
// holds the encoded text produced by the credential codec for FormatVersion.
type StoredCredential struct {
	UserID         int64
	LoginID        string
	TransactionKey string
	ClientKey      string
	FormatVersion  string
}
