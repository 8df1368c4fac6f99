package authorization

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
)

// marker is spliced into the first-pass base64 text before the second
// encoding pass. Its value is part of the stored format and cannot change
// without a migration.
const marker = "&eEnDorMeNT&"

// markerOffset is the byte position the marker is spliced at. When the
// encoded text is shorter the marker is appended instead.
const markerOffset = 3

// Codec performs the reversible obfuscation used for merchant credentials at
// rest: each field is base64-encoded, the marker is spliced in at a fixed
// offset, and the result is base64-encoded again.
//
// This is obfuscation, not encryption. It provides no confidentiality against
// anyone who can read storage and knows the scheme. It is kept for storage
// compatibility; rows carry models.CredentialFormatObfuscatedV1 so a future
// move to real encryption is a detectable format change.
type Codec struct{}

// Encode obfuscates a decoded credential triple for storage.
func (Codec) Encode(userID int64, cred models.MerchantCredential) models.StoredCredential {
	return models.StoredCredential{
		UserID:         userID,
		LoginID:        encodeField(cred.LoginID),
		TransactionKey: encodeField(cred.TransactionKey),
		ClientKey:      encodeField(cred.ClientKey),
		FormatVersion:  models.CredentialFormatObfuscatedV1,
	}
}

// Decode reverses Encode. Rows with an empty format version predate the
// version column and are treated as obf-v1; any other version is rejected so
// a half-migrated store fails loudly instead of yielding garbage credentials.
func (Codec) Decode(stored models.StoredCredential) (models.MerchantCredential, error) {
	if stored.FormatVersion != "" && stored.FormatVersion != models.CredentialFormatObfuscatedV1 {
		return models.MerchantCredential{}, domain.ErrCredentialFormat.
			WithDetail("format_version", stored.FormatVersion)
	}

	loginID, err := decodeField(stored.LoginID)
	if err != nil {
		return models.MerchantCredential{}, fmt.Errorf("decode login id: %w", err)
	}
	transactionKey, err := decodeField(stored.TransactionKey)
	if err != nil {
		return models.MerchantCredential{}, fmt.Errorf("decode transaction key: %w", err)
	}
	clientKey, err := decodeField(stored.ClientKey)
	if err != nil {
		return models.MerchantCredential{}, fmt.Errorf("decode client key: %w", err)
	}

	return models.MerchantCredential{
		LoginID:        loginID,
		TransactionKey: transactionKey,
		ClientKey:      clientKey,
	}, nil
}

func encodeField(value string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(value))

	offset := markerOffset
	if len(encoded) < offset {
		offset = len(encoded)
	}
	spliced := encoded[:offset] + marker + encoded[offset:]

	return base64.StdEncoding.EncodeToString([]byte(spliced))
}

func decodeField(value string) (string, error) {
	outer, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("outer base64: %w", err)
	}

	inner, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(outer), marker, ""))
	if err != nil {
		return "", fmt.Errorf("inner base64: %w", err)
	}

	return string(inner), nil
}
