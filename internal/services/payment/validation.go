package payment

import (
	"github.com/go-playground/validator/v10"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
)

// CardPayment is the caller-supplied raw card input for a charge.
type CardPayment struct {
	CardNumber      string `validate:"required,numeric,min=12,max=19"`
	ExpirationYear  string `validate:"required,numeric,len=4"`
	ExpirationMonth string `validate:"required,numeric,len=2"`
	CVV             string `validate:"omitempty,numeric,min=3,max=4"`
}

// WalletPayment is an opaque wallet token (Apple Pay, Google Pay).
type WalletPayment struct {
	Token string `validate:"required"`
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

var packageValidator = newValidator()

// ValidateCard checks a raw card payload against the field rules. Exposed for
// callers outside the charge flow that accept the same payload.
func ValidateCard(card CardPayment) error {
	return checkPayload(packageValidator, card)
}

// checkPayload translates validator failures into the domain taxonomy.
// Field values never appear in the error, only field names and tags.
func checkPayload(v *validator.Validate, payload interface{}) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.WrapError(domain.ErrorCodeValidationFailed, "payload validation", err)
	}

	derr := domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid payment payload")
	for _, fe := range fieldErrs {
		derr = derr.WithDetail(fe.Field(), fe.Tag())
	}
	return derr
}
