package authorizenet

import (
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
)

// Wire request shapes for the Authorize.Net JSON API. The gateway requires
// object members in schema order, which encoding/json preserves from struct
// declaration order, so field order here is load-bearing.

const (
	transactionTypeAuthCapture = "authCaptureTransaction"
	transactionTypeRefund      = "refundTransaction"

	customerTypeIndividual = "individual"

	resultCodeOk = "Ok"

	// duplicateProfileCode is returned by createCustomerPaymentProfile when
	// the instrument is already stored; profile creation treats it as
	// non-fatal and resolves the existing profile instead.
	duplicateProfileCode = "E00039"
)

type merchantAuthentication struct {
	Name           string `json:"name"`
	TransactionKey string `json:"transactionKey"`
}

type creditCard struct {
	CardNumber     string `json:"cardNumber"`
	ExpirationDate string `json:"expirationDate"`
	CardCode       string `json:"cardCode,omitempty"`
}

type opaqueData struct {
	DataDescriptor string `json:"dataDescriptor"`
	DataValue      string `json:"dataValue"`
}

type payment struct {
	CreditCard *creditCard `json:"creditCard,omitempty"`
	OpaqueData *opaqueData `json:"opaqueData,omitempty"`
}

type paymentProfileRef struct {
	PaymentProfileID string `json:"paymentProfileId"`
}

type profilePayment struct {
	CustomerProfileID string            `json:"customerProfileId"`
	PaymentProfile    paymentProfileRef `json:"paymentProfile"`
}

type order struct {
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	Description   string `json:"description,omitempty"`
}

type customerData struct {
	Type  string `json:"type,omitempty"`
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

type customerAddress struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type transactionRequest struct {
	TransactionType string           `json:"transactionType"`
	Amount          string           `json:"amount"`
	Payment         *payment         `json:"payment,omitempty"`
	Profile         *profilePayment  `json:"profile,omitempty"`
	Order           *order           `json:"order,omitempty"`
	BillTo          *customerAddress `json:"billTo,omitempty"`
	Customer        *customerData    `json:"customer,omitempty"`
	RefTransID      string           `json:"refTransId,omitempty"`
}

type createTransactionRequest struct {
	MerchantAuthentication merchantAuthentication `json:"merchantAuthentication"`
	RefID                  string                 `json:"refId"`
	TransactionRequest     transactionRequest     `json:"transactionRequest"`
}

type createTransactionEnvelope struct {
	CreateTransactionRequest createTransactionRequest `json:"createTransactionRequest"`
}

// scrubForAudit returns a copy of the envelope safe to persist: the decoded
// merchant credential is removed, the card number reduced to its trailing
// four digits, and the CVV and wallet nonce value dropped.
func (e createTransactionEnvelope) scrubForAudit() createTransactionEnvelope {
	scrubbed := e
	scrubbed.CreateTransactionRequest.MerchantAuthentication = merchantAuthentication{}

	if p := scrubbed.CreateTransactionRequest.TransactionRequest.Payment; p != nil {
		clean := *p
		if clean.CreditCard != nil {
			clean.CreditCard = &creditCard{
				CardNumber:     models.MaskCardNumber(clean.CreditCard.CardNumber),
				ExpirationDate: clean.CreditCard.ExpirationDate,
			}
		}
		if clean.OpaqueData != nil {
			clean.OpaqueData = &opaqueData{
				DataDescriptor: clean.OpaqueData.DataDescriptor,
				DataValue:      models.MaskCardNumber(clean.OpaqueData.DataValue),
			}
		}
		scrubbed.CreateTransactionRequest.TransactionRequest.Payment = &clean
	}
	return scrubbed
}

type customerPaymentProfile struct {
	CustomerType string           `json:"customerType,omitempty"`
	BillTo       *customerAddress `json:"billTo,omitempty"`
	Payment      payment          `json:"payment"`
}

type customerProfile struct {
	MerchantCustomerID string `json:"merchantCustomerId"`
	Email              string `json:"email,omitempty"`
}

type createCustomerProfileRequest struct {
	MerchantAuthentication merchantAuthentication `json:"merchantAuthentication"`
	RefID                  string                 `json:"refId,omitempty"`
	Profile                customerProfile        `json:"profile"`
}

type createCustomerProfileEnvelope struct {
	CreateCustomerProfileRequest createCustomerProfileRequest `json:"createCustomerProfileRequest"`
}

type createCustomerPaymentProfileRequest struct {
	MerchantAuthentication merchantAuthentication `json:"merchantAuthentication"`
	CustomerProfileID      string                 `json:"customerProfileId"`
	PaymentProfile         customerPaymentProfile `json:"paymentProfile"`
}

type createCustomerPaymentProfileEnvelope struct {
	CreateCustomerPaymentProfileRequest createCustomerPaymentProfileRequest `json:"createCustomerPaymentProfileRequest"`
}

type getCustomerPaymentProfileRequest struct {
	MerchantAuthentication   merchantAuthentication `json:"merchantAuthentication"`
	RefID                    string                 `json:"refId,omitempty"`
	CustomerProfileID        string                 `json:"customerProfileId"`
	CustomerPaymentProfileID string                 `json:"customerPaymentProfileId"`
}

type getCustomerPaymentProfileEnvelope struct {
	GetCustomerPaymentProfileRequest getCustomerPaymentProfileRequest `json:"getCustomerPaymentProfileRequest"`
}
