package authorizenet

import (
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
)

// Wire response shapes. Every response carries a wrapper-level messages
// object; transaction responses additionally carry a nested
// transactionResponse with its own messages and errors arrays. Both levels
// must be checked: the wrapper can report Ok while the transaction sub-object
// carries a decline.

type wrapperMessage struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type wrapperMessages struct {
	ResultCode string           `json:"resultCode"`
	Message    []wrapperMessage `json:"message"`
}

type transactionMessage struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type transactionError struct {
	ErrorCode string `json:"errorCode"`
	ErrorText string `json:"errorText"`
}

type transactionResponse struct {
	ResponseCode  string               `json:"responseCode"`
	AuthCode      string               `json:"authCode"`
	TransID       string               `json:"transId"`
	AccountNumber string               `json:"accountNumber"`
	AccountType   string               `json:"accountType"`
	Messages      []transactionMessage `json:"messages"`
	Errors        []transactionError   `json:"errors"`
}

type createTransactionResponse struct {
	TransactionResponse transactionResponse `json:"transactionResponse"`
	RefID               string              `json:"refId"`
	Messages            wrapperMessages     `json:"messages"`
}

type createCustomerProfileResponse struct {
	CustomerProfileID string          `json:"customerProfileId"`
	Messages          wrapperMessages `json:"messages"`
}

type createCustomerPaymentProfileResponse struct {
	CustomerProfileID        string          `json:"customerProfileId"`
	CustomerPaymentProfileID string          `json:"customerPaymentProfileId"`
	Messages                 wrapperMessages `json:"messages"`
}

type getCustomerPaymentProfileResponse struct {
	PaymentProfile struct {
		CustomerPaymentProfileID string `json:"customerPaymentProfileId"`
		Payment                  struct {
			CreditCard struct {
				CardNumber string `json:"cardNumber"`
			} `json:"creditCard"`
		} `json:"payment"`
	} `json:"paymentProfile"`
	Messages wrapperMessages `json:"messages"`
}

func (m wrapperMessages) ok() bool {
	return m.ResultCode == resultCodeOk
}

func (m wrapperMessages) first() (code, text string) {
	if len(m.Message) == 0 {
		return "", ""
	}
	return m.Message[0].Code, m.Message[0].Text
}

// interpret normalizes a transaction response. The per-transaction error list
// wins over the wrapper message: a decline recorded there is reported even
// when the wrapper claims Ok, and preferred over the wrapper text when the
// wrapper reports failure.
func (r createTransactionResponse) interpret(rawRequest, rawResponse []byte) *ports.GatewayResult {
	result := &ports.GatewayResult{
		RawRequest:  rawRequest,
		RawResponse: rawResponse,
	}

	if len(r.TransactionResponse.Errors) > 0 {
		first := r.TransactionResponse.Errors[0]
		result.Outcome = ports.OutcomeDeclined
		result.Code = first.ErrorCode
		result.Message = first.ErrorText
		return result
	}

	if !r.Messages.ok() {
		result.Outcome = ports.OutcomeError
		result.Code, result.Message = r.Messages.first()
		return result
	}

	result.Outcome = ports.OutcomeApproved
	result.GatewayTxnID = r.TransactionResponse.TransID
	result.AccountNumberMasked = models.MaskCardNumber(r.TransactionResponse.AccountNumber)
	if len(r.TransactionResponse.Messages) > 0 {
		result.Code = r.TransactionResponse.Messages[0].Code
		result.Message = r.TransactionResponse.Messages[0].Description
	}
	return result
}
