package authorizenet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
	"github.com/kevin07696/payment-orchestrator/pkg/resilience"
)

// Read-only profile lookups are safe to retry on transport failures. Charges
// and refunds are never retried here; a fresh attempt mints a fresh refId.
const profileLookupAttempts = 3

// Client implements ports.PaymentGateway against the Authorize.Net JSON API.
type Client struct {
	config     *Config
	httpClient *http.Client
	backoff    resilience.BackoffStrategy
	logger     *zap.Logger
}

// NewClient creates a gateway client. A nil httpClient gets a default client
// with the configured timeout.
func NewClient(config *Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
		backoff:    resilience.DefaultExponentialBackoff(),
		logger:     logger,
	}
}

// Charge executes an authCaptureTransaction with one of the three payment
// instrument shapes.
func (c *Client) Charge(ctx context.Context, auth models.MerchantCredential, req *ports.ChargeRequest) (*ports.GatewayResult, error) {
	if err := req.Instrument.Validate(); err != nil {
		return nil, err
	}

	txn := transactionRequest{
		TransactionType: transactionTypeAuthCapture,
		Amount:          req.Amount.StringFixed(2),
		Customer: &customerData{
			Type:  customerTypeIndividual,
			ID:    req.Customer.ID,
			Email: req.Customer.Email,
		},
	}
	if req.InvoiceNumber != "" || req.Description != "" {
		txn.Order = &order{InvoiceNumber: req.InvoiceNumber, Description: req.Description}
	}
	if req.BillTo.FirstName != "" || req.BillTo.LastName != "" {
		txn.BillTo = &customerAddress{
			FirstName: req.BillTo.FirstName,
			LastName:  req.BillTo.LastName,
		}
	}

	switch {
	case req.Instrument.Card != nil:
		txn.Payment = &payment{CreditCard: &creditCard{
			CardNumber:     req.Instrument.Card.Number,
			ExpirationDate: req.Instrument.Card.Expiration(),
			CardCode:       req.Instrument.Card.CVV,
		}}
	case req.Instrument.Nonce != nil:
		txn.Payment = &payment{OpaqueData: &opaqueData{
			DataDescriptor: req.Instrument.Nonce.Descriptor,
			DataValue:      req.Instrument.Nonce.Value,
		}}
	case req.Instrument.Profile != nil:
		txn.Profile = &profilePayment{
			CustomerProfileID: req.Instrument.Profile.CustomerProfileID,
			PaymentProfile:    paymentProfileRef{PaymentProfileID: req.Instrument.Profile.PaymentProfileID},
		}
	}

	envelope := createTransactionEnvelope{createTransactionRequest{
		MerchantAuthentication: merchantAuthentication{Name: auth.LoginID, TransactionKey: auth.TransactionKey},
		RefID:                  req.RefID,
		TransactionRequest:     txn,
	}}

	return c.sendTransaction(ctx, "charge", req.RefID, envelope)
}

// Refund executes a refundTransaction against a settled charge. Stored
// refunds only know the masked card, which the gateway accepts with the
// placeholder expiration.
func (c *Client) Refund(ctx context.Context, auth models.MerchantCredential, req *ports.RefundRequest) (*ports.GatewayResult, error) {
	envelope := createTransactionEnvelope{createTransactionRequest{
		MerchantAuthentication: merchantAuthentication{Name: auth.LoginID, TransactionKey: auth.TransactionKey},
		RefID:                  req.RefID,
		TransactionRequest: transactionRequest{
			TransactionType: transactionTypeRefund,
			Amount:          req.Amount.StringFixed(2),
			Payment: &payment{CreditCard: &creditCard{
				CardNumber:     req.CardNumberMasked,
				ExpirationDate: "XXXX",
			}},
			RefTransID: req.RefTransID,
		},
	}}

	return c.sendTransaction(ctx, "refund", req.RefID, envelope)
}

// CreateCustomerProfile creates the gateway-side payer record.
func (c *Client) CreateCustomerProfile(ctx context.Context, auth models.MerchantCredential, req *ports.CreateCustomerProfileRequest) (*ports.ProfileResult, error) {
	envelope := createCustomerProfileEnvelope{createCustomerProfileRequest{
		MerchantAuthentication: merchantAuthentication{Name: auth.LoginID, TransactionKey: auth.TransactionKey},
		RefID:                  req.RefID,
		Profile: customerProfile{
			MerchantCustomerID: req.MerchantCustomerID,
			Email:              req.Email,
		},
	}}

	raw, err := c.post(ctx, envelope)
	if err != nil {
		return nil, err
	}

	var resp createCustomerProfileResponse
	if err := unmarshalResponse(raw, &resp); err != nil {
		return nil, err
	}

	result := &ports.ProfileResult{
		CustomerProfileID: resp.CustomerProfileID,
		RawResponse:       raw,
	}
	c.finishProfileResult(result, resp.Messages, "create_customer_profile")
	return result, nil
}

// CreatePaymentProfile stores an instrument under an existing customer
// profile. The duplicate-profile code is reported through
// ProfileResult.Duplicate rather than as a failure.
func (c *Client) CreatePaymentProfile(ctx context.Context, auth models.MerchantCredential, req *ports.CreatePaymentProfileRequest) (*ports.ProfileResult, error) {
	if err := req.Instrument.Validate(); err != nil {
		return nil, err
	}
	if req.Instrument.Profile != nil {
		return nil, domain.NewDomainError(domain.ErrorCodePaymentMethodUnknown,
			"stored profile cannot seed a new payment profile")
	}

	pp := customerPaymentProfile{CustomerType: customerTypeIndividual}
	if req.BillTo.FirstName != "" || req.BillTo.LastName != "" || req.BillTo.Phone != "" {
		pp.BillTo = &customerAddress{
			FirstName:   req.BillTo.FirstName,
			LastName:    req.BillTo.LastName,
			PhoneNumber: req.BillTo.Phone,
		}
	}
	if req.Instrument.Card != nil {
		pp.Payment = payment{CreditCard: &creditCard{
			CardNumber:     req.Instrument.Card.Number,
			ExpirationDate: req.Instrument.Card.Expiration(),
			CardCode:       req.Instrument.Card.CVV,
		}}
	} else {
		pp.Payment = payment{OpaqueData: &opaqueData{
			DataDescriptor: req.Instrument.Nonce.Descriptor,
			DataValue:      req.Instrument.Nonce.Value,
		}}
	}

	envelope := createCustomerPaymentProfileEnvelope{createCustomerPaymentProfileRequest{
		MerchantAuthentication: merchantAuthentication{Name: auth.LoginID, TransactionKey: auth.TransactionKey},
		CustomerProfileID:      req.CustomerProfileID,
		PaymentProfile:         pp,
	}}

	raw, err := c.post(ctx, envelope)
	if err != nil {
		return nil, err
	}

	var resp createCustomerPaymentProfileResponse
	if err := unmarshalResponse(raw, &resp); err != nil {
		return nil, err
	}

	result := &ports.ProfileResult{
		CustomerProfileID: req.CustomerProfileID,
		PaymentProfileID:  resp.CustomerPaymentProfileID,
		RawResponse:       raw,
	}
	c.finishProfileResult(result, resp.Messages, "create_payment_profile")
	return result, nil
}

// GetPaymentProfile fetches a stored payment profile by id pair.
func (c *Client) GetPaymentProfile(ctx context.Context, auth models.MerchantCredential, req *ports.GetPaymentProfileRequest) (*ports.ProfileResult, error) {
	// Every retry after a transport failure carries a fresh refId; only the
	// first attempt uses the caller's.
	refID := req.RefID

	var raw []byte
	err := resilience.Retry(ctx, profileLookupAttempts, c.backoff, domain.IsRetryable, func(ctx context.Context) error {
		envelope := getCustomerPaymentProfileEnvelope{getCustomerPaymentProfileRequest{
			MerchantAuthentication:   merchantAuthentication{Name: auth.LoginID, TransactionKey: auth.TransactionKey},
			RefID:                    refID,
			CustomerProfileID:        req.CustomerProfileID,
			CustomerPaymentProfileID: req.PaymentProfileID,
		}}
		refID = models.MintRefID()

		var postErr error
		raw, postErr = c.post(ctx, envelope)
		return postErr
	})
	if err != nil {
		return nil, err
	}

	var resp getCustomerPaymentProfileResponse
	if err := unmarshalResponse(raw, &resp); err != nil {
		return nil, err
	}

	result := &ports.ProfileResult{
		CustomerProfileID: req.CustomerProfileID,
		PaymentProfileID:  resp.PaymentProfile.CustomerPaymentProfileID,
		CardNumberMasked:  models.MaskCardNumber(resp.PaymentProfile.Payment.CreditCard.CardNumber),
		RawResponse:       raw,
	}
	c.finishProfileResult(result, resp.Messages, "get_payment_profile")
	return result, nil
}

func (c *Client) sendTransaction(ctx context.Context, flow, refID string, envelope createTransactionEnvelope) (*ports.GatewayResult, error) {
	wireRequest, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", flow, err)
	}

	// Only the scrubbed request may leave the adapter; the wire bytes hold
	// the full card number and the decoded merchant credential.
	auditRequest, err := json.Marshal(envelope.scrubForAudit())
	if err != nil {
		return nil, fmt.Errorf("marshal %s audit request: %w", flow, err)
	}

	rawResponse, err := c.send(ctx, wireRequest)
	if err != nil {
		return nil, err
	}

	var resp createTransactionResponse
	if err := unmarshalResponse(rawResponse, &resp); err != nil {
		return nil, err
	}

	result := resp.interpret(auditRequest, rawResponse)

	c.logger.Info("gateway transaction completed",
		zap.String("flow", flow),
		zap.String("ref_id", refID),
		zap.String("outcome", string(result.Outcome)),
		zap.String("code", result.Code))

	return result, nil
}

func (c *Client) post(ctx context.Context, envelope interface{}) ([]byte, error) {
	raw, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.send(ctx, raw)
}

func (c *Client) send(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("gateway request failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)))
		return nil, domain.WrapError(domain.ErrorCodeGatewayTransport, "gateway request failed", err)
	}
	defer httpResp.Body.Close()

	raw, err := readBody(httpResp)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeGatewayTransport, "read gateway response", err)
	}

	c.logger.Debug("gateway responded",
		zap.Int("status_code", httpResp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("body_length", len(raw)))

	if httpResp.StatusCode != http.StatusOK {
		return nil, domain.WrapError(domain.ErrorCodeGatewayTransport,
			fmt.Sprintf("gateway returned HTTP %d", httpResp.StatusCode), nil)
	}

	return raw, nil
}

func (c *Client) finishProfileResult(result *ports.ProfileResult, messages wrapperMessages, flow string) {
	code, text := messages.first()
	result.Code = code
	result.Message = text

	switch {
	case messages.ok():
		result.Outcome = ports.OutcomeApproved
	case code == duplicateProfileCode:
		result.Outcome = ports.OutcomeError
		result.Duplicate = true
	default:
		result.Outcome = ports.OutcomeError
	}

	c.logger.Info("gateway profile call completed",
		zap.String("flow", flow),
		zap.String("outcome", string(result.Outcome)),
		zap.String("code", code),
		zap.Bool("duplicate", result.Duplicate))
}
