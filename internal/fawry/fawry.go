// Package fawry implements the Fawry charge and notification contracts:
// canonical signature strings hashed with SHA-256, charge payload
// construction and the hosted-checkout redirect URL.
//
// Every monetary amount entering a signature string is formatted to exactly
// two decimal places. Inconsistent formatting is the classic source of
// signature mismatches against this gateway, so the formatting is part of
// the contract, not a convenience.
package fawry

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeItem is one line of an outbound charge request.
type ChargeItem struct {
	ItemID      string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

// ChargeRequest carries everything needed to build a signed charge.
type ChargeRequest struct {
	MerchantRefNum    string // the order id
	CustomerProfileID string // the user id
	CustomerName      string
	CustomerMobile    string
	CustomerEmail     string
	Amount            decimal.Decimal
	CurrencyCode      string
	ReturnURL         string
	ChargeItems       []ChargeItem
}

// ChargePayload is the wire form sent to the gateway and embedded in the
// hosted-checkout URL.
type ChargePayload struct {
	MerchantCode      string              `json:"merchantCode"`
	MerchantRefNum    string              `json:"merchantRefNum"`
	CustomerProfileID string              `json:"customerProfileId"`
	CustomerName      string              `json:"customerName"`
	CustomerMobile    string              `json:"customerMobile"`
	CustomerEmail     string              `json:"customerEmail"`
	PaymentMethod     string              `json:"paymentMethod"`
	Amount            string              `json:"amount"`
	CurrencyCode      string              `json:"currencyCode"`
	Language          string              `json:"language"`
	ChargeItems       []ChargeItemPayload `json:"chargeItems"`
	Signature         string              `json:"signature"`
	ReturnURL         string              `json:"returnUrl,omitempty"`
}

// ChargeItemPayload is the wire form of a charge line.
type ChargeItemPayload struct {
	ItemID      string `json:"itemId"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
}

// Signer builds and verifies Fawry signatures for one merchant.
type Signer struct {
	merchantCode string
	secureKey    string
}

// NewSigner creates a signer for the given merchant credentials
func NewSigner(merchantCode, secureKey string) *Signer {
	return &Signer{merchantCode: merchantCode, secureKey: secureKey}
}

// ChargeSignature computes the charge-request signature: SHA-256 hex over
// merchantCode + merchantRefNum + customerProfileId + returnUrl (when set),
// then itemId + quantity + price (two decimal places) for each item in order,
// then the secure key.
func (s *Signer) ChargeSignature(req *ChargeRequest) string {
	var buf bytes.Buffer
	buf.WriteString(s.merchantCode)
	buf.WriteString(req.MerchantRefNum)
	buf.WriteString(req.CustomerProfileID)
	if req.ReturnURL != "" {
		buf.WriteString(req.ReturnURL)
	}

	for _, item := range req.ChargeItems {
		buf.WriteString(item.ItemID)
		buf.WriteString(strconv.Itoa(item.Quantity))
		buf.WriteString(item.Price.StringFixed(2))
	}

	buf.WriteString(s.secureKey)

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// BuildChargePayload assembles the complete signed payload for a charge.
func (s *Signer) BuildChargePayload(req *ChargeRequest) *ChargePayload {
	items := make([]ChargeItemPayload, 0, len(req.ChargeItems))
	for _, item := range req.ChargeItems {
		items = append(items, ChargeItemPayload{
			ItemID:      item.ItemID,
			Description: item.Description,
			Price:       item.Price.StringFixed(2),
			Quantity:    item.Quantity,
		})
	}

	currency := req.CurrencyCode
	if currency == "" {
		currency = "EGP"
	}

	return &ChargePayload{
		MerchantCode:      s.merchantCode,
		MerchantRefNum:    req.MerchantRefNum,
		CustomerProfileID: req.CustomerProfileID,
		CustomerName:      req.CustomerName,
		CustomerMobile:    req.CustomerMobile,
		CustomerEmail:     req.CustomerEmail,
		PaymentMethod:     "PAYATFAWRY",
		Amount:            req.Amount.StringFixed(2),
		CurrencyCode:      currency,
		Language:          "en-gb",
		ChargeItems:       items,
		Signature:         s.ChargeSignature(req),
		ReturnURL:         req.ReturnURL,
	}
}

// HostedCheckoutURL embeds the charge payload into the gateway's hosted
// payment page redirect URL.
func HostedCheckoutURL(baseURL string, payload *ChargePayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal charge payload: %w", err)
	}
	return baseURL + "?chargeRequest=" + url.QueryEscape(string(raw)), nil
}

// Client performs server-to-server charge calls.
type Client struct {
	chargeURL  string
	httpClient *http.Client
}

// NewClient creates a gateway client with a bounded request timeout
func NewClient(chargeURL string, timeout time.Duration) *Client {
	return &Client{
		chargeURL:  chargeURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SendCharge posts the charge payload to the gateway. The caller treats any
// failure as a degraded (but successful) checkout: the hosted-checkout URL
// is local computation and does not depend on this call.
func (c *Client) SendCharge(ctx context.Context, payload *ChargePayload) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charge payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chargeURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("charge request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read charge response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return body, fmt.Errorf("charge request rejected: status=%d", resp.StatusCode)
	}
	return body, nil
}
