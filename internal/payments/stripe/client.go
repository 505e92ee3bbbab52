package stripe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.stripe.com"

var (
	ErrInvalidAmount = errors.New("stripe: amount must be positive")
	ErrMissingKey    = errors.New("stripe: secret key is not configured")
)

// APIError is the failure shape Stripe returns; Code and Message come from
// the error object in the response body.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type apiErrorEnvelope struct {
	Error APIError `json:"error"`
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// Intent is the subset of a payment intent the checkout flow needs.
type Intent struct {
	ID           string
	ClientSecret string
}

type Client struct {
	http      *resty.Client
	secretKey string
}

func NewClient(secretKey string) *Client {
	rc := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(250 * time.Millisecond)

	return &Client{http: rc, secretKey: secretKey}
}

// WithBaseURL points the client at a different host. Used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.http.SetBaseURL(base)
	return c
}

// CreateIntent creates a card payment intent for a price in whole currency
// units. Stripe takes amounts in the smallest unit, so the price is scaled
// to cents and rounded.
func (c *Client) CreateIntent(ctx context.Context, price float64) (Intent, error) {
	if c.secretKey == "" {
		return Intent{}, ErrMissingKey
	}

	amount := int64(math.Round(price * 100))

	if amount <= 0 {
		return Intent{}, ErrInvalidAmount
	}

	var ok intentResponse
	var apiErr apiErrorEnvelope

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.secretKey).
		SetFormData(map[string]string{
			"amount":                 strconv.FormatInt(amount, 10),
			"currency":               "usd",
			"payment_method_types[]": "card",
		}).
		SetResult(&ok).
		SetError(&apiErr).
		Post("/v1/payment_intents")

	if err != nil {
		return Intent{}, err
	}

	if resp.IsError() {
		apiErr.Error.StatusCode = resp.StatusCode()
		return Intent{}, &apiErr.Error
	}

	if ok.ClientSecret == "" {
		return Intent{}, errors.New("stripe: response missing client_secret")
	}

	return Intent{ID: ok.ID, ClientSecret: ok.ClientSecret}, nil
}
