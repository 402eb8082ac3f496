package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"baybook/core/config"
	"baybook/core/errors"
	"baybook/core/logger"
)

// StripeGateway talks to the Stripe REST API with form-encoded requests and
// secret-key auth.
type StripeGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewStripeGateway(cfg config.PaymentConfig) *StripeGateway {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &StripeGateway{
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountPence int64, currency string, metadata map[string]string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountPence, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var out struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
		Amount       int64  `json:"amount"`
		Status       string `json:"status"`
	}
	if err := g.post(ctx, "/v1/payment_intents", form, &out); err != nil {
		return nil, err
	}

	logger.Info("StripeGateway:CreateIntent:Success", "intentId", out.ID, "amount", out.Amount)
	return &Intent{
		ID:           out.ID,
		ClientSecret: out.ClientSecret,
		AmountPence:  out.Amount,
		Status:       out.Status,
	}, nil
}

func (g *StripeGateway) UpdateIntentMetadata(ctx context.Context, intentID string, metadata map[string]string) error {
	form := url.Values{}
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}
	return g.post(ctx, "/v1/payment_intents/"+intentID, form, nil)
}

func (g *StripeGateway) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.NewAppError(errors.ErrGateway, "failed to build gateway request", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Error("StripeGateway:Request", err)
		return errors.NewAppError(errors.ErrGateway, "gateway request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewAppError(errors.ErrGateway, "failed to read gateway response", err)
	}

	if resp.StatusCode >= 400 {
		logger.Error("StripeGateway:Response", "status", resp.StatusCode, "path", path)
		return errors.NewAppError(errors.ErrGateway,
			fmt.Sprintf("gateway returned status %d", resp.StatusCode), nil)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return errors.NewAppError(errors.ErrGateway, "failed to decode gateway response", err)
		}
	}
	return nil
}
