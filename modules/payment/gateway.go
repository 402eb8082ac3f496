// Package payment wraps the external card-payment gateway behind a small
// interface so the reservation flow never speaks HTTP to the processor
// directly and tests can substitute a fake.
package payment

import "context"

// Intent mirrors the gateway's payment-intent object, reduced to the fields
// the reservation flow acts on.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	AmountPence  int64  `json:"amountPence"`
	Status       string `json:"status"`
}

type Gateway interface {
	CreateIntent(ctx context.Context, amountPence int64, currency string, metadata map[string]string) (*Intent, error)
	UpdateIntentMetadata(ctx context.Context, intentID string, metadata map[string]string) error
}
