package payment

import "encoding/json"

// Event kinds dispatched by the webhook controller.
const (
	EventIntentCreated       = "payment_intent.created"
	EventIntentSucceeded     = "payment_intent.succeeded"
	EventIntentFailed        = "payment_intent.payment_failed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is the gateway webhook envelope. Data.Object is decoded per event
// kind into IntentEvent or SubscriptionEvent.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// IntentEvent is a payment_intent.* object. Metadata carries the correlation
// keys set at intent creation: booking_id for the standard flow, slot_ids
// plus guest contact details for guest checkout.
type IntentEvent struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// SubscriptionEvent is a customer.subscription.* object.
type SubscriptionEvent struct {
	ID                 string `json:"id"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	Items              struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// PriceRef returns the first item's price identifier, which maps to a
// membership tier.
func (s *SubscriptionEvent) PriceRef() string {
	if len(s.Items.Data) == 0 {
		return ""
	}
	return s.Items.Data[0].Price.ID
}
