package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"baybook/core/cache"
	"baybook/core/constants"
	"baybook/core/logger"
	bookingservice "baybook/modules/booking/service"
	membershipservice "baybook/modules/membership/service"
	"baybook/modules/payment"

	"github.com/labstack/echo/v4"
)

// WebhookController receives gateway events. The signature is verified over
// the raw body before anything is decoded, and each event id is claimed in
// redis so redelivered events are acknowledged without reprocessing.
type WebhookController struct {
	secret            string
	cache             cache.Cache
	bookingService    bookingservice.BookingServiceInterface
	membershipService membershipservice.MembershipServiceInterface
	now               func() time.Time
}

func NewWebhookController(
	secret string,
	c cache.Cache,
	bookingService bookingservice.BookingServiceInterface,
	membershipService membershipservice.MembershipServiceInterface,
) *WebhookController {
	return &WebhookController{
		secret:            secret,
		cache:             c,
		bookingService:    bookingService,
		membershipService: membershipService,
		now:               time.Now,
	}
}

func (ctrl *WebhookController) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	header := c.Request().Header.Get("Stripe-Signature")
	if err := payment.VerifySignature(body, header, ctrl.secret, constants.WebhookTolerance, ctrl.now()); err != nil {
		logger.Warn("WebhookController:Signature", "error", err)
		return c.NoContent(http.StatusBadRequest)
	}

	var event payment.Event
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Warn("WebhookController:Decode", "error", err)
		return c.NoContent(http.StatusBadRequest)
	}

	fresh, err := ctrl.cache.SetNX(c.Request().Context(),
		"webhook:event:"+event.ID, "1", constants.WebhookEventTTL)
	if err != nil {
		// Redis being down should not drop payment events; process anyway and
		// rely on handler idempotence.
		logger.Warn("WebhookController:Dedupe", "eventId", event.ID, "error", err)
	} else if !fresh {
		logger.Info("WebhookController:Duplicate", "eventId", event.ID, "type", event.Type)
		return c.NoContent(http.StatusOK)
	}

	if err := ctrl.dispatch(c, &event); err != nil {
		logger.Error("WebhookController:Dispatch", "eventId", event.ID, "type", event.Type, "error", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusOK)
}

// dispatch decodes the event object per kind and routes it to the owning
// service. Unknown kinds are acknowledged and ignored.
func (ctrl *WebhookController) dispatch(c echo.Context, event *payment.Event) error {
	ctx := c.Request().Context()

	switch event.Type {
	case payment.EventIntentCreated:
		intent, err := decodeIntent(event)
		if err != nil {
			return err
		}
		return ctrl.bookingService.ReserveFromIntent(ctx, intent)

	case payment.EventIntentSucceeded:
		intent, err := decodeIntent(event)
		if err != nil {
			return err
		}
		return ctrl.bookingService.ConfirmByPaymentRef(ctx, intent.ID, intent.Status)

	case payment.EventIntentFailed:
		intent, err := decodeIntent(event)
		if err != nil {
			return err
		}
		return ctrl.bookingService.FailByPaymentRef(ctx, intent.ID, intent.Status)

	case payment.EventSubscriptionCreated, payment.EventSubscriptionUpdated, payment.EventSubscriptionDeleted:
		var sub payment.SubscriptionEvent
		if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
			return err
		}
		status := sub.Status
		if event.Type == payment.EventSubscriptionDeleted {
			status = "canceled"
		}
		return ctrl.membershipService.ApplySubscriptionEvent(ctx, &membershipservice.SubscriptionEvent{
			CustomerRef:       sub.Customer,
			Status:            status,
			PriceRef:          sub.PriceRef(),
			PeriodStart:       time.Unix(sub.CurrentPeriodStart, 0),
			PeriodEnd:         time.Unix(sub.CurrentPeriodEnd, 0),
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		})

	default:
		logger.Info("WebhookController:Ignored", "type", event.Type)
		return nil
	}
}

func decodeIntent(event *payment.Event) (*payment.IntentEvent, error) {
	var intent payment.IntentEvent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
