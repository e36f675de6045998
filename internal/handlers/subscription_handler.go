package handlers

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

// SubscriptionHandler exposes the usage report and the billing webhook. The
// webhook is the only writer of User.Plan and Subscription rows; everything
// else just reads the plan.
type SubscriptionHandler struct {
	userRepo      repositories.UserRepository
	subRepo       repositories.SubscriptionRepository
	usageService  services.UsageService
	webhookSecret string
}

func NewSubscriptionHandler(
	userRepo repositories.UserRepository,
	subRepo repositories.SubscriptionRepository,
	usageService services.UsageService,
	webhookSecret string,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		userRepo:      userRepo,
		subRepo:       subRepo,
		usageService:  usageService,
		webhookSecret: webhookSecret,
	}
}

// HandleUsage handles GET /subscription/usage.
func (h *SubscriptionHandler) HandleUsage(c *fiber.Ctx) error {
	session := currentSession(c)

	usage, err := h.usageService.UserLimits(session.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"plan":    usage.Plan,
		"limits":  usage.Limits,
	})
}

// HandleWebhook handles POST /subscription/webhook. Signature verification
// first; unknown event types are acknowledged and ignored.
func (h *SubscriptionHandler) HandleWebhook(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing stripe-signature header",
		})
	}

	event, err := webhook.ConstructEvent(c.Body(), signature, h.webhookSecret)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid signature",
		})
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		err = h.handleCheckoutCompleted(event)
	case "customer.subscription.created", "customer.subscription.updated":
		err = h.handleSubscriptionUpdate(event)
	case "customer.subscription.deleted":
		err = h.handleSubscriptionCanceled(event)
	case "invoice.payment_failed":
		err = h.handlePaymentFailed(event)
	default:
		slog.Debug("unhandled stripe event", "type", string(event.Type))
	}
	if err != nil {
		slog.Error("stripe webhook handling failed", "type", string(event.Type), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "webhook handler failed",
		})
	}

	return c.JSON(fiber.Map{"received": true})
}

func (h *SubscriptionHandler) handleCheckoutCompleted(event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return err
	}

	userID, err := uuid.Parse(session.Metadata["userId"])
	if err != nil {
		slog.Warn("checkout session without usable userId metadata", "session", session.ID)
		return nil
	}

	if err := h.userRepo.UpdatePlan(userID, models.PlanPremium); err != nil {
		return err
	}

	sub := &models.Subscription{
		ID:     uuid.New(),
		UserID: userID,
		Plan:   models.PlanPremium,
		Status: "active",
	}
	if session.Customer != nil {
		sub.StripeCustomerID = &session.Customer.ID
	}
	if session.Subscription != nil {
		sub.StripeSubscriptionID = &session.Subscription.ID
	}

	return h.subRepo.Upsert(sub)
}

func (h *SubscriptionHandler) handleSubscriptionUpdate(event stripe.Event) error {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return err
	}

	userID, err := h.resolveUser(&stripeSub)
	if err != nil {
		return nil
	}

	plan := models.PlanPremium
	if stripeSub.Status != stripe.SubscriptionStatusActive &&
		stripeSub.Status != stripe.SubscriptionStatusTrialing {
		plan = models.PlanFree
	}

	if err := h.userRepo.UpdatePlan(userID, plan); err != nil {
		return err
	}

	periodStart := time.Unix(stripeSub.CurrentPeriodStart, 0)
	periodEnd := time.Unix(stripeSub.CurrentPeriodEnd, 0)
	sub := &models.Subscription{
		ID:                   uuid.New(),
		UserID:               userID,
		Plan:                 plan,
		Status:               string(stripeSub.Status),
		StripeSubscriptionID: &stripeSub.ID,
		CurrentPeriodStart:   &periodStart,
		CurrentPeriodEnd:     &periodEnd,
	}
	if stripeSub.Customer != nil {
		sub.StripeCustomerID = &stripeSub.Customer.ID
	}

	return h.subRepo.Upsert(sub)
}

func (h *SubscriptionHandler) handleSubscriptionCanceled(event stripe.Event) error {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return err
	}

	userID, err := h.resolveUser(&stripeSub)
	if err != nil {
		return nil
	}

	if err := h.userRepo.UpdatePlan(userID, models.PlanFree); err != nil {
		return err
	}

	sub := &models.Subscription{
		ID:                   uuid.New(),
		UserID:               userID,
		Plan:                 models.PlanFree,
		Status:               "canceled",
		StripeSubscriptionID: &stripeSub.ID,
	}
	if stripeSub.Customer != nil {
		sub.StripeCustomerID = &stripeSub.Customer.ID
	}

	return h.subRepo.Upsert(sub)
}

func (h *SubscriptionHandler) handlePaymentFailed(event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return err
	}
	if invoice.Subscription == nil {
		return nil
	}

	existing, err := h.subRepo.FindByStripeSubscription(invoice.Subscription.ID)
	if err != nil {
		slog.Warn("payment failed for unknown subscription", "subscription", invoice.Subscription.ID)
		return nil
	}

	if err := h.userRepo.UpdatePlan(existing.UserID, models.PlanFree); err != nil {
		return err
	}

	existing.Plan = models.PlanFree
	existing.Status = "past_due"
	return h.subRepo.Upsert(existing)
}

// resolveUser finds the application user for a Stripe subscription, first
// through metadata, then through the stored mapping.
func (h *SubscriptionHandler) resolveUser(stripeSub *stripe.Subscription) (uuid.UUID, error) {
	if raw, ok := stripeSub.Metadata["userId"]; ok {
		if userID, err := uuid.Parse(raw); err == nil {
			return userID, nil
		}
	}

	existing, err := h.subRepo.FindByStripeSubscription(stripeSub.ID)
	if err != nil {
		slog.Warn("stripe subscription not linked to a user", "subscription", stripeSub.ID)
		return uuid.Nil, err
	}
	return existing.UserID, nil
}
