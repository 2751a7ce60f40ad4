package billing

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/config"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"github.com/stripe/stripe-go/v78"
	portalsession "github.com/stripe/stripe-go/v78/billingportal/session"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/customer"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service wraps the Stripe subscription flows for tenants. Outbound Stripe
// failures surface to the caller; webhook-driven status changes are the only
// writes back into the tenant row.
type Service struct {
	cfg   *config.StripeConfig
	cache *StatusCache
	log   *zap.Logger
}

func New(cfg *config.StripeConfig, cache *StatusCache, log *zap.Logger) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{cfg: cfg, cache: cache, log: log}
}

// ensureCustomer creates the Stripe customer for a tenant on first use
func (s *Service) ensureCustomer(db *gorm.DB, tenant *model.Tenant) (string, error) {
	if tenant.StripeCustomerID != "" {
		return tenant.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Name: stripe.String(tenant.Name),
	}
	params.AddMetadata("tenant_id", itoa(tenant.ID))

	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}

	tenant.StripeCustomerID = cust.ID
	if err := db.Model(tenant).Update("stripe_customer_id", cust.ID).Error; err != nil {
		return "", err
	}
	return cust.ID, nil
}

// CreateCheckoutSession starts a subscription checkout for the given plan and
// returns the hosted page URL.
func (s *Service) CreateCheckoutSession(db *gorm.DB, tenant *model.Tenant, plan *model.SubscriptionPlan) (string, error) {
	if plan.StripePriceID == "" {
		return "", model.NewBadRequest("plan has no billing price configured")
	}

	custID, err := s.ensureCustomer(db, tenant)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(custID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(itoa(tenant.ID)),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// CreatePortalSession returns a Stripe customer portal URL for the tenant
func (s *Service) CreatePortalSession(tenant *model.Tenant) (string, error) {
	if tenant.StripeCustomerID == "" {
		return "", model.NewBadRequest("tenant has no billing customer")
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(tenant.StripeCustomerID),
		ReturnURL: stripe.String(s.cfg.PortalURL),
	}
	sess, err := portalsession.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// SubscriptionStatus returns the tenant's subscription status, served from
// the Redis cache when warm.
func (s *Service) SubscriptionStatus(ctx context.Context, db *gorm.DB, tenantID uint) (string, error) {
	if status := s.cache.Get(ctx, tenantID); status != "" {
		return status, nil
	}

	var tenant model.Tenant
	if err := db.First(&tenant, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", model.NewNotFound("tenant not found")
		}
		return "", err
	}

	s.cache.Set(ctx, tenantID, tenant.SubscriptionStatus)
	return tenant.SubscriptionStatus, nil
}

// HandleWebhook verifies the Stripe signature and applies subscription status
// changes to the owning tenant.
func (s *Service) HandleWebhook(ctx context.Context, db *gorm.DB, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return model.NewBadRequest("invalid webhook signature")
	}

	prometheus.RecordBillingEvent(string(event.Type))

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return model.NewBadRequest("malformed checkout session payload")
		}
		return s.setStatusByCustomer(ctx, db, customerID(sess.Customer), model.SubscriptionActive)

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return model.NewBadRequest("malformed invoice payload")
		}
		return s.setStatusByCustomer(ctx, db, customerID(invoice.Customer), model.SubscriptionPastDue)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return model.NewBadRequest("malformed subscription payload")
		}
		return s.setStatusByCustomer(ctx, db, customerID(sub.Customer), model.SubscriptionCanceled)
	}

	// Unhandled event types are acknowledged without action
	s.log.Debug("Ignoring billing event", zap.String("type", string(event.Type)))
	return nil
}

func (s *Service) setStatusByCustomer(ctx context.Context, db *gorm.DB, custID, status string) error {
	if custID == "" {
		return model.NewBadRequest("event has no customer reference")
	}

	var tenant model.Tenant
	if err := db.Where("stripe_customer_id = ?", custID).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.NewNotFound("no tenant for billing customer")
		}
		return err
	}

	if err := db.Model(&tenant).Update("subscription_status", status).Error; err != nil {
		return err
	}
	s.cache.Invalidate(ctx, tenant.ID)

	s.log.Info("Tenant subscription status updated",
		zap.Uint("tenant_id", tenant.ID),
		zap.String("status", status))
	return nil
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
