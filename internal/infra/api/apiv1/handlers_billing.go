package apiv1

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/infra/logging"
	"fitco-billing/internal/infra/metrics"
)

const maxWebhookBody = 1 << 20

// handleWebhook must see the body exactly as sent; the signature covers raw bytes.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		metrics.IncWebhookEvent("unknown", "rejected")
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unable to read request body"})
		return
	}

	res, err := s.d.Webhooks.HandleEvent(r.Context(), body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		metrics.IncWebhookEvent("unknown", "error")
		s.writeError(w, r, err)
		return
	}
	metrics.IncWebhookEvent(res.Type, string(res.Outcome))
	logging.With(logging.WithEventID(r.Context(), res.EventID), s.log).Debug().
		Str("event_type", res.Type).Str("outcome", string(res.Outcome)).Msg("webhook acknowledged")
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !s.decode(w, r, &req) {
		return
	}
	q, err := s.d.Quotes.Quote(r.Context(), req.PlanType, req.CouponCode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuote(q))
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.d.Checkout.CreateCheckout(r.Context(), subject(r.Context()), req.PlanType, req.CouponCode)
	if err != nil {
		metrics.IncCheckoutSession(req.PlanType, "error")
		s.writeError(w, r, err)
		return
	}
	metrics.IncCheckoutSession(req.PlanType, "created")
	writeJSON(w, http.StatusCreated, toCheckout(res))
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.d.Pricing.Plans(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": toPlans(plans)})
}

func (s *Server) handleMySubscription(w http.ResponseWriter, r *http.Request) {
	userID := subject(r.Context())
	sub, err := s.d.Ledger.CurrentSubscription(r.Context(), userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.writeError(w, r, err)
		return
	}
	status, err := s.d.Ledger.SyncEntitlementFlag(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := struct {
		SubscriptionStatus string        `json:"subscriptionStatus"`
		Subscription       *Subscription `json:"subscription"`
	}{SubscriptionStatus: string(status)}
	if sub != nil {
		v := toSubscription(sub)
		resp.Subscription = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPricing(w http.ResponseWriter, r *http.Request) {
	p, err := s.d.Pricing.Current(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPricing(p))
}

func (s *Server) handleUpdatePricing(w http.ResponseWriter, r *http.Request) {
	var req PricingUpdateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.MonthlyPriceCents == nil && req.YearlyPriceCents == nil && req.Currency == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "nothing to update"})
		return
	}
	p, err := s.d.Pricing.Update(r.Context(), req.MonthlyPriceCents, req.YearlyPriceCents, req.Currency, subject(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPricing(p))
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)
	rows, total, err := s.d.Ledger.List(r.Context(), page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       toSubscriptions(rows),
		"pagination": paginationFor(page, total),
	})
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.d.Ledger.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscription(sub))
}

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	var req SubscriptionStatusRequest
	if !s.decode(w, r, &req) {
		return
	}
	sub, err := s.d.Ledger.Expire(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscription(sub))
}

func (s *Server) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	var req UserStatusRequest
	if !s.decode(w, r, &req) {
		return
	}
	userID := chi.URLParam(r, "userId")
	status, err := s.d.Ledger.SetUserStatus(r.Context(), userID, model.EntitlementStatus(req.Status), req.PlanType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"userId": userID, "subscriptionStatus": string(status)})
}
