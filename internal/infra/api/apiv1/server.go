package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"fitco-billing/internal/infra/api"
	"fitco-billing/internal/usecase"
)

// Deps are the use cases behind /api/v1.
type Deps struct {
	Pricing  usecase.PricingUseCase
	Coupons  usecase.CouponUseCase
	Quotes   usecase.QuoteUseCase
	Checkout usecase.CheckoutUseCase
	Webhooks usecase.WebhookUseCase
	Ledger   usecase.LedgerUseCase
	Stats    usecase.StatsUseCase
	Chat     usecase.ChatGateUseCase
	Auth     *AuthManager
}

type Server struct {
	d        Deps
	validate *validator.Validate
	log      *zerolog.Logger
}

func NewServer(d Deps, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "APIv1").Logger()
	return &Server{d: d, validate: validator.New(), log: &l}
}

// RegisterAPIV1 mounts every route under /api/v1 on r.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/subscriptions", func(r chi.Router) {
			// authenticated by the processor signature, not a bearer token
			r.Post("/webhook", s.handleWebhook)
			r.Get("/success", api.CheckoutResultPage(true))
			r.Get("/cancel", api.CheckoutResultPage(false))

			r.Group(func(r chi.Router) {
				r.Use(s.d.Auth.Authenticate)
				r.Get("/plans", s.handlePlans)
				r.Get("/me", s.handleMySubscription)
				r.Post("/quote", s.handleQuote)
				r.Post("/checkout-session", s.handleCheckout)
				r.Post("/", s.handleCheckout)

				r.Group(func(r chi.Router) {
					r.Use(RequireAdmin)
					r.Get("/", s.handleListSubscriptions)
					r.Get("/pricing", s.handleGetPricing)
					r.Patch("/pricing", s.handleUpdatePricing)
					r.Patch("/user/{userId}/status", s.handleUserStatus)
					r.Get("/{id}", s.handleGetSubscription)
					r.Patch("/{id}/status", s.handleSubscriptionStatus)
				})
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(s.d.Auth.Authenticate, RequireAdmin)
			r.Get("/overview", s.handleOverview)
			r.Get("/revenue", s.handleRevenue)
			r.Get("/transactions", s.handleTransactions)
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Use(s.d.Auth.Authenticate, RequireAdmin)
			r.Get("/", s.handleListCoupons)
			r.Post("/", s.handleCreateCoupon)
			r.Patch("/{id}/active", s.handleCouponActive)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(s.d.Auth.Authenticate)
			r.Get("/quota", s.handleChatQuota)
			r.Post("/usage", s.handleChatUsage)
		})
	})
}

// Health is mounted outside /api/v1 and never touches dependencies.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
