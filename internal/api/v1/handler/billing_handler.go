package handler

import (
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/rs/zerolog"
)

type BillingHandler struct {
	stripeService *service.StripeService
	logger        zerolog.Logger
}

func NewBillingHandler(stripeService *service.StripeService, logger zerolog.Logger) *BillingHandler {
	return &BillingHandler{stripeService: stripeService, logger: logger}
}

// RegisterRoutes mounts checkout behind auth; the webhook is unauthenticated
// and verified by its Stripe signature instead.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /billing/checkout-session", authMw(http.HandlerFunc(h.createCheckout)))
	mux.HandleFunc("POST /billing/webhook", h.stripeService.HandleWebhook)
}

func (h *BillingHandler) createCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	url, err := h.stripeService.CreateCheckoutSession(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutSessionResponseDTO{URL: url})
}
