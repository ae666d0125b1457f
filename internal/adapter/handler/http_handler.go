package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rl1809/shop-cart/internal/adapter/notify"
	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/core/service"
)

type HTTPHandler struct {
	cartService *service.CartService
	feed        *notify.Feed
}

type AddProductHTTPRequest struct {
	ProductID int64 `json:"product_id"`
}

type UpdateAmountHTTPRequest struct {
	Amount int `json:"amount"`
}

type CartHTTPResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Outcome string      `json:"outcome,omitempty"`
	Cart    domain.Cart `json:"cart"`
	Total   float64     `json:"total"`
	Count   int         `json:"count"`
}

func NewHTTPHandler(cartService *service.CartService, feed *notify.Feed) *HTTPHandler {
	return &HTTPHandler{cartService: cartService, feed: feed}
}

// Register mounts the cart routes on r.
func (h *HTTPHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/cart/products", h.AddProduct).Methods(http.MethodPost)
	api.HandleFunc("/cart/products/{id:[0-9]+}", h.UpdateProductAmount).Methods(http.MethodPut)
	api.HandleFunc("/cart/products/{id:[0-9]+}", h.RemoveProduct).Methods(http.MethodDelete)
	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cartResponse(service.OutcomeOK, "", h.cartService.Cart()))
}

func (h *HTTPHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID <= 0 {
		writeJSON(w, http.StatusBadRequest, CartHTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	outcome := h.cartService.AddProduct(r.Context(), req.ProductID)
	h.writeOutcome(w, outcome)
}

func (h *HTTPHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDFromPath(w, r)
	if !ok {
		return
	}

	outcome := h.cartService.RemoveProduct(r.Context(), productID)
	h.writeOutcome(w, outcome)
}

func (h *HTTPHandler) UpdateProductAmount(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateAmountHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CartHTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	outcome := h.cartService.UpdateProductAmount(r.Context(), productID, req.Amount)
	h.writeOutcome(w, outcome)
}

func (h *HTTPHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feed.List())
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeOutcome(w http.ResponseWriter, outcome service.Outcome) {
	message := "cart updated"
	if outcome != service.OutcomeOK {
		message = "cart unchanged"
	}
	writeJSON(w, httpStatus(outcome), cartResponse(outcome, message, h.cartService.Cart()))
}

func cartResponse(outcome service.Outcome, message string, cart domain.Cart) CartHTTPResponse {
	return CartHTTPResponse{
		Success: outcome == service.OutcomeOK,
		Message: message,
		Outcome: outcome.String(),
		Cart:    cart,
		Total:   cart.Total(),
		Count:   cart.Count(),
	}
}

func httpStatus(outcome service.Outcome) int {
	switch outcome {
	case service.OutcomeOK:
		return http.StatusOK
	case service.OutcomeNotFound:
		return http.StatusNotFound
	case service.OutcomeAmountFloor:
		return http.StatusUnprocessableEntity
	case service.OutcomeOutOfStock:
		return http.StatusConflict
	case service.OutcomeCatalogFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func productIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, CartHTTPResponse{
			Success: false,
			Message: "invalid product id",
		})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
