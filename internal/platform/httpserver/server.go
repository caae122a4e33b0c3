package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	inventoryservice "warehouse/contexts/warehouse/inventory-service"
	domainerrors "warehouse/contexts/warehouse/inventory-service/domain/errors"
	"warehouse/contexts/warehouse/inventory-service/domain/events"
	inventoryhttp "warehouse/contexts/warehouse/inventory-service/transport/http"

	"github.com/google/uuid"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	inventory inventoryservice.Module
}

func New(inventory inventoryservice.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		inventory: inventory,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /inventory/products", s.handleListProducts)
	s.mux.HandleFunc("GET /inventory/products/{product_id}", s.handleGetProduct)
	s.mux.HandleFunc("GET /inventory/products/{product_id}/events", s.handleGetEventHistory)
	s.mux.HandleFunc("POST /inventory/products/{product_id}/orders", s.handlePlaceOrder)
	s.mux.HandleFunc("POST /inventory/products/{product_id}/cancellations", s.handleCancelOrder)
	s.mux.HandleFunc("POST /inventory/products/{product_id}/restock", s.handleRestock)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	resp, err := s.inventory.Handler.ListProductsHandler(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	resp, err := s.inventory.Handler.GetProductHandler(r.Context(), productID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEventHistory(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	resp, err := s.inventory.Handler.GetEventHistoryHandler(r.Context(), productID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	var req inventoryhttp.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.inventory.Handler.PlaceOrderHandler(r.Context(), productID, req); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inventoryhttp.CommandResponse{Status: "order_placed"})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	var req inventoryhttp.CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.inventory.Handler.CancelOrderHandler(r.Context(), productID, req); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inventoryhttp.CommandResponse{Status: "order_cancelled"})
}

func (s *Server) handleRestock(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	var req inventoryhttp.RestockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.inventory.Handler.RestockHandler(r.Context(), productID, req); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inventoryhttp.CommandResponse{Status: "product_restocked"})
}

func parseProductID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	productID, err := uuid.Parse(r.PathValue("product_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a UUID")
		return uuid.UUID{}, false
	}
	return productID, true
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, domainerrors.ErrInsufficientStock):
		// Business rejection, not an infrastructure failure.
		writeError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, domainerrors.ErrConflictRetryExhausted):
		writeError(w, http.StatusConflict, "revision_conflict", err.Error())
	case errors.Is(err, events.ErrUnknownEventType):
		// Schema skew between writer and reader; already logged where it
		// was detected.
		writeError(w, http.StatusInternalServerError, "event_decode_failed", "event history cannot be decoded")
	default:
		s.logger.Error("request failed",
			"event", "http_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, inventoryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
