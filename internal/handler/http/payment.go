package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rookgm/paygate/internal/models"
)

type PaymentService interface {
	// CreateOrder creates fixed-amount order at gateway and records it on the application
	CreateOrder(ctx context.Context, req *models.PaymentOrderRequest) (*models.PaymentOrder, error)
	// VerifyOrder resolves order status from gateway and writes it back
	VerifyOrder(ctx context.Context, orderID string) (*models.PaymentVerification, error)
}

// PaymentHandler represents HTTP handler for payment-related requests
type PaymentHandler struct {
	svc PaymentService
}

// NewPaymentHandler creates new PaymentHandler instance
func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// phoneNumber accepts JSON string or number, the checkout page sends either
type phoneNumber string

func (p *phoneNumber) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch val := v.(type) {
	case string:
		*p = phoneNumber(val)
	case float64:
		*p = phoneNumber(strconv.FormatFloat(val, 'f', -1, 64))
	case nil:
		*p = ""
	default:
		return fmt.Errorf("unexpected phone value of type %T", v)
	}

	return nil
}

type createPaymentRequest struct {
	ApplicationID string      `json:"applicationId"`
	CustomerPhone phoneNumber `json:"customerPhone"`
	CustomerName  string      `json:"customerName"`
}

type createPaymentResponse struct {
	Success          bool    `json:"success"`
	PaymentSessionID string  `json:"payment_session_id"`
	OrderID          string  `json:"order_id"`
	Amount           float64 `json:"amount"`
}

type verifyPaymentRequest struct {
	OrderID string `json:"orderId"`
}

type verifyPaymentResponse struct {
	Success        bool   `json:"success"`
	Status         string `json:"status"`
	CashfreeStatus string `json:"cashfree_status"`
	OrderID        string `json:"order_id"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Message: message})
}

// CreatePayment creates fixed-amount payment order
// 200 — order created, payment session returned;
// 400 — request body is invalid or required fields are missing;
// 500 — gateway or store failure.
func (ph *PaymentHandler) CreatePayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPaymentRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Missing required fields: applicationId or customerPhone")
			return
		}
		defer r.Body.Close()

		order, err := ph.svc.CreateOrder(r.Context(), &models.PaymentOrderRequest{
			ApplicationID: req.ApplicationID,
			CustomerPhone: string(req.CustomerPhone),
			CustomerName:  req.CustomerName,
		})
		if err != nil {
			if errors.Is(err, models.ErrMissingRequiredField) {
				writeError(w, http.StatusBadRequest, "Missing required fields: applicationId or customerPhone")
				return
			}
			// gateway and store failures share one error kind, the
			// underlying message is surfaced to the caller
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, createPaymentResponse{
			Success:          true,
			PaymentSessionID: order.PaymentSessionID,
			OrderID:          order.OrderID,
			Amount:           order.Amount,
		})
	}
}

// VerifyPayment resolves payment order status
// 200 — status resolved and written back;
// 400 — order id is missing;
// 500 — gateway or store failure.
func (ph *PaymentHandler) VerifyPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyPaymentRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Order ID is required")
			return
		}
		defer r.Body.Close()

		verification, err := ph.svc.VerifyOrder(r.Context(), req.OrderID)
		if err != nil {
			if errors.Is(err, models.ErrMissingOrderID) {
				writeError(w, http.StatusBadRequest, "Order ID is required")
				return
			}
			writeError(w, http.StatusInternalServerError, "Verification failed")
			return
		}

		writeJSON(w, http.StatusOK, verifyPaymentResponse{
			Success:        true,
			Status:         verification.Status,
			CashfreeStatus: verification.GatewayStatus,
			OrderID:        verification.OrderID,
		})
	}
}
