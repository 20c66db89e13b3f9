package models

import "time"

// PENDING — order has been created, settlement is not resolved yet;
// COMPLETE — gateway reported the order as paid;
// FAILED — gateway reported the order as failed or expired.

// payment status
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusComplete = "COMPLETE"
	PaymentStatusFailed   = "FAILED"
)

// gateway-side order status, distinct from payment status vocabulary
const (
	OrderStatusActive  = "ACTIVE"
	OrderStatusPaid    = "PAID"
	OrderStatusExpired = "EXPIRED"
	OrderStatusFailed  = "FAILED"
)

// Application is application record entity
type Application struct {
	ID             string
	ApplicantName  string
	ApplicantPhone string
	PaymentOrderID string
	PaymentAmount  string
	PaymentStatus  string
	CreatedAt      time.Time
}

// PaymentOrderRequest carries caller input for creating payment order
type PaymentOrderRequest struct {
	ApplicationID string
	CustomerPhone string
	CustomerName  string
}

// PaymentOrder is created payment order
type PaymentOrder struct {
	OrderID          string
	Amount           float64
	Currency         string
	PaymentSessionID string
}

// PaymentVerification is resolved order status
type PaymentVerification struct {
	OrderID       string
	Status        string
	GatewayStatus string
}

// MapOrderStatus maps gateway order status to payment status.
// Unrecognized statuses (including ACTIVE) stay PENDING.
func MapOrderStatus(orderStatus string) string {
	switch orderStatus {
	case OrderStatusPaid:
		return PaymentStatusComplete
	case OrderStatusFailed, OrderStatusExpired:
		return PaymentStatusFailed
	default:
		return PaymentStatusPending
	}
}
