package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rookgm/paygate/internal/cashfree"
	"github.com/rookgm/paygate/internal/logger"
	"github.com/rookgm/paygate/internal/models"
	"go.uber.org/zap"
)

// every order is created for the same fixed amount, caller input never changes it
const (
	OrderAmount   = 30.00
	OrderCurrency = "INR"
)

const defaultCustomerName = "Applicant"

// ApplicationRepository is interface for interacting with application payment fields
type ApplicationRepository interface {
	// AttachPaymentOrder sets payment order linkage on application record
	AttachPaymentOrder(ctx context.Context, app models.Application) error
	// UpdatePaymentStatusByOrderID sets payment status by order id, returns updated ids
	UpdatePaymentStatusByOrderID(ctx context.Context, orderID, status string) ([]string, error)
}

// PaymentGateway is interface for creating and fetching gateway orders
type PaymentGateway interface {
	// CreateOrder creates new order at gateway
	CreateOrder(ctx context.Context, order *cashfree.CreateOrderRequest) (*cashfree.OrderSession, error)
	// GetOrder fetches current order state from gateway
	GetOrder(ctx context.Context, orderID string) (*cashfree.Order, error)
}

// PaymentService implements PaymentService interface
type PaymentService struct {
	repo      ApplicationRepository
	gateway   PaymentGateway
	returnURL string
	now       func() time.Time
}

// NewPaymentService creates new PaymentService instance
func NewPaymentService(repo ApplicationRepository, gateway PaymentGateway, returnURL string) *PaymentService {
	return &PaymentService{
		repo:      repo,
		gateway:   gateway,
		returnURL: returnURL,
		now:       time.Now,
	}
}

// CreateOrder creates fixed-amount order at gateway and records it on the
// application. The record is updated only after the gateway confirms the order;
// a store failure after that leaves the gateway-side order dangling, no
// cancellation is attempted.
func (ps *PaymentService) CreateOrder(ctx context.Context, req *models.PaymentOrderRequest) (*models.PaymentOrder, error) {
	if req.ApplicationID == "" || req.CustomerPhone == "" {
		return nil, models.ErrMissingRequiredField
	}

	orderID := fmt.Sprintf("ORD_%s_%d", req.ApplicationID, ps.now().UnixMilli())

	customerName := req.CustomerName
	if customerName == "" {
		customerName = defaultCustomerName
	}

	order := &cashfree.CreateOrderRequest{
		OrderAmount:   OrderAmount,
		OrderCurrency: OrderCurrency,
		OrderID:       orderID,
		CustomerDetails: cashfree.CustomerDetails{
			CustomerID:    "CUST_" + req.ApplicationID,
			CustomerPhone: req.CustomerPhone,
			CustomerName:  customerName,
		},
		OrderMeta: cashfree.OrderMeta{
			ReturnURL: ps.returnURL + "?order_id=" + orderID,
		},
	}

	session, err := ps.gateway.CreateOrder(ctx, order)
	if err != nil {
		logger.Log.Error("create order at gateway",
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, err
	}

	app := models.Application{
		ID:             req.ApplicationID,
		PaymentOrderID: orderID,
		PaymentAmount:  strconv.FormatFloat(OrderAmount, 'f', -1, 64),
		PaymentStatus:  models.PaymentStatusPending,
	}
	if err := ps.repo.AttachPaymentOrder(ctx, app); err != nil {
		logger.Log.Error("attach payment order",
			zap.String("application_id", req.ApplicationID),
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, err
	}

	return &models.PaymentOrder{
		OrderID:          orderID,
		Amount:           OrderAmount,
		Currency:         OrderCurrency,
		PaymentSessionID: session.PaymentSessionID,
	}, nil
}

// VerifyOrder resolves authoritative order status from gateway and writes the
// mapped payment status back to matching application records. Repeated calls
// are safe, each one re-derives status from the gateway.
func (ps *PaymentService) VerifyOrder(ctx context.Context, orderID string) (*models.PaymentVerification, error) {
	if orderID == "" {
		return nil, models.ErrMissingOrderID
	}

	logger.Log.Info("verifying order", zap.String("order_id", orderID))

	order, err := ps.gateway.GetOrder(ctx, orderID)
	if err != nil {
		logger.Log.Error("get order from gateway",
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, err
	}

	status := models.MapOrderStatus(order.OrderStatus)

	ids, err := ps.repo.UpdatePaymentStatusByOrderID(ctx, orderID, status)
	if err != nil {
		logger.Log.Error("update payment status",
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, err
	}

	if len(ids) == 0 {
		// the gateway knows the order but no application record carries it
		logger.Log.Warn("no application matches order", zap.String("order_id", orderID))
	}

	logger.Log.Info("order verified",
		zap.String("order_id", orderID),
		zap.String("status", status))

	return &models.PaymentVerification{
		OrderID:       orderID,
		Status:        status,
		GatewayStatus: order.OrderStatus,
	}, nil
}
