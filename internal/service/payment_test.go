package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/rookgm/paygate/internal/cashfree"
	"github.com/rookgm/paygate/internal/models"
	"github.com/rookgm/paygate/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testReturnURL = "https://www.r2ps.in/payment-status.html"

func TestPaymentService_CreateOrder(t *testing.T) {
	fixedNow := time.UnixMilli(1727000000000)

	tests := []struct {
		name      string
		req       *models.PaymentOrderRequest
		setup     func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway)
		wantOrder *models.PaymentOrder
		wantErr   error
	}{
		{
			name: "valid_request",
			req: &models.PaymentOrderRequest{
				ApplicationID: "A1",
				CustomerPhone: "9990001111",
			},
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				gwMock.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, order *cashfree.CreateOrderRequest) (*cashfree.OrderSession, error) {
						assert.Equal(t, "ORD_A1_1727000000000", order.OrderID)
						assert.Equal(t, 30.00, order.OrderAmount)
						assert.Equal(t, "INR", order.OrderCurrency)
						assert.Equal(t, "CUST_A1", order.CustomerDetails.CustomerID)
						assert.Equal(t, "9990001111", order.CustomerDetails.CustomerPhone)
						assert.Equal(t, "Applicant", order.CustomerDetails.CustomerName)
						assert.Equal(t, testReturnURL+"?order_id=ORD_A1_1727000000000", order.OrderMeta.ReturnURL)
						return &cashfree.OrderSession{
							OrderID:          order.OrderID,
							PaymentSessionID: "sess_abc",
							OrderStatus:      models.OrderStatusActive,
						}, nil
					}).Times(1)

				repoMock.EXPECT().
					AttachPaymentOrder(gomock.Any(), models.Application{
						ID:             "A1",
						PaymentOrderID: "ORD_A1_1727000000000",
						PaymentAmount:  "30",
						PaymentStatus:  models.PaymentStatusPending,
					}).
					Return(nil).
					Times(1)

				return repoMock, gwMock
			},
			wantOrder: &models.PaymentOrder{
				OrderID:          "ORD_A1_1727000000000",
				Amount:           30.00,
				Currency:         "INR",
				PaymentSessionID: "sess_abc",
			},
		},
		{
			name: "missing_application_id",
			req: &models.PaymentOrderRequest{
				CustomerPhone: "9990001111",
			},
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				// no external calls on validation failure
				gwMock.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Times(0)
				repoMock.EXPECT().AttachPaymentOrder(gomock.Any(), gomock.Any()).Times(0)

				return repoMock, gwMock
			},
			wantErr: models.ErrMissingRequiredField,
		},
		{
			name: "missing_customer_phone",
			req: &models.PaymentOrderRequest{
				ApplicationID: "A1",
			},
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				gwMock.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Times(0)
				repoMock.EXPECT().AttachPaymentOrder(gomock.Any(), gomock.Any()).Times(0)

				return repoMock, gwMock
			},
			wantErr: models.ErrMissingRequiredField,
		},
		{
			name: "custom_customer_name",
			req: &models.PaymentOrderRequest{
				ApplicationID: "A1",
				CustomerPhone: "9990001111",
				CustomerName:  "Ravi",
			},
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				gwMock.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, order *cashfree.CreateOrderRequest) (*cashfree.OrderSession, error) {
						assert.Equal(t, "Ravi", order.CustomerDetails.CustomerName)
						return &cashfree.OrderSession{PaymentSessionID: "sess_abc"}, nil
					}).Times(1)

				repoMock.EXPECT().
					AttachPaymentOrder(gomock.Any(), gomock.Any()).
					Return(nil).
					Times(1)

				return repoMock, gwMock
			},
			wantOrder: &models.PaymentOrder{
				OrderID:          "ORD_A1_1727000000000",
				Amount:           30.00,
				Currency:         "INR",
				PaymentSessionID: "sess_abc",
			},
		},
		{
			name: "gateway_error",
			req: &models.PaymentOrderRequest{
				ApplicationID: "A1",
				CustomerPhone: "9990001111",
			},
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				gwMock.EXPECT().
					CreateOrder(gomock.Any(), gomock.Any()).
					Return(nil, models.NewGatewayError(http.StatusUnauthorized, "authentication failed")).
					Times(1)

				// gateway failed, the store must stay untouched
				repoMock.EXPECT().AttachPaymentOrder(gomock.Any(), gomock.Any()).Times(0)

				return repoMock, gwMock
			},
			wantErr: models.NewGatewayError(http.StatusUnauthorized, "authentication failed"),
		},
		{
			name: "store_error_after_gateway_success",
			req: &models.PaymentOrderRequest{
				ApplicationID: "A1",
				CustomerPhone: "9990001111",
			},
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				// exactly one gateway call: the order is created and no
				// cancellation is attempted after the store failure
				gwMock.EXPECT().
					CreateOrder(gomock.Any(), gomock.Any()).
					Return(&cashfree.OrderSession{PaymentSessionID: "sess_abc"}, nil).
					Times(1)

				repoMock.EXPECT().
					AttachPaymentOrder(gomock.Any(), gomock.Any()).
					Return(models.ErrDataNotFound).
					Times(1)

				return repoMock, gwMock
			},
			wantErr: models.ErrDataNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repoMock, gwMock := tt.setup(t, ctrl)

			svc := NewPaymentService(repoMock, gwMock, testReturnURL)
			svc.now = func() time.Time { return fixedNow }

			got, err := svc.CreateOrder(context.Background(), tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr.Error(), err.Error())
				return
			}

			require.NoError(t, err)
			if diff := cmp.Diff(tt.wantOrder, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPaymentService_CreateOrder_OrderIDMonotonic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMockApplicationRepository(ctrl)
	gwMock := mocks.NewMockPaymentGateway(ctrl)

	gwMock.EXPECT().
		CreateOrder(gomock.Any(), gomock.Any()).
		Return(&cashfree.OrderSession{PaymentSessionID: "sess_abc"}, nil).
		AnyTimes()
	repoMock.EXPECT().
		AttachPaymentOrder(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	svc := NewPaymentService(repoMock, gwMock, testReturnURL)

	// each call observes a later clock reading
	ts := int64(1727000000000)
	svc.now = func() time.Time {
		ts++
		return time.UnixMilli(ts)
	}

	prev := int64(0)
	for i := 0; i < 5; i++ {
		order, err := svc.CreateOrder(context.Background(), &models.PaymentOrderRequest{
			ApplicationID: "A1",
			CustomerPhone: "9990001111",
		})
		require.NoError(t, err)

		require.True(t, strings.HasPrefix(order.OrderID, "ORD_A1_"))
		cur, err := strconv.ParseInt(strings.TrimPrefix(order.OrderID, "ORD_A1_"), 10, 64)
		require.NoError(t, err)

		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestPaymentService_VerifyOrder(t *testing.T) {
	const orderID = "ORD_A1_1727000000000"

	tests := []struct {
		name    string
		orderID string
		setup   func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway)
		want    *models.PaymentVerification
		wantErr error
	}{
		{
			name:    "paid_order",
			orderID: orderID,
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				gwMock.EXPECT().
					GetOrder(gomock.Any(), orderID).
					Return(&cashfree.Order{OrderID: orderID, OrderStatus: models.OrderStatusPaid}, nil).
					Times(1)

				repoMock.EXPECT().
					UpdatePaymentStatusByOrderID(gomock.Any(), orderID, models.PaymentStatusComplete).
					Return([]string{"A1"}, nil).
					Times(1)

				return repoMock, gwMock
			},
			want: &models.PaymentVerification{
				OrderID:       orderID,
				Status:        models.PaymentStatusComplete,
				GatewayStatus: models.OrderStatusPaid,
			},
		},
		{
			name:    "expired_order",
			orderID: orderID,
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				gwMock.EXPECT().
					GetOrder(gomock.Any(), orderID).
					Return(&cashfree.Order{OrderID: orderID, OrderStatus: models.OrderStatusExpired}, nil).
					Times(1)

				repoMock.EXPECT().
					UpdatePaymentStatusByOrderID(gomock.Any(), orderID, models.PaymentStatusFailed).
					Return([]string{"A1"}, nil).
					Times(1)

				return repoMock, gwMock
			},
			want: &models.PaymentVerification{
				OrderID:       orderID,
				Status:        models.PaymentStatusFailed,
				GatewayStatus: models.OrderStatusExpired,
			},
		},
		{
			name:    "active_order_stays_pending",
			orderID: orderID,
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				gwMock.EXPECT().
					GetOrder(gomock.Any(), orderID).
					Return(&cashfree.Order{OrderID: orderID, OrderStatus: models.OrderStatusActive}, nil).
					Times(1)

				repoMock.EXPECT().
					UpdatePaymentStatusByOrderID(gomock.Any(), orderID, models.PaymentStatusPending).
					Return([]string{"A1"}, nil).
					Times(1)

				return repoMock, gwMock
			},
			want: &models.PaymentVerification{
				OrderID:       orderID,
				Status:        models.PaymentStatusPending,
				GatewayStatus: models.OrderStatusActive,
			},
		},
		{
			name:    "zero_match_still_succeeds",
			orderID: orderID,
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				gwMock.EXPECT().
					GetOrder(gomock.Any(), orderID).
					Return(&cashfree.Order{OrderID: orderID, OrderStatus: models.OrderStatusPaid}, nil).
					Times(1)

				repoMock.EXPECT().
					UpdatePaymentStatusByOrderID(gomock.Any(), orderID, models.PaymentStatusComplete).
					Return([]string{}, nil).
					Times(1)

				return repoMock, gwMock
			},
			want: &models.PaymentVerification{
				OrderID:       orderID,
				Status:        models.PaymentStatusComplete,
				GatewayStatus: models.OrderStatusPaid,
			},
		},
		{
			name:    "missing_order_id",
			orderID: "",
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				// no external calls on validation failure
				gwMock.EXPECT().GetOrder(gomock.Any(), gomock.Any()).Times(0)
				repoMock.EXPECT().UpdatePaymentStatusByOrderID(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

				return repoMock, gwMock
			},
			wantErr: models.ErrMissingOrderID,
		},
		{
			name:    "gateway_error",
			orderID: orderID,
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				gwMock.EXPECT().
					GetOrder(gomock.Any(), orderID).
					Return(nil, models.NewGatewayError(http.StatusNotFound, "order not found")).
					Times(1)

				repoMock.EXPECT().UpdatePaymentStatusByOrderID(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

				return repoMock, gwMock
			},
			wantErr: models.NewGatewayError(http.StatusNotFound, "order not found"),
		},
		{
			name:    "store_error",
			orderID: orderID,
			setup: func(t *testing.T, ctrl *gomock.Controller) (*mocks.MockApplicationRepository, *mocks.MockPaymentGateway) {
				repoMock := mocks.NewMockApplicationRepository(ctrl)
				gwMock := mocks.NewMockPaymentGateway(ctrl)

				gwMock.EXPECT().
					GetOrder(gomock.Any(), orderID).
					Return(&cashfree.Order{OrderID: orderID, OrderStatus: models.OrderStatusPaid}, nil).
					Times(1)

				repoMock.EXPECT().
					UpdatePaymentStatusByOrderID(gomock.Any(), orderID, models.PaymentStatusComplete).
					Return(nil, fmt.Errorf("connection reset")).
					Times(1)

				return repoMock, gwMock
			},
			wantErr: fmt.Errorf("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repoMock, gwMock := tt.setup(t, ctrl)

			svc := NewPaymentService(repoMock, gwMock, testReturnURL)

			got, err := svc.VerifyOrder(context.Background(), tt.orderID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr.Error(), err.Error())
				return
			}

			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// repeated verification with a stable gateway status converges to the same
// response and the same store write
func TestPaymentService_VerifyOrder_Idempotent(t *testing.T) {
	const orderID = "ORD_A1_1727000000000"

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMockApplicationRepository(ctrl)
	gwMock := mocks.NewMockPaymentGateway(ctrl)

	gwMock.EXPECT().
		GetOrder(gomock.Any(), orderID).
		Return(&cashfree.Order{OrderID: orderID, OrderStatus: models.OrderStatusPaid}, nil).
		Times(2)

	repoMock.EXPECT().
		UpdatePaymentStatusByOrderID(gomock.Any(), orderID, models.PaymentStatusComplete).
		Return([]string{"A1"}, nil).
		Times(2)

	svc := NewPaymentService(repoMock, gwMock, testReturnURL)

	first, err := svc.VerifyOrder(context.Background(), orderID)
	require.NoError(t, err)

	second, err := svc.VerifyOrder(context.Background(), orderID)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("responses differ (-first +second):\n%s", diff)
	}
}
