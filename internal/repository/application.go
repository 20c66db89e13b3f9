package repository

import (
	"context"

	"github.com/rookgm/paygate/internal/models"
	"github.com/rookgm/paygate/internal/repository/postgres"
)

const (
	attachPaymentOrderQuery = `
						UPDATE application_entries
						SET payment_order_id = $1, payment_amount = $2, payment_status = $3
						WHERE id = $4
`
	updatePaymentStatusQuery = `
						UPDATE application_entries
						SET payment_status = $1
						WHERE payment_order_id = $2
						RETURNING id
`
)

// ApplicationRepository implements ApplicationRepository interface
type ApplicationRepository struct {
	db *postgres.DB
}

// NewApplicationRepository creates new ApplicationRepository instance
func NewApplicationRepository(db *postgres.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// AttachPaymentOrder sets payment order linkage on application record.
// A previously attached order id is overwritten, not archived.
func (ar *ApplicationRepository) AttachPaymentOrder(ctx context.Context, app models.Application) error {
	cmd, err := ar.db.Exec(ctx, attachPaymentOrderQuery, app.PaymentOrderID, app.PaymentAmount, app.PaymentStatus, app.ID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// UpdatePaymentStatusByOrderID sets payment status on application records carrying
// the order id. It returns ids of updated records, zero matches is not an error.
func (ar *ApplicationRepository) UpdatePaymentStatusByOrderID(ctx context.Context, orderID, status string) ([]string, error) {
	rows, err := ar.db.Query(ctx, updatePaymentStatusQuery, status, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
