package repository

import (
	"context"

	"github.com/sefazor/omnitemplates-backend/internal/models"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{
		db: db,
	}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// LockByOrderID gateway sipariş ID'si ile kilitli okuma yapar.
func (r *OrderRepository) LockByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.Order, error) {
	var order models.Order
	err := conn(ctx, r.db, tx).Clauses(forUpdate()).Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.OrderStatus, paymentID string) error {
	updates := map[string]interface{}{"status": status}
	if paymentID != "" {
		updates["payment_id"] = paymentID
	}
	return conn(ctx, r.db, tx).Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) List(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}
