package repository

import (
	"context"

	"github.com/sefazor/omnitemplates-backend/internal/models"
	"gorm.io/gorm"
)

// CreditRepository bakiye satırı ve kredi hareketleri üzerinde çalışır.
type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{
		db: db,
	}
}

// LockUser kullanıcı satırını SELECT ... FOR UPDATE ile kilitler.
func (r *CreditRepository) LockUser(ctx context.Context, tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db, tx).Clauses(forUpdate()).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *CreditRepository) SetCredits(ctx context.Context, tx *gorm.DB, userID uint, credits int) error {
	res := conn(ctx, r.db, tx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("credits", credits)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CreditRepository) CreateTransaction(ctx context.Context, tx *gorm.DB, t *models.CreditTransaction) error {
	return conn(ctx, r.db, tx).Create(t).Error
}

func (r *CreditRepository) GetBalance(ctx context.Context, userID uint) (int, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select("credits").First(&user, userID).Error
	return user.Credits, err
}

func (r *CreditRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.CreditTransaction, error) {
	var txs []models.CreditTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

func (r *CreditRepository) ListRecent(ctx context.Context, limit int) ([]models.CreditTransactionView, error) {
	var views []models.CreditTransactionView
	err := r.db.WithContext(ctx).
		Table("credit_transactions").
		Select("credit_transactions.*, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = credit_transactions.user_id").
		Order("credit_transactions.created_at DESC, credit_transactions.id DESC").
		Limit(limit).
		Scan(&views).Error
	return views, err
}
