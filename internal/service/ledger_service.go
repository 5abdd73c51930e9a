package service

import (
	"context"
	"errors"

	"github.com/sefazor/omnitemplates-backend/internal/metrics"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BalanceMode int

const (
	// BalanceStrict bakiyeyi negatife düşürecek bir düşümü reddeder.
	BalanceStrict BalanceMode = iota
	// BalanceClamp bakiyeyi sıfırda sabitler; kaydedilen tutar uygulanan farktır.
	BalanceClamp
)

type LedgerEntry struct {
	UserID      uint
	Amount      int
	Type        models.CreditTransactionType
	Description string
	ReferenceID string
}

// LedgerService kredi bakiyesini ve hareket kaydını birlikte yazar.
// Bütün yazma işlemleri çağıranın transaction'ı içinde yapılır.
type LedgerService struct {
	store  CreditStore
	logger *zap.Logger
}

func NewLedgerService(store CreditStore, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		store:  store,
		logger: logger.Named("ledger"),
	}
}

// LockedBalance kullanıcı satırını kilitleyip bakiyeyi döner.
func (s *LedgerService) LockedBalance(ctx context.Context, tx *gorm.DB, userID uint) (int, error) {
	user, err := s.store.LockUser(ctx, tx, userID)
	if err != nil {
		return 0, notFound(err, ErrUserNotFound)
	}
	return user.Credits, nil
}

// Apply entry'yi uygular ve yeni bakiyeyi döner.
func (s *LedgerService) Apply(ctx context.Context, tx *gorm.DB, entry LedgerEntry, mode BalanceMode) (*models.CreditTransaction, int, error) {
	if entry.Amount == 0 {
		return nil, 0, ErrInvalidAmount
	}

	user, err := s.store.LockUser(ctx, tx, entry.UserID)
	if err != nil {
		return nil, 0, notFound(err, ErrUserNotFound)
	}

	balance := user.Credits + entry.Amount
	if balance < 0 {
		if mode == BalanceStrict {
			return nil, user.Credits, ErrInsufficientCredits
		}
		balance = 0
	}

	if err := s.store.SetCredits(ctx, tx, user.ID, balance); err != nil {
		return nil, 0, notFound(err, ErrUserNotFound)
	}

	record := &models.CreditTransaction{
		UserID:      user.ID,
		Amount:      balance - user.Credits,
		Type:        entry.Type,
		Description: entry.Description,
		ReferenceID: entry.ReferenceID,
	}
	if err := s.store.CreateTransaction(ctx, tx, record); err != nil {
		return nil, 0, err
	}

	metrics.CreditEntries.WithLabelValues(string(entry.Type)).Inc()
	s.logger.Info("credits applied",
		zap.Uint("user_id", user.ID),
		zap.Int("requested", entry.Amount),
		zap.Int("applied", record.Amount),
		zap.Int("balance", balance),
		zap.String("type", string(entry.Type)),
		zap.String("reference_id", entry.ReferenceID),
	)

	return record, balance, nil
}

// Balance anonim ya da bulunamayan kullanıcı için 0 döner.
func (s *LedgerService) Balance(ctx context.Context, userID *uint) (int, error) {
	if userID == nil {
		return 0, nil
	}
	credits, err := s.store.GetBalance(ctx, *userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return credits, err
}

func (s *LedgerService) History(ctx context.Context, userID uint, limit int) ([]models.CreditTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListByUser(ctx, userID, limit)
}

// Recent tüm kullanıcıların son hareketleri
func (s *LedgerService) Recent(ctx context.Context, limit int) ([]models.CreditTransactionView, error) {
	return s.store.ListRecent(ctx, limit)
}
