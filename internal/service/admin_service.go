package service

import (
	"context"
	"time"

	"github.com/sefazor/omnitemplates-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	earningsWindowDays     = 7
	recentTransactionLimit = 50
)

type AdminService struct {
	tx     TxRunner
	stats  StatsStore
	users  UserStore
	orders OrderStore
	ledger *LedgerService
	now    func() time.Time
	logger *zap.Logger
}

func NewAdminService(tx TxRunner, stats StatsStore, users UserStore, orders OrderStore, ledger *LedgerService, logger *zap.Logger) *AdminService {
	return &AdminService{
		tx:     tx,
		stats:  stats,
		users:  users,
		orders: orders,
		ledger: ledger,
		now:    time.Now,
		logger: logger.Named("admin"),
	}
}

// Stats genel sayılar ve son 7 günün kazancı. Satış olmayan günler 0 ile doldurulur.
func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	stats, err := s.stats.Overview(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(earningsWindowDays - 1))
	rows, err := s.stats.DailyEarnings(ctx, since)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int64, len(rows))
	for _, row := range rows {
		byDay[row.Day.UTC().Format(time.DateOnly)] += row.Amount
	}

	stats.DailyEarnings = make([]models.DailyEarning, 0, earningsWindowDays)
	for day := since; !day.After(today); day = day.AddDate(0, 0, 1) {
		stats.DailyEarnings = append(stats.DailyEarnings, models.DailyEarning{
			Day:    day,
			Amount: byDay[day.Format(time.DateOnly)],
		})
	}
	if stats.RecentPages == nil {
		stats.RecentPages = []models.RecentPage{}
	}
	return stats, nil
}

func (s *AdminService) Users(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, limit, offset)
}

func (s *AdminService) RecentTransactions(ctx context.Context) ([]models.CreditTransactionView, error) {
	return s.ledger.Recent(ctx, recentTransactionLimit)
}

func (s *AdminService) Orders(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.orders.List(ctx, limit)
}

// AdjustCredits bakiyeyi elle değiştirir; düşüm bakiyeyi sıfırın altına indiremez.
func (s *AdminService) AdjustCredits(ctx context.Context, req models.AdjustCreditsRequest) (*models.CreditTransaction, int, error) {
	if req.Amount == 0 {
		return nil, 0, ErrInvalidAmount
	}

	var (
		record  *models.CreditTransaction
		balance int
	)
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		var err error
		record, balance, err = s.ledger.Apply(ctx, tx, LedgerEntry{
			UserID:      req.UserID,
			Amount:      req.Amount,
			Type:        models.CreditAdjustment,
			Description: "Admin adjustment: " + req.Reason,
		}, BalanceClamp)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	s.logger.Info("credits adjusted by admin",
		zap.Uint("user_id", req.UserID),
		zap.Int("requested", req.Amount),
		zap.Int("applied", record.Amount),
		zap.String("reason", req.Reason),
	)
	return record, balance, nil
}
