package service

import (
	"context"

	"github.com/sefazor/omnitemplates-backend/internal/models"
)

type DashboardService struct {
	users  UserStore
	pages  PageStore
	orders OrderStore
	ledger *LedgerService
}

func NewDashboardService(users UserStore, pages PageStore, orders OrderStore, ledger *LedgerService) *DashboardService {
	return &DashboardService{
		users:  users,
		pages:  pages,
		orders: orders,
		ledger: ledger,
	}
}

func (s *DashboardService) Get(ctx context.Context, userID uint) (*models.Dashboard, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	pages, err := s.pages.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	credits, err := s.ledger.Balance(ctx, &userID)
	if err != nil {
		return nil, err
	}

	if pages == nil {
		pages = []models.Page{}
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &models.Dashboard{
		User:    user,
		Credits: credits,
		Pages:   pages,
		Orders:  orders,
	}, nil
}
