package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/omnitemplates-backend/internal/middleware"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"go.uber.org/zap"
)

type CreditHandler struct {
	credits CreditService
	logger  *zap.Logger
}

func NewCreditHandler(credits CreditService, logger *zap.Logger) *CreditHandler {
	return &CreditHandler{
		credits: credits,
		logger:  logger,
	}
}

// Balance anonim isteklerde 0 döner.
func (h *CreditHandler) Balance(c *fiber.Ctx) error {
	credits, err := h.credits.Balance(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(models.BalanceResponse{Credits: credits}, ""))
}

func (h *CreditHandler) Transactions(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return unauthorized(c)
	}

	history, err := h.credits.History(c.UserContext(), userID, c.QueryInt("limit", 50))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	if history == nil {
		history = []models.CreditTransaction{}
	}
	return c.JSON(models.SuccessResponse(history, ""))
}
