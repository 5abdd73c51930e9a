package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
)

type AdminHandler struct {
	admin     AdminService
	validator *utils.Validator
	logger    *zap.Logger
}

func NewAdminHandler(admin AdminService, validator *utils.Validator, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admin:     admin,
		validator: validator,
		logger:    logger,
	}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(stats, ""))
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.admin.Users(c.UserContext(), c.QueryInt("limit", 100), c.QueryInt("offset", 0))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(users, ""))
}

func (h *AdminHandler) Transactions(c *fiber.Ctx) error {
	txs, err := h.admin.RecentTransactions(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(txs, ""))
}

func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	orders, err := h.admin.Orders(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(orders, ""))
}

func (h *AdminHandler) AdjustCredits(c *fiber.Ctx) error {
	var req models.AdjustCreditsRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	record, balance, err := h.admin.AdjustCredits(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"transaction": record,
		"new_balance": balance,
	}, "Credits adjusted"))
}
