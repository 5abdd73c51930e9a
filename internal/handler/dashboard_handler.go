package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboard DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return unauthorized(c)
	}

	dashboard, err := h.dashboard.Get(c.UserContext(), userID)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(dashboard, ""))
}
