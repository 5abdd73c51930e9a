package handler

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"go.uber.org/zap"
)

type CronHandler struct {
	cleanup CleanupService
	secret  string
	logger  *zap.Logger
}

func NewCronHandler(cleanup CleanupService, secret string, logger *zap.Logger) *CronHandler {
	return &CronHandler{
		cleanup: cleanup,
		secret:  secret,
		logger:  logger,
	}
}

// Cleanup harici zamanlayıcılar için. CRON_SECRET boşsa endpoint kapalıdır.
func (h *CronHandler) Cleanup(c *fiber.Ctx) error {
	if h.secret == "" {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Not found"))
	}

	token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Unauthorized"))
	}

	result, err := h.cleanup.Run(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(result, "Cleanup completed"))
}
