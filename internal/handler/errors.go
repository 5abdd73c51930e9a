package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sefazor/omnitemplates-backend/internal/middleware"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/internal/service"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrInvalidAmount, fiber.StatusBadRequest},
	{service.ErrInvalidSignature, fiber.StatusBadRequest},
	{service.ErrInvalidPayload, fiber.StatusBadRequest},
	{service.ErrPageFree, fiber.StatusBadRequest},
	{service.ErrTextReviewLimit, fiber.StatusBadRequest},
	{service.ErrVideoReviewLimit, fiber.StatusBadRequest},
	{service.ErrUnsupportedFile, fiber.StatusBadRequest},
	{service.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge},
	{service.ErrUnauthorized, fiber.StatusUnauthorized},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{service.ErrInvalidToken, fiber.StatusBadRequest},
	{service.ErrInsufficientCredits, fiber.StatusPaymentRequired},
	{service.ErrForbidden, fiber.StatusForbidden},
	{service.ErrUserNotFound, fiber.StatusNotFound},
	{service.ErrTemplateNotFound, fiber.StatusNotFound},
	{service.ErrPageNotFound, fiber.StatusNotFound},
	{service.ErrOrderNotFound, fiber.StatusNotFound},
	{service.ErrReviewNotFound, fiber.StatusNotFound},
	{service.ErrObjectNotFound, fiber.StatusNotFound},
	{service.ErrPageAlreadyPaid, fiber.StatusConflict},
	{service.ErrReviewAlreadyApproved, fiber.StatusConflict},
	{service.ErrTemplateInUse, fiber.StatusConflict},
	{service.ErrEmailExists, fiber.StatusConflict},
	{service.ErrGatewayNotConfigured, fiber.StatusServiceUnavailable},
}

// handleError servis hatasını HTTP durum koduna çevirir; bilinmeyen hatalar loglanır.
func handleError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var verr *utils.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse(verr.Fields))
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(models.ErrorResponse(capitalize(e.err.Error())))
		}
	}

	logger.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Internal server error"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(msg))
}

// parseBody gövdeyi okur ve doğrular. Hata durumunda yanıt zaten yazılmıştır.
// normalizer doğrulamadan önce alanları temizleyen istekler
type normalizer interface {
	Normalize()
}

func parseBody(c *fiber.Ctx, v *utils.Validator, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, badRequest(c, "Invalid request body")
	}
	if n, ok := out.(normalizer); ok {
		n.Normalize()
	}
	if err := v.Struct(out); err != nil {
		var verr *utils.ValidationError
		if errors.As(err, &verr) {
			return false, c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse(verr.Fields))
		}
		return false, badRequest(c, "Invalid request body")
	}
	return true, nil
}

func requireUser(c *fiber.Ctx) (uint, bool) {
	id := middleware.UserID(c)
	if id == nil {
		return 0, false
	}
	return *id, true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
}

func paramUint(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
