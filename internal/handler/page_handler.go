package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/omnitemplates-backend/internal/middleware"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
)

type PageHandler struct {
	pages     PageService
	validator *utils.Validator
	logger    *zap.Logger
}

func NewPageHandler(pages PageService, validator *utils.Validator, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		pages:     pages,
		validator: validator,
		logger:    logger,
	}
}

func (h *PageHandler) Create(c *fiber.Ctx) error {
	var req models.CreatePageRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	result, err := h.pages.CreatePage(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(result, "Page created"))
}

func (h *PageHandler) GetPublic(c *fiber.Ctx) error {
	page, err := h.pages.GetPublicPage(c.UserContext(), c.Params("slug"))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(page, ""))
}

func (h *PageHandler) QRCode(c *fiber.Ctx) error {
	png, err := h.pages.ShareQRCode(c.UserContext(), c.Params("slug"), c.QueryInt("size", 0))
	if err != nil {
		return handleError(c, h.logger, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(png)
}

func (h *PageHandler) Checkout(c *fiber.Ctx) error {
	pageID, ok := paramUUID(c, "pageId")
	if !ok {
		return badRequest(c, "Invalid page ID")
	}

	info, err := h.pages.GetCheckout(c.UserContext(), pageID, middleware.UserID(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(info, ""))
}

func (h *PageHandler) Unlock(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return unauthorized(c)
	}
	pageID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid page ID")
	}

	result, err := h.pages.UnlockWithCredits(c.UserContext(), userID, pageID)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(result, "Page unlocked"))
}
