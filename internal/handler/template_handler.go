package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
)

type TemplateHandler struct {
	templates TemplateService
	uploads   UploadService
	validator *utils.Validator
	logger    *zap.Logger
}

func NewTemplateHandler(templates TemplateService, uploads UploadService, validator *utils.Validator, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{
		templates: templates,
		uploads:   uploads,
		validator: validator,
		logger:    logger,
	}
}

func (h *TemplateHandler) List(c *fiber.Ctx) error {
	templates, err := h.templates.ListPublic(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(templates, ""))
}

func (h *TemplateHandler) Get(c *fiber.Ctx) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return badRequest(c, "Invalid template ID")
	}

	tmpl, err := h.templates.GetPublic(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(tmpl, ""))
}

// Admin

func (h *TemplateHandler) AdminList(c *fiber.Ctx) error {
	templates, err := h.templates.ListAll(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(templates, ""))
}

func (h *TemplateHandler) Create(c *fiber.Ctx) error {
	var req models.TemplateRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	tmpl, err := h.templates.Create(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(tmpl, "Template created"))
}

func (h *TemplateHandler) Update(c *fiber.Ctx) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return badRequest(c, "Invalid template ID")
	}

	var req models.TemplateRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	tmpl, err := h.templates.Update(c.UserContext(), id, req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(tmpl, "Template updated"))
}

func (h *TemplateHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return badRequest(c, "Invalid template ID")
	}

	if err := h.templates.Delete(c.UserContext(), id); err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Template deleted"))
}

// PresignThumbnail admin panelinden thumbnail yüklemek için imzalı URL verir.
func (h *TemplateHandler) PresignThumbnail(c *fiber.Ctx) error {
	var req models.UploadURLRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	resp, err := h.uploads.PresignTemplateThumbnail(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(resp, ""))
}
