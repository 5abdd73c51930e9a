package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
)

type UploadHandler struct {
	uploads   UploadService
	validator *utils.Validator
	logger    *zap.Logger
}

func NewUploadHandler(uploads UploadService, validator *utils.Validator, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploads:   uploads,
		validator: validator,
		logger:    logger,
	}
}

func (h *UploadHandler) Presign(c *fiber.Ctx) error {
	var req models.UploadURLRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	resp, err := h.uploads.PresignUpload(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(resp, ""))
}

// Upload multipart "file" alanını storage'a aktarır.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "Could not read file")
	}
	defer file.Close()

	result, err := h.uploads.Upload(c.UserContext(), fileHeader.Filename, fileHeader.Header.Get(fiber.HeaderContentType), fileHeader.Size, file)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(result, "File uploaded"))
}

// Serve /api/uploads/* altındaki nesneleri storage'dan akıtır.
func (h *UploadHandler) Serve(c *fiber.Ctx) error {
	key := strings.TrimPrefix(c.Params("*"), "/")
	if key == "" {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Not found"))
	}
	if !strings.HasPrefix(key, "uploads/") && !strings.HasPrefix(key, "templates/") {
		key = "uploads/" + key
	}

	obj, err := h.uploads.Open(c.UserContext(), key)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")

	size := -1
	if obj.ContentLength > 0 {
		size = int(obj.ContentLength)
	}
	return c.SendStream(obj.Body, size)
}
