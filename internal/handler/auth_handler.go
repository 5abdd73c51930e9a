package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth      AuthService
	validator *utils.Validator
	logger    *zap.Logger
}

func NewAuthHandler(auth AuthService, validator *utils.Validator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		validator: validator,
		logger:    logger,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	resp, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(resp, "User registered successfully"))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	resp, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return c.JSON(models.SuccessResponse(resp, "Login successful"))
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.auth.Me(c.UserContext(), userID)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return c.JSON(models.SuccessResponse(user, ""))
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	if err := h.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return handleError(c, h.logger, err)
	}

	// Kayıtlı olmayan e-postalar için de aynı cevap
	return c.JSON(models.SuccessResponse(nil, "If the email exists, a reset link has been sent"))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	if err := h.auth.ResetPassword(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return handleError(c, h.logger, err)
	}

	return c.JSON(models.SuccessResponse(nil, "Password reset successful"))
}
