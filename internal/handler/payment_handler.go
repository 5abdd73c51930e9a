package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sefazor/omnitemplates-backend/internal/middleware"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	payments  PaymentService
	validator *utils.Validator
	logger    *zap.Logger
}

func NewPaymentHandler(payments PaymentService, validator *utils.Validator, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments:  payments,
		validator: validator,
		logger:    logger,
	}
}

func (h *PaymentHandler) CreatePageOrder(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.CreatePageOrderRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	order, err := h.payments.CreatePageOrder(c.UserContext(), userID, uuid.MustParse(req.PageID))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(order, ""))
}

// VerifyPagePayment checkout sonrası callback. Giriş yapılmamış olabilir.
func (h *PaymentHandler) VerifyPagePayment(c *fiber.Ctx) error {
	var req models.VerifyPaymentRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	result, err := h.payments.VerifyPayment(c.UserContext(), req, middleware.UserID(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(result, "Payment verified"))
}

func (h *PaymentHandler) CreateCreditOrder(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.CreditPurchaseRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	order, err := h.payments.CreateCreditOrder(c.UserContext(), userID, req.Amount)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(order, ""))
}

func (h *PaymentHandler) VerifyCreditPayment(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.VerifyPaymentRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	result, err := h.payments.VerifyPayment(c.UserContext(), req, &userID)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(result, "Credits added"))
}

func (h *PaymentHandler) RazorpayWebhook(c *fiber.Ctx) error {
	if err := h.payments.HandleRazorpayWebhook(c.UserContext(), c.Body(), c.Get("X-Razorpay-Signature")); err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"received": true})
}

func (h *PaymentHandler) StripeWebhook(c *fiber.Ctx) error {
	if err := h.payments.HandleStripeWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature")); err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
