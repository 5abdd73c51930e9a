package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	reviews   ReviewService
	validator *utils.Validator
	logger    *zap.Logger
}

func NewReviewHandler(reviews ReviewService, validator *utils.Validator, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews:   reviews,
		validator: validator,
		logger:    logger,
	}
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	reviews, err := h.reviews.ListApproved(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err)
	}
	if reviews == nil {
		reviews = []models.PublicReview{}
	}
	return c.JSON(models.SuccessResponse(reviews, ""))
}

func (h *ReviewHandler) Submit(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.SubmitReviewRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	review, err := h.reviews.Submit(c.UserContext(), userID, req)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	msg := "Thanks! Your review is pending approval"
	if review.Status == models.ReviewStatusApproved {
		msg = "Thanks for your review! Credits have been added to your account"
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(review, msg))
}

// Admin

func (h *ReviewHandler) AdminList(c *fiber.Ctx) error {
	status := models.ReviewStatus(c.Query("status"))
	switch status {
	case "", models.ReviewStatusPending, models.ReviewStatusApproved, models.ReviewStatusRejected:
	default:
		return badRequest(c, "Invalid status filter")
	}

	reviews, err := h.reviews.List(c.UserContext(), status)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(reviews, ""))
}

func (h *ReviewHandler) Approve(c *fiber.Ctx) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return badRequest(c, "Invalid review ID")
	}

	review, err := h.reviews.Approve(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(review, "Review approved"))
}

func (h *ReviewHandler) Reject(c *fiber.Ctx) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return badRequest(c, "Invalid review ID")
	}

	review, err := h.reviews.Reject(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(models.SuccessResponse(review, "Review rejected"))
}
