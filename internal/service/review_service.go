package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const publicReviewLimit = 50

type ReviewService struct {
	tx      TxRunner
	reviews ReviewStore
	ledger  *LedgerService
	now     func() time.Time
	logger  *zap.Logger
}

func NewReviewService(tx TxRunner, reviews ReviewStore, ledger *LedgerService, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		tx:      tx,
		reviews: reviews,
		ledger:  ledger,
		now:     time.Now,
		logger:  logger.Named("review"),
	}
}

func (s *ReviewService) ListApproved(ctx context.Context) ([]models.PublicReview, error) {
	return s.reviews.ListApproved(ctx, publicReviewLimit)
}

func (s *ReviewService) List(ctx context.Context, status models.ReviewStatus) ([]models.Review, error) {
	return s.reviews.List(ctx, status)
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Submit yorumu kaydeder. Metin yorumları anında onaylanır ve ödül aynı transaction'da verilir;
// video yorumları moderasyon bekler.
func (s *ReviewService) Submit(ctx context.Context, userID uint, req models.SubmitReviewRequest) (*models.Review, error) {
	req.Text = strings.TrimSpace(req.Text)
	req.Role = strings.TrimSpace(req.Role)
	req.VideoURL = strings.TrimSpace(req.VideoURL)
	if req.Text == "" {
		return nil, utils.NewFieldError("text", "is required")
	}

	now := s.now()
	review := &models.Review{
		UserID:   userID,
		Text:     req.Text,
		Rating:   req.Rating,
		Role:     req.Role,
		VideoURL: req.VideoURL,
		Status:   models.ReviewStatusPending,
	}

	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		// Aynı kullanıcının eşzamanlı gönderimleri sıraya girer
		if _, err := s.ledger.LockedBalance(ctx, tx, userID); err != nil {
			return err
		}

		textCount, videoCount, err := s.reviews.CountSince(ctx, tx, userID, monthStart(now))
		if err != nil {
			return err
		}
		if review.IsVideo() && videoCount > 0 {
			return ErrVideoReviewLimit
		}
		if !review.IsVideo() && textCount > 0 {
			return ErrTextReviewLimit
		}

		if !review.IsVideo() {
			review.Status = models.ReviewStatusApproved
			review.CreditsAwarded = review.Reward()
			review.ReviewedAt = &now
		}
		review.CreatedAt = now

		if err := s.reviews.Create(ctx, tx, review); err != nil {
			return err
		}

		if review.Status == models.ReviewStatusApproved {
			return s.award(ctx, tx, review)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review submitted",
		zap.Uint("review_id", review.ID),
		zap.Uint("user_id", userID),
		zap.Bool("video", review.IsVideo()),
		zap.String("status", string(review.Status)),
	)
	return review, nil
}

func (s *ReviewService) award(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	kind := "text"
	if review.IsVideo() {
		kind = "video"
	}
	_, _, err := s.ledger.Apply(ctx, tx, LedgerEntry{
		UserID:      review.UserID,
		Amount:      review.CreditsAwarded,
		Type:        models.CreditReviewReward,
		Description: fmt.Sprintf("Reward for %s review", kind),
		ReferenceID: strconv.FormatUint(uint64(review.ID), 10),
	}, BalanceStrict)
	return err
}

// Approve ödülü bir kez belirler; onaylanmış yorum tekrar onaylanamaz.
func (s *ReviewService) Approve(ctx context.Context, reviewID uint) (*models.Review, error) {
	var review *models.Review
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		var err error
		review, err = s.reviews.LockByID(ctx, tx, reviewID)
		if err != nil {
			return notFound(err, ErrReviewNotFound)
		}
		if review.Status == models.ReviewStatusApproved {
			return ErrReviewAlreadyApproved
		}

		now := s.now()
		review.Status = models.ReviewStatusApproved
		review.CreditsAwarded = review.Reward()
		review.ReviewedAt = &now
		if err := s.reviews.UpdateModeration(ctx, tx, review); err != nil {
			return err
		}
		return s.award(ctx, tx, review)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review approved", zap.Uint("review_id", review.ID), zap.Int("credits", review.CreditsAwarded))
	return review, nil
}

// Reject onaylanmış yorumlara dokunmaz.
func (s *ReviewService) Reject(ctx context.Context, reviewID uint) (*models.Review, error) {
	var review *models.Review
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		var err error
		review, err = s.reviews.LockByID(ctx, tx, reviewID)
		if err != nil {
			return notFound(err, ErrReviewNotFound)
		}
		switch review.Status {
		case models.ReviewStatusApproved:
			return ErrReviewAlreadyApproved
		case models.ReviewStatusRejected:
			return nil
		}

		now := s.now()
		review.Status = models.ReviewStatusRejected
		review.CreditsAwarded = 0
		review.ReviewedAt = &now
		return s.reviews.UpdateModeration(ctx, tx, review)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review rejected", zap.Uint("review_id", review.ID))
	return review, nil
}
