package service

import (
	"errors"

	jwtPkg "github.com/sefazor/omnitemplates-backend/pkg/jwt"
	"github.com/sefazor/omnitemplates-backend/pkg/payment"
	"github.com/sefazor/omnitemplates-backend/pkg/storage"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("not allowed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = jwtPkg.ErrInvalidToken
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")

	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateInUse    = errors.New("template has pages and cannot be deleted")

	ErrPageNotFound    = errors.New("page not found")
	ErrPageAlreadyPaid = errors.New("page is already paid")
	ErrPageFree        = errors.New("page is free")

	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidSignature     = payment.ErrInvalidSignature
	ErrInvalidPayload       = errors.New("invalid webhook payload")
	ErrGatewayNotConfigured = payment.ErrGatewayNotConfigured

	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("invalid amount")

	ErrReviewNotFound        = errors.New("review not found")
	ErrReviewAlreadyApproved = errors.New("review already approved")
	ErrTextReviewLimit       = errors.New("you can submit one text review per month")
	ErrVideoReviewLimit      = errors.New("you can submit one video review per month")

	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrObjectNotFound  = storage.ErrObjectNotFound
)

// notFound gorm.ErrRecordNotFound'u domain hatasına çevirir.
func notFound(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
