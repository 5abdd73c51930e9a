package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/bcrypt"
	jwtPkg "github.com/sefazor/omnitemplates-backend/pkg/jwt"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthService struct {
	tx          TxRunner
	users       UserStore
	ledger      *LedgerService
	mailer      Mailer
	tokens      *jwtPkg.Manager
	passwords   *bcrypt.Hasher
	adminEmails map[string]bool
	logger      *zap.Logger
}

func NewAuthService(tx TxRunner, users UserStore, ledger *LedgerService, mailer Mailer, tokens *jwtPkg.Manager, passwords *bcrypt.Hasher, adminEmails []string, logger *zap.Logger) *AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	return &AuthService{
		tx:          tx,
		users:       users,
		ledger:      ledger,
		mailer:      mailer,
		tokens:      tokens,
		passwords:   passwords,
		adminEmails: admins,
		logger:      logger.Named("auth"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register kullanıcıyı ve hoş geldin kredisini aynı transaction'da oluşturur.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	// Email kontrolü
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	// Şifreyi hashle
	hashedPassword, err := s.hashPassword("password", req.Password)
	if err != nil {
		return nil, err
	}

	role := models.RoleUser
	if s.adminEmails[email] {
		role = models.RoleAdmin
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: hashedPassword,
		Role:     role,
	}

	err = s.tx.InTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.Create(ctx, tx, user); err != nil {
			// eşzamanlı kayıtta unique index yakalar
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}
			return err
		}
		_, balance, err := s.ledger.Apply(ctx, tx, LedgerEntry{
			UserID:      user.ID,
			Amount:      models.SignupBonusCredits,
			Type:        models.CreditSignupBonus,
			Description: "Welcome bonus",
		}, BalanceStrict)
		if err != nil {
			return err
		}
		user.Credits = balance
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("token generation failed: %w", err)
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))

	// Welcome email gönder
	go func(email, name string) {
		if err := s.mailer.SendWelcomeEmail(email, name, models.SignupBonusCredits); err != nil {
			s.logger.Warn("welcome email failed", zap.String("email", email), zap.Error(err))
		}
	}(user.Email, user.Name)

	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.passwords.Compare(user.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	s.upgradeHash(ctx, user, req.Password)

	token, err := s.tokens.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("token generation failed: %w", err)
	}

	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

// Authenticate session token'ı doğrular ve kullanıcıyı, rolü dahil, veritabanından taze okur.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.ValidateToken(token, jwtPkg.TokenTypeSession)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil // Güvenlik için hata dönme
	}

	// Reset token oluştur
	resetToken, err := s.tokens.GenerateResetToken(user.Email, user.ID)
	if err != nil {
		return err
	}

	return s.mailer.SendPasswordResetEmail(user.Email, resetToken)
}

// Reset token ile şifre değiştirme
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.ValidateToken(token, jwtPkg.TokenTypeReset)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil || user.Email != claims.Email {
		return ErrInvalidToken
	}

	hashedPassword, err := s.hashPassword("new_password", newPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, user.ID, hashedPassword)
}

func (s *AuthService) hashPassword(field, password string) (string, error) {
	hashed, err := s.passwords.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", utils.NewFieldError(field, "must be at most 72 bytes")
	}
	return hashed, err
}

// upgradeHash cost değiştiyse girişte şifreyi yeniden hashler. Hata girişi engellemez.
func (s *AuthService) upgradeHash(ctx context.Context, user *models.User, password string) {
	if !s.passwords.NeedsRehash(user.Password) {
		return
	}
	hashed, err := s.passwords.Hash(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, user.ID, hashed)
	}
	if err != nil {
		s.logger.Warn("password rehash failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	user.Password = hashed
}
