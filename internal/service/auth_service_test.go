package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/bcrypt"
	jwtPkg "github.com/sefazor/omnitemplates-backend/pkg/jwt"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	xbcrypt "golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T, cost int) *bcrypt.Hasher {
	t.Helper()
	h, err := bcrypt.NewHasher(cost)
	require.NoError(t, err)
	return h
}

func newTestAuthService(t *testing.T, db *fakeDB, mailer *fakeMailer, admins ...string) *AuthService {
	tokens := jwtPkg.NewManager("test-secret", "omnitemplates")
	return NewAuthService(db, fakeUsers{db}, newTestLedger(db), mailer, tokens, newTestHasher(t, xbcrypt.MinCost), admins, zap.NewNop())
}

func TestRegisterGrantsSignupBonus(t *testing.T) {
	db := newFakeDB()
	mailer := &fakeMailer{}
	svc := newTestAuthService(t, db, mailer)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Aylin", Email: " Aylin@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "aylin@example.com", resp.User.Email)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	assert.Equal(t, models.SignupBonusCredits, resp.User.Credits)
	assert.Equal(t, models.SignupBonusCredits, db.balance(resp.User.ID))

	entries := db.ledgerFor(resp.User.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, models.CreditSignupBonus, entries[0].Type)

	assert.Eventually(t, func() bool { return mailer.welcomeCount() == 1 }, time.Second, 10*time.Millisecond)

	_, err = svc.Register(context.Background(), models.RegisterRequest{Name: "Dup", Email: "aylin@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

// staleEmailCheck ön kontrolü geçen eşzamanlı kaydı taklit eder.
type staleEmailCheck struct{ fakeUsers }

func (staleEmailCheck) EmailExists(context.Context, string) (bool, error) { return false, nil }

func TestRegisterConcurrentDuplicate(t *testing.T) {
	db := newFakeDB()
	tokens := jwtPkg.NewManager("test-secret", "omnitemplates")
	svc := NewAuthService(db, staleEmailCheck{fakeUsers{db}}, newTestLedger(db), &fakeMailer{}, tokens, newTestHasher(t, xbcrypt.MinCost), nil, zap.NewNop())

	first, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Ece", Email: "ece@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), models.RegisterRequest{Name: "Ece", Email: "ece@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Len(t, db.ledgerFor(first.User.ID), 1)
	assert.Len(t, db.users, 1)
}

func TestRegisterAdminEmail(t *testing.T) {
	db := newFakeDB()
	svc := newTestAuthService(t, db, &fakeMailer{}, "Boss@Example.com")

	resp, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Boss", Email: "boss@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}

func TestLoginAndAuthenticate(t *testing.T) {
	db := newFakeDB()
	svc := newTestAuthService(t, db, &fakeMailer{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Umay", Email: "umay@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "umay@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "UMAY@example.com", Password: "secret123"})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	_, err = svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordReset(t *testing.T) {
	db := newFakeDB()
	mailer := &fakeMailer{}
	svc := newTestAuthService(t, db, mailer)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Rana", Email: "rana@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), "unknown@example.com"))
	require.NoError(t, svc.ForgotPassword(context.Background(), "rana@example.com"))
	assert.Equal(t, []string{"rana@example.com"}, mailer.resets)

	// Session token reset için kullanılamaz
	assert.ErrorIs(t, svc.ResetPassword(context.Background(), resp.Token, "newpass123"), ErrInvalidToken)

	resetToken, err := svc.tokens.GenerateResetToken(resp.User.Email, resp.User.ID)
	require.NoError(t, err)
	require.NoError(t, svc.ResetPassword(context.Background(), resetToken, "newpass123"))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "rana@example.com", Password: "newpass123"})
	assert.NoError(t, err)
}

func TestLoginUpgradesHashCost(t *testing.T) {
	db := newFakeDB()
	tokens := jwtPkg.NewManager("test-secret", "omnitemplates")
	old := NewAuthService(db, fakeUsers{db}, newTestLedger(db), &fakeMailer{}, tokens, newTestHasher(t, xbcrypt.MinCost), nil, zap.NewNop())

	resp, err := old.Register(context.Background(), models.RegisterRequest{Name: "Deniz", Email: "deniz@example.com", Password: "secret123"})
	require.NoError(t, err)

	stronger := newTestHasher(t, xbcrypt.MinCost+1)
	svc := NewAuthService(db, fakeUsers{db}, newTestLedger(db), &fakeMailer{}, tokens, stronger, nil, zap.NewNop())

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "deniz@example.com", Password: "secret123"})
	require.NoError(t, err)

	stored := db.users[resp.User.ID].Password
	cost, err := xbcrypt.Cost([]byte(stored))
	require.NoError(t, err)
	assert.Equal(t, xbcrypt.MinCost+1, cost)
	assert.False(t, stronger.NeedsRehash(stored))

	// yeni hash ile giriş çalışmaya devam eder
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "deniz@example.com", Password: "secret123"})
	assert.NoError(t, err)
}

func TestRegisterPasswordTooLong(t *testing.T) {
	db := newFakeDB()
	svc := newTestAuthService(t, db, &fakeMailer{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Long", Email: "long@example.com", Password: strings.Repeat("p", 73)})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")
	assert.Empty(t, db.users)
}
