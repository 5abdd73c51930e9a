package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/email"
	"github.com/sefazor/omnitemplates-backend/pkg/payment"
	"github.com/sefazor/omnitemplates-backend/pkg/storage"
	"gorm.io/gorm"
)

// ---------------------------------------------------------------------------
// fakeDB tüm store'ların paylaştığı bellek içi veritabanı. InTx hata
// durumunda snapshot'a döner, böylece atomiklik test edilebilir.
// ---------------------------------------------------------------------------

type fakeDB struct {
	mu sync.Mutex

	users     map[uint]models.User
	credits   []models.CreditTransaction
	templates map[uint]models.Template
	pages     map[uuid.UUID]models.Page
	orders    map[uint]models.Order
	reviews   map[uint]models.Review
	nextID    uint

	failCreditInsert   error
	failMarkPaid       error
	failTemplateDelete error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:     make(map[uint]models.User),
		templates: make(map[uint]models.Template),
		pages:     make(map[uuid.UUID]models.Page),
		orders:    make(map[uint]models.Order),
		reviews:   make(map[uint]models.Review),
	}
}

func (db *fakeDB) id() uint {
	db.nextID++
	return db.nextID
}

type fakeSnapshot struct {
	users     map[uint]models.User
	credits   []models.CreditTransaction
	templates map[uint]models.Template
	pages     map[uuid.UUID]models.Page
	orders    map[uint]models.Order
	reviews   map[uint]models.Review
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *fakeDB) snapshot() fakeSnapshot {
	return fakeSnapshot{
		users:     copyMap(db.users),
		credits:   append([]models.CreditTransaction(nil), db.credits...),
		templates: copyMap(db.templates),
		pages:     copyMap(db.pages),
		orders:    copyMap(db.orders),
		reviews:   copyMap(db.reviews),
	}
}

func (db *fakeDB) restore(s fakeSnapshot) {
	db.users = s.users
	db.credits = s.credits
	db.templates = s.templates
	db.pages = s.pages
	db.orders = s.orders
	db.reviews = s.reviews
}

// InTx testlerde tek goroutine'den çağrılır; kilit sadece async e-posta okumaları için.
func (db *fakeDB) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db.mu.Lock()
	snap := db.snapshot()
	db.mu.Unlock()

	if err := fn(nil); err != nil {
		db.mu.Lock()
		db.restore(snap)
		db.mu.Unlock()
		return err
	}
	return nil
}

// helpers

func (db *fakeDB) addUser(name string, credits int) *models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := models.User{ID: db.id(), Name: name, Email: name + "@example.com", Role: models.RoleUser, Credits: credits}
	db.users[u.ID] = u
	return &u
}

func (db *fakeDB) addTemplate(name string, price int, sale *int) *models.Template {
	t := models.Template{ID: db.id(), Name: name, Price: price, SalePrice: sale, ComponentKey: "valentine", IsPublic: true}
	db.templates[t.ID] = t
	return &t
}

func (db *fakeDB) balance(userID uint) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.users[userID].Credits
}

func (db *fakeDB) ledgerFor(userID uint) []models.CreditTransaction {
	var out []models.CreditTransaction
	for _, t := range db.credits {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (db *fakeDB) withTemplate(p models.Page) *models.Page {
	if t, ok := db.templates[p.TemplateID]; ok {
		p.Template = &t
	}
	return &p
}

// ---------------------------------------------------------------------------
// Store adaptörleri
// ---------------------------------------------------------------------------

type fakeUsers struct{ db *fakeDB }

func (s fakeUsers) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = s.db.id()
	s.db.users[user.ID] = *user
	return nil
}

func (s fakeUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (s fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	return err == nil, nil
}

func (s fakeUsers) UpdatePassword(_ context.Context, id uint, hashedPassword string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = hashedPassword
	s.db.users[id] = u
	return nil
}

func (s fakeUsers) List(_ context.Context, limit, offset int) ([]models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.User
	for _, u := range s.db.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCredits struct{ db *fakeDB }

func (s fakeCredits) LockUser(_ context.Context, _ *gorm.DB, userID uint) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (s fakeCredits) SetCredits(_ context.Context, _ *gorm.DB, userID uint, credits int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if credits < 0 {
		return errors.New("violates check constraint users_credits_check")
	}
	u.Credits = credits
	s.db.users[userID] = u
	return nil
}

func (s fakeCredits) CreateTransaction(_ context.Context, _ *gorm.DB, t *models.CreditTransaction) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.failCreditInsert != nil {
		return s.db.failCreditInsert
	}
	t.ID = s.db.id()
	t.CreatedAt = time.Now()
	s.db.credits = append(s.db.credits, *t)
	return nil
}

func (s fakeCredits) GetBalance(_ context.Context, userID uint) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return u.Credits, nil
}

func (s fakeCredits) ListByUser(_ context.Context, userID uint, limit int) ([]models.CreditTransaction, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := s.db.ledgerFor(userID)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s fakeCredits) ListRecent(_ context.Context, limit int) ([]models.CreditTransactionView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.CreditTransactionView
	for i := len(s.db.credits) - 1; i >= 0 && len(out) < limit; i-- {
		t := s.db.credits[i]
		u := s.db.users[t.UserID]
		out = append(out, models.CreditTransactionView{CreditTransaction: t, UserName: u.Name, UserEmail: u.Email})
	}
	return out, nil
}

type fakeTemplates struct{ db *fakeDB }

func (s fakeTemplates) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Template, error) {
	t, ok := s.db.templates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (s fakeTemplates) ListPublic(_ context.Context) ([]models.Template, error) {
	var out []models.Template
	for _, t := range s.db.templates {
		if t.IsPublic {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s fakeTemplates) ListAll(_ context.Context) ([]models.Template, error) {
	var out []models.Template
	for _, t := range s.db.templates {
		out = append(out, t)
	}
	return out, nil
}

func (s fakeTemplates) Create(_ context.Context, tmpl *models.Template) error {
	tmpl.ID = s.db.id()
	s.db.templates[tmpl.ID] = *tmpl
	return nil
}

func (s fakeTemplates) Update(_ context.Context, tmpl *models.Template) error {
	if _, ok := s.db.templates[tmpl.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.db.templates[tmpl.ID] = *tmpl
	return nil
}

func (s fakeTemplates) Delete(_ context.Context, id uint) error {
	if s.db.failTemplateDelete != nil {
		return s.db.failTemplateDelete
	}
	if _, ok := s.db.templates[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.db.templates, id)
	return nil
}

func (s fakeTemplates) CountPages(_ context.Context, id uint) (int64, error) {
	var n int64
	for _, p := range s.db.pages {
		if p.TemplateID == id {
			n++
		}
	}
	return n, nil
}

type fakePages struct{ db *fakeDB }

func (s fakePages) Create(_ context.Context, _ *gorm.DB, page *models.Page) error {
	stored := *page
	stored.Template = nil
	s.db.pages[page.ID] = stored
	return nil
}

func (s fakePages) GetByID(_ context.Context, id uuid.UUID) (*models.Page, error) {
	p, ok := s.db.pages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s.db.withTemplate(p), nil
}

func (s fakePages) GetBySlug(_ context.Context, slug string) (*models.Page, error) {
	for _, p := range s.db.pages {
		if p.Slug == slug {
			return s.db.withTemplate(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s fakePages) LockByID(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*models.Page, error) {
	return s.GetByID(ctx, id)
}

func (s fakePages) MarkPaid(_ context.Context, _ *gorm.DB, id uuid.UUID, userID *uint) error {
	if s.db.failMarkPaid != nil {
		return s.db.failMarkPaid
	}
	p, ok := s.db.pages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsPaid = true
	if userID != nil {
		p.UserID = userID
	}
	s.db.pages[id] = p
	return nil
}

func (s fakePages) ListByUser(_ context.Context, userID uint) ([]models.Page, error) {
	var out []models.Page
	for _, p := range s.db.pages {
		if p.OwnedBy(userID) {
			out = append(out, *s.db.withTemplate(p))
		}
	}
	return out, nil
}

func (s fakePages) ListExpired(_ context.Context, before time.Time, limit int) ([]models.Page, error) {
	var out []models.Page
	for _, p := range s.db.pages {
		if p.ExpiresAt.Before(before) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s fakePages) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.db.pages[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.db.pages, id)
	return nil
}

type fakeOrders struct{ db *fakeDB }

func (s fakeOrders) Create(_ context.Context, order *models.Order) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, o := range s.db.orders {
		if o.OrderID == order.OrderID {
			return errors.New("duplicate order id")
		}
	}
	order.ID = s.db.id()
	s.db.orders[order.ID] = *order
	return nil
}

func (s fakeOrders) LockByOrderID(_ context.Context, _ *gorm.DB, orderID string) (*models.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, o := range s.db.orders {
		if o.OrderID == orderID {
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s fakeOrders) UpdateStatus(_ context.Context, _ *gorm.DB, id uint, status models.OrderStatus, paymentID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	if paymentID != "" {
		o.PaymentID = paymentID
	}
	s.db.orders[id] = o
	return nil
}

func (s fakeOrders) ListByUser(_ context.Context, userID uint) ([]models.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Order
	for _, o := range s.db.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s fakeOrders) List(_ context.Context, limit int) ([]models.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Order
	for _, o := range s.db.orders {
		out = append(out, o)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s fakeOrders) get(orderID string) models.Order {
	o, _ := s.LockByOrderID(context.Background(), nil, orderID)
	if o == nil {
		return models.Order{}
	}
	return *o
}

type fakeReviews struct{ db *fakeDB }

func (s fakeReviews) Create(_ context.Context, _ *gorm.DB, review *models.Review) error {
	review.ID = s.db.id()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	s.db.reviews[review.ID] = *review
	return nil
}

func (s fakeReviews) LockByID(_ context.Context, _ *gorm.DB, id uint) (*models.Review, error) {
	r, ok := s.db.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (s fakeReviews) UpdateModeration(_ context.Context, _ *gorm.DB, review *models.Review) error {
	r, ok := s.db.reviews[review.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Status = review.Status
	r.CreditsAwarded = review.CreditsAwarded
	r.ReviewedAt = review.ReviewedAt
	s.db.reviews[r.ID] = r
	return nil
}

func (s fakeReviews) ListApproved(_ context.Context, limit int) ([]models.PublicReview, error) {
	var out []models.PublicReview
	for _, r := range s.db.reviews {
		if r.Status != models.ReviewStatusApproved {
			continue
		}
		u := s.db.users[r.UserID]
		out = append(out, models.PublicReview{ID: r.ID, Text: r.Text, Rating: r.Rating, UserName: u.Name, CreatedAt: r.CreatedAt})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s fakeReviews) List(_ context.Context, status models.ReviewStatus) ([]models.Review, error) {
	var out []models.Review
	for _, r := range s.db.reviews {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s fakeReviews) CountSince(_ context.Context, _ *gorm.DB, userID uint, since time.Time) (int64, int64, error) {
	var text, video int64
	for _, r := range s.db.reviews {
		if r.UserID != userID || r.CreatedAt.Before(since) {
			continue
		}
		if r.IsVideo() {
			video++
		} else {
			text++
		}
	}
	return text, video, nil
}

// ---------------------------------------------------------------------------
// Dış servisler
// ---------------------------------------------------------------------------

type fakeMailer struct {
	mu       sync.Mutex
	welcome  []string
	resets   []string
	receipts []email.Receipt
}

func (m *fakeMailer) SendWelcomeEmail(to, _ string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcome = append(m.welcome, to)
	return nil
}

func (m *fakeMailer) SendPasswordResetEmail(to, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, to)
	return nil
}

func (m *fakeMailer) SendPaymentReceipt(_, _ string, receipt email.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, receipt)
	return nil
}

func (m *fakeMailer) welcomeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.welcome)
}

func (m *fakeMailer) receiptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.receipts)
}

type fakeGateway struct {
	name     string
	requests []payment.OrderRequest
	err      error
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) CreateOrder(_ context.Context, req payment.OrderRequest) (*payment.GatewayOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	return &payment.GatewayOrder{
		ID:       fmt.Sprintf("order_%d", len(g.requests)),
		Amount:   req.Amount,
		Currency: req.Currency,
	}, nil
}

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	failOnKey map[string]error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte), failOnKey: make(map[string]error)}
}

func (s *fakeStorage) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	return nil
}

func (s *fakeStorage) Get(_ context.Context, key string) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{Body: io.NopCloser(bytes.NewReader(b)), ContentType: "image/png", ContentLength: int64(len(b))}, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOnKey[key]; err != nil {
		return err
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://r2.example.com/" + key + "?X-Amz-Signature=test", nil
}

// fixedClock testlerde zamanı sabitler.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
