//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"fitco-billing/internal/domain"
	"fitco-billing/internal/domain/model"
	"fitco-billing/internal/domain/ports/adapter"
	"fitco-billing/internal/domain/ports/repository"
	"fitco-billing/internal/usecase"
)

// =============================
// Adapters
// =============================

// ---- Mock PaymentProcessor ----

const testWebhookSecret = "whsec_test"

type MockProcessor struct {
	mu sync.Mutex

	NotConfigured bool
	// Events maps a raw payload to the event VerifyEvent returns for it.
	Events        map[string]*adapter.Event
	Subscriptions map[string]*adapter.ProcessorSubscription

	CreateCustomerFunc        func(ctx context.Context, req adapter.CustomerRequest) (string, error)
	CreateCheckoutSessionFunc func(ctx context.Context, req adapter.CheckoutRequest) (*adapter.CheckoutSession, error)
	GetSubscriptionFunc       func(ctx context.Context, id string) (*adapter.ProcessorSubscription, error)

	Calls struct {
		CreateCustomer  []adapter.CustomerRequest
		CreateCheckout  []adapter.CheckoutRequest
		GetSubscription []string
	}
}

var _ adapter.PaymentProcessor = (*MockProcessor)(nil)

func NewMockProcessor() *MockProcessor {
	return &MockProcessor{
		Events:        map[string]*adapter.Event{},
		Subscriptions: map[string]*adapter.ProcessorSubscription{},
	}
}

func (m *MockProcessor) Name() string     { return "mockpay" }
func (m *MockProcessor) Configured() bool { return !m.NotConfigured }

func (m *MockProcessor) CreateCustomer(ctx context.Context, req adapter.CustomerRequest) (string, error) {
	m.mu.Lock()
	m.Calls.CreateCustomer = append(m.Calls.CreateCustomer, req)
	m.mu.Unlock()
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, req)
	}
	return "cus_" + req.UserID, nil
}

func (m *MockProcessor) CreateCheckoutSession(ctx context.Context, req adapter.CheckoutRequest) (*adapter.CheckoutSession, error) {
	m.mu.Lock()
	m.Calls.CreateCheckout = append(m.Calls.CreateCheckout, req)
	m.mu.Unlock()
	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, req)
	}
	id := "cs_" + uuid.NewString()
	return &adapter.CheckoutSession{ID: id, URL: "https://checkout.example/" + id}, nil
}

func (m *MockProcessor) GetSubscription(ctx context.Context, id string) (*adapter.ProcessorSubscription, error) {
	m.mu.Lock()
	m.Calls.GetSubscription = append(m.Calls.GetSubscription, id)
	m.mu.Unlock()
	if m.GetSubscriptionFunc != nil {
		return m.GetSubscriptionFunc(ctx, id)
	}
	s, ok := m.Subscriptions[id]
	if !ok {
		return nil, domain.ErrTransientProcessor
	}
	cp := *s
	return &cp, nil
}

func (m *MockProcessor) VerifyEvent(payload []byte, signature string) (*adapter.Event, error) {
	if signature != testWebhookSecret {
		return nil, domain.ErrInvalidSignature
	}
	ev, ok := m.Events[string(payload)]
	if !ok {
		return &adapter.Event{ID: "evt_unknown", Type: "unknown.event"}, nil
	}
	return ev, nil
}

// =============================
// Repositories
// =============================

// ---- In-memory UserRepository ----

type MemUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

var _ repository.UserRepository = (*MemUserRepo)(nil)

func NewMemUserRepo(users ...*model.User) *MemUserRepo {
	m := &MemUserRepo{users: map[string]*model.User{}}
	for _, u := range users {
		cp := *u
		m.users[u.ID] = &cp
	}
	return m
}

func (m *MemUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemUserRepo) FindByStripeCustomerID(ctx context.Context, tx repository.Tx, customerID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.StripeCustomerID != nil && *u.StripeCustomerID == customerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemUserRepo) SetStripeCustomerID(ctx context.Context, tx repository.Tx, userID, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if u.StripeCustomerID == nil {
		u.StripeCustomerID = &customerID
	}
	return nil
}

func (m *MemUserRepo) SetEntitlement(ctx context.Context, tx repository.Tx, userID string, status model.EntitlementStatus, customerID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.SubscriptionStatus = status
	if customerID != nil {
		c := *customerID
		u.StripeCustomerID = &c
	}
	return nil
}

func (m *MemUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *MemUserRepo) Status(id string) model.EntitlementStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u.SubscriptionStatus
	}
	return ""
}

// ---- In-memory SubscriptionRepository ----

type MemSubscriptionRepo struct {
	mu   sync.Mutex
	rows map[string]*model.Subscription

	SaveErr error
}

var _ repository.SubscriptionRepository = (*MemSubscriptionRepo)(nil)

func NewMemSubscriptionRepo() *MemSubscriptionRepo {
	return &MemSubscriptionRepo{rows: map[string]*model.Subscription{}}
}

func (m *MemSubscriptionRepo) UpsertByExternalID(ctx context.Context, tx repository.Tx, s *model.Subscription) (*model.Subscription, error) {
	if s.ExternalSubscriptionID == nil {
		return nil, domain.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ExternalSubscriptionID != nil && *row.ExternalSubscriptionID == *s.ExternalSubscriptionID {
			row.PlanType = s.PlanType
			row.PriceCents = s.PriceCents
			row.Currency = s.Currency
			row.ExpiryDate = s.ExpiryDate
			row.Status = s.Status
			if s.CouponCode != nil {
				row.CouponCode = s.CouponCode
			}
			if s.ExternalCustomerID != nil {
				row.ExternalCustomerID = s.ExternalCustomerID
			}
			if s.CheckoutSessionID != nil {
				row.CheckoutSessionID = s.CheckoutSessionID
			}
			row.UpdatedAt = time.Now()
			cp := *row
			return &cp, nil
		}
	}
	cp := *s
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *MemSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *MemSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemSubscriptionRepo) FindByExternalID(ctx context.Context, tx repository.Tx, externalID string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.ExternalSubscriptionID != nil && *s.ExternalSubscriptionID == externalID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemSubscriptionRepo) FindCurrentByUser(ctx context.Context, tx repository.Tx, userID string, now time.Time) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *model.Subscription
	for _, s := range m.rows {
		if s.UserID == userID && s.IsCurrent(now) && (best == nil || s.CreatedAt.After(best.CreatedAt)) {
			best = s
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *MemSubscriptionRepo) HasCurrent(ctx context.Context, tx repository.Tx, userID string, now time.Time) (bool, error) {
	_, err := m.FindCurrentByUser(ctx, tx, userID, now)
	if err == domain.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *MemSubscriptionRepo) UpdateState(ctx context.Context, tx repository.Tx, id string, status model.SubscriptionStatus, expiry *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	if expiry != nil {
		s.ExpiryDate = *expiry
	}
	return nil
}

func (m *MemSubscriptionRepo) ExpireLapsed(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.rows {
		if s.Status == model.SubscriptionStatusActive && s.ExpiryDate.Before(now) {
			s.Status = model.SubscriptionStatusExpired
			n++
		}
	}
	return n, nil
}

func (m *MemSubscriptionRepo) ExpireActiveByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.rows {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			s.Status = model.SubscriptionStatusExpired
			n++
		}
	}
	return n, nil
}

func (m *MemSubscriptionRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Subscription, error) {
	all := m.All()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return []*model.Subscription{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MemSubscriptionRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *MemSubscriptionRepo) CountCurrent(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.rows {
		if s.IsCurrent(now) {
			n++
		}
	}
	return n, nil
}

// All returns copies of every stored row.
func (m *MemSubscriptionRepo) All() []*model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Subscription, 0, len(m.rows))
	for _, s := range m.rows {
		cp := *s
		out = append(out, &cp)
	}
	return out
}

// ---- In-memory TransactionRepository ----

type MemTransactionRepo struct {
	mu   sync.Mutex
	rows []*model.Transaction
}

var _ repository.TransactionRepository = (*MemTransactionRepo)(nil)

func NewMemTransactionRepo() *MemTransactionRepo { return &MemTransactionRepo{} }

func (m *MemTransactionRepo) InsertIfAbsent(ctx context.Context, tx repository.Tx, t *model.Transaction) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Reference == t.Reference {
			return false, nil
		}
	}
	cp := *t
	m.rows = append(m.rows, &cp)
	return true, nil
}

func (m *MemTransactionRepo) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Reference == reference {
			cp := *row
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemTransactionRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Transaction, error) {
	all := m.All()
	if offset >= len(all) {
		return []*model.Transaction{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MemTransactionRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *MemTransactionRepo) SumPaid(ctx context.Context, tx repository.Tx) (int64, error) {
	var total int64
	for _, t := range m.All() {
		if t.Status == model.TransactionStatusPaid {
			total += t.AmountCents
		}
	}
	return total, nil
}

func (m *MemTransactionRepo) SumPaidByMonth(ctx context.Context, tx repository.Tx) ([]model.MonthlyRevenue, error) {
	byMonth := map[[2]int]int64{}
	for _, t := range m.All() {
		if t.Status != model.TransactionStatusPaid {
			continue
		}
		byMonth[[2]int{t.CreatedAt.Year(), int(t.CreatedAt.Month())}] += t.AmountCents
	}
	out := make([]model.MonthlyRevenue, 0, len(byMonth))
	for k, v := range byMonth {
		out = append(out, model.MonthlyRevenue{Year: k[0], Month: k[1], TotalCents: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

func (m *MemTransactionRepo) SumPaidByPlan(ctx context.Context, tx repository.Tx) ([]model.PlanRevenue, error) {
	byPlan := map[model.PlanType]*model.PlanRevenue{}
	for _, t := range m.All() {
		if t.Status != model.TransactionStatusPaid {
			continue
		}
		r, ok := byPlan[t.PlanType]
		if !ok {
			r = &model.PlanRevenue{PlanType: t.PlanType}
			byPlan[t.PlanType] = r
		}
		r.TotalCents += t.AmountCents
		r.Count++
	}
	out := make([]model.PlanRevenue, 0, len(byPlan))
	for _, p := range model.Plans {
		if r, ok := byPlan[p]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *MemTransactionRepo) All() []*model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Transaction, 0, len(m.rows))
	for _, t := range m.rows {
		cp := *t
		out = append(out, &cp)
	}
	return out
}

// ---- In-memory PricingRepository ----

type MemPricingRepo struct {
	mu   sync.Mutex
	rows map[string]*model.PricingSettings

	Inserts int
}

var _ repository.PricingRepository = (*MemPricingRepo)(nil)

func NewMemPricingRepo() *MemPricingRepo {
	return &MemPricingRepo{rows: map[string]*model.PricingSettings{}}
}

func (m *MemPricingRepo) InsertIfAbsent(ctx context.Context, tx repository.Tx, p *model.PricingSettings) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[p.Key]; ok {
		return false, nil
	}
	cp := *p
	m.rows[p.Key] = &cp
	m.Inserts++
	return true, nil
}

func (m *MemPricingRepo) Get(ctx context.Context, tx repository.Tx, key string) (*model.PricingSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemPricingRepo) Update(ctx context.Context, tx repository.Tx, p *model.PricingSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[p.Key]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	m.rows[p.Key] = &cp
	return nil
}

// ---- In-memory CouponRepository ----

type MemCouponRepo struct {
	mu   sync.Mutex
	rows map[string]*model.Coupon
}

var _ repository.CouponRepository = (*MemCouponRepo)(nil)

func NewMemCouponRepo(coupons ...*model.Coupon) *MemCouponRepo {
	m := &MemCouponRepo{rows: map[string]*model.Coupon{}}
	for _, c := range coupons {
		cp := *c
		m.rows[c.ID] = &cp
	}
	return m
}

func (m *MemCouponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemCouponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Code == c.Code && row.ID != c.ID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *MemCouponRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool) (*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.IsActive = active
	cp := *c
	return &cp, nil
}

func (m *MemCouponRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Coupon, 0, len(m.rows))
	for _, c := range m.rows {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// ---- In-memory UsageCounter ----

type MemCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

var _ repository.UsageCounter = (*MemCounter)(nil)

func NewMemCounter() *MemCounter { return &MemCounter{counts: map[string]int64{}} }

func (m *MemCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func (m *MemCounter) Get(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key], nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// -----------------------------
// Utilities
// -----------------------------

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func mustUser(id, email string) *model.User {
	u, err := model.NewUser(id, email, "Test "+id, model.RoleUser)
	if err != nil {
		panic(err)
	}
	return u
}

func mustCoupon(code string, pct int, expiry time.Time, active bool) *model.Coupon {
	c, err := model.NewCoupon(code, pct, expiry, active)
	if err != nil {
		panic(err)
	}
	return c
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

var testPricingDefaults = usecase.PricingDefaults{MonthlyPriceCents: 999, YearlyPriceCents: 9999, Currency: "usd"}

// billingFixture wires every use case over in-memory stores.
type billingFixture struct {
	users     *MemUserRepo
	subs      *MemSubscriptionRepo
	txns      *MemTransactionRepo
	prices    *MemPricingRepo
	coupons   *MemCouponRepo
	counter   *MemCounter
	processor *MockProcessor
	tm        *MockTxManager

	pricing  usecase.PricingUseCase
	coupon   usecase.CouponUseCase
	quote    usecase.QuoteUseCase
	ledger   usecase.LedgerUseCase
	checkout usecase.CheckoutUseCase
	webhook  usecase.WebhookUseCase
	stats    usecase.StatsUseCase
	chat     usecase.ChatGateUseCase
}

func newBillingFixture(users ...*model.User) *billingFixture {
	f := &billingFixture{
		users:     NewMemUserRepo(users...),
		subs:      NewMemSubscriptionRepo(),
		txns:      NewMemTransactionRepo(),
		prices:    NewMemPricingRepo(),
		coupons:   NewMemCouponRepo(),
		counter:   NewMemCounter(),
		processor: NewMockProcessor(),
		tm:        NewMockTxManager(),
	}
	log := newTestLogger()
	f.pricing = usecase.NewPricingUseCase(f.prices, testPricingDefaults, log)
	f.coupon = usecase.NewCouponUseCase(f.coupons, log)
	f.quote = usecase.NewQuoteUseCase(f.pricing, f.coupon)
	f.ledger = usecase.NewLedgerUseCase(f.subs, f.txns, f.users, f.pricing, f.tm, log)
	f.checkout = usecase.NewCheckoutUseCase(f.users, f.quote, f.processor, usecase.CheckoutURLs{
		SuccessURL: "http://localhost/success",
		CancelURL:  "http://localhost/cancel",
	}, log)
	f.webhook = usecase.NewWebhookUseCase(f.processor, f.subs, f.txns, f.users, f.ledger, f.pricing, f.tm, log)
	f.stats = usecase.NewStatsUseCase(f.users, f.subs, f.txns, log)
	f.chat = usecase.NewChatGateUseCase(f.ledger, f.counter, 3, log)
	return f
}
