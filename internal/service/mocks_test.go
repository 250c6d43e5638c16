package service

import (
	"context"
	"sort"
	"sync"

	"foodmart/internal/events"
	"foodmart/internal/model"
	"foodmart/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// fakeOrderStore is an in-memory OrderRepository. Writes made through a
// transaction only become visible on commit, and UpdateFulfillment applies
// the same compare-and-set the SQL implementation does.
type fakeOrderStore struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]*model.Order
	pending  map[pgx.Tx]*model.Order
	txs      []*MockTx
	beginErr error
	itemsErr error
}

var _ repository.OrderRepository = (*fakeOrderStore)(nil)

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders:  make(map[uuid.UUID]*model.Order),
		pending: make(map[pgx.Tx]*model.Order),
	}
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.LineItem(nil), o.Items...)
	return &c
}

// put stores an already committed order.
func (s *fakeOrderStore) put(o *model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = cloneOrder(o)
}

func (s *fakeOrderStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *fakeOrderStore) lastTx() *MockTx {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.txs) == 0 {
		return nil
	}
	return s.txs[len(s.txs)-1]
}

func (s *fakeOrderStore) BeginTx(ctx context.Context) (pgx.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	tx := new(MockTx)
	tx.On("Commit", mock.Anything).Return(nil).Run(func(mock.Arguments) { s.commit(tx) }).Maybe()
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()

	s.mu.Lock()
	s.txs = append(s.txs, tx)
	s.mu.Unlock()
	return tx, nil
}

func (s *fakeOrderStore) commit(tx pgx.Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.pending[tx]; ok {
		s.orders[o.ID] = o
		delete(s.pending, tx)
	}
}

func (s *fakeOrderStore) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[tx] = cloneOrder(order)
	return nil
}

func (s *fakeOrderStore) CreateOrderItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []model.LineItem) error {
	if s.itemsErr != nil {
		return s.itemsErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.pending[tx]; ok && o.ID == orderID {
		o.Items = append([]model.LineItem(nil), items...)
	}
	return nil
}

func (s *fakeOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (s *fakeOrderStore) UpdateFulfillment(ctx context.Context, id uuid.UUID, expected model.FulfillmentState, change model.StatusChange) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.FulfillmentState != expected {
		return nil, repository.ErrStatusMismatch
	}
	if change.Partner != nil && o.DeliveryPartnerID != nil && *o.DeliveryPartnerID != *change.Partner {
		return nil, repository.ErrStatusMismatch
	}
	o.FulfillmentState = change.To
	if change.BindPartner != nil && o.DeliveryPartnerID == nil {
		p := *change.BindPartner
		o.DeliveryPartnerID = &p
	}
	if change.EstimatedPrepMinutes != nil {
		eta := *change.EstimatedPrepMinutes
		o.EstimatedPrepMinutes = &eta
	}
	return cloneOrder(o), nil
}

func (s *fakeOrderStore) AssignPartner(ctx context.Context, id, partnerID uuid.UUID) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.FulfillmentState.Terminal() {
		return nil, repository.ErrStatusMismatch
	}
	p := partnerID
	o.DeliveryPartnerID = &p
	return cloneOrder(o), nil
}

func (s *fakeOrderStore) MarkPaid(ctx context.Context, providerOrderID, providerPaymentID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ProviderOrderID != nil && *o.ProviderOrderID == providerOrderID {
			pid := providerPaymentID
			o.PaymentState = model.PaymentPaid
			o.ProviderPaymentID = &pid
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (s *fakeOrderStore) filter(keep func(*model.Order) bool) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Order{}
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *fakeOrderStore) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	return s.filter(func(o *model.Order) bool { return o.CustomerID == customerID }), nil
}

func (s *fakeOrderStore) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID, states []model.FulfillmentState) ([]model.Order, error) {
	return s.filter(func(o *model.Order) bool {
		if o.RestaurantID != restaurantID {
			return false
		}
		for _, st := range states {
			if o.FulfillmentState == st {
				return true
			}
		}
		return false
	}), nil
}

func (s *fakeOrderStore) ListForDelivery(ctx context.Context, partnerID uuid.UUID) ([]model.Order, error) {
	return s.filter(func(o *model.Order) bool {
		mine := o.DeliveryPartnerID != nil && *o.DeliveryPartnerID == partnerID
		switch o.FulfillmentState {
		case model.StateReady:
			return o.DeliveryPartnerID == nil || mine
		case model.StateOutForDelivery, model.StateDelivered:
			return mine
		}
		return false
	}), nil
}

func (s *fakeOrderStore) ListAll(ctx context.Context, limit, offset int) ([]model.Order, error) {
	all := s.filter(func(*model.Order) bool { return true })
	if offset >= len(all) {
		return []model.Order{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *fakeOrderStore) Analytics(ctx context.Context) (*model.Analytics, error) {
	a := &model.Analytics{TotalRevenue: decimal.Zero}
	for _, o := range s.filter(func(*model.Order) bool { return true }) {
		a.TotalOrders++
		switch o.FulfillmentState {
		case model.StateCancelled:
			a.CancelledOrders++
			continue
		case model.StateDelivered:
			a.DeliveredOrders++
		}
		a.TotalRevenue = a.TotalRevenue.Add(o.Total())
	}
	return a, nil
}

func (s *fakeOrderStore) CountDelivered(ctx context.Context, partnerID uuid.UUID) (int64, error) {
	delivered := s.filter(func(o *model.Order) bool {
		return o.FulfillmentState == model.StateDelivered && o.DeliveryPartnerID != nil && *o.DeliveryPartnerID == partnerID
	})
	return int64(len(delivered)), nil
}

// MockRestaurantRepository is a mock implementation of RestaurantRepository.
type MockRestaurantRepository struct {
	mock.Mock
}

func (m *MockRestaurantRepository) Create(ctx context.Context, restaurant *model.Restaurant) error {
	return m.Called(ctx, restaurant).Error(0)
}

func (m *MockRestaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Restaurant, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) Update(ctx context.Context, restaurant *model.Restaurant) error {
	return m.Called(ctx, restaurant).Error(0)
}

func (m *MockRestaurantRepository) ListOpenByPostalCode(ctx context.Context, postalCode string) ([]model.Restaurant, error) {
	args := m.Called(ctx, postalCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) ListFeatured(ctx context.Context) ([]model.Restaurant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) Search(ctx context.Context, query string) ([]model.Restaurant, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*model.Restaurant, error) {
	args := m.Called(ctx, id, featured)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, numReviews int) error {
	return m.Called(ctx, id, rating, numReviews).Error(0)
}

func (m *MockRestaurantRepository) OwnsRestaurant(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, restaurantID)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role, blocked bool) (*model.User, error) {
	args := m.Called(ctx, id, role, blocked)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*model.User, error) {
	args := m.Called(ctx, id, blocked)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetOnline(ctx context.Context, id uuid.UUID, online bool) (*model.User, error) {
	args := m.Called(ctx, id, online)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockMenuRepository is a mock implementation of MenuRepository. It also
// serves as the pricing catalog.
type MockMenuRepository struct {
	mock.Mock
}

func (m *MockMenuRepository) Create(ctx context.Context, item *model.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockMenuRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.MenuItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.MenuItem, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) Update(ctx context.Context, item *model.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockMenuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockReviewRepository is a mock implementation of ReviewRepository.
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *model.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.Review, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Review), args.Error(1)
}

func (m *MockReviewRepository) Stats(ctx context.Context, restaurantID uuid.UUID) (decimal.Decimal, int, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).(decimal.Decimal), args.Int(1), args.Error(2)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.OrderEvent) error {
	return m.Called(ctx, event).Error(0)
}

// eventOfType matches a published event by its type.
func eventOfType(eventType string) any {
	return mock.MatchedBy(func(e events.OrderEvent) bool { return e.Type == eventType })
}

// memCouponStore is a map backed coupon.Store keyed by normalized code.
type memCouponStore map[string]model.Coupon

func (s memCouponStore) GetActiveByCode(ctx context.Context, code string) (*model.Coupon, error) {
	c, ok := s[code]
	if !ok || !c.IsActive {
		return nil, nil
	}
	return &c, nil
}

func (s memCouponStore) Upsert(ctx context.Context, coupons []model.Coupon) (int, error) {
	for _, c := range coupons {
		s[c.Code] = c
	}
	return len(coupons), nil
}
