package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartResponse "github.com/Alturino/focushoney/cart/pkg/response"
	"github.com/Alturino/focushoney/cart/pkg/session"
	"github.com/Alturino/focushoney/cart/pkg/store"
	"github.com/Alturino/focushoney/checkout/pkg/request"
	"github.com/Alturino/focushoney/checkout/pkg/response"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	"github.com/Alturino/focushoney/internal/common/money"
	"github.com/Alturino/focushoney/internal/config"
	orderResponse "github.com/Alturino/focushoney/order/pkg/response"
	paymentResponse "github.com/Alturino/focushoney/payment/pkg/response"
)

const deviceID = "device-1"

type memoryPersister struct {
	mu     sync.Mutex
	target string
	items  []cartResponse.CartItem
}

func (m *memoryPersister) Load(c context.Context) ([]cartResponse.CartItem, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cartResponse.Clone(m.items), m.items != nil, nil
}

func (m *memoryPersister) Save(c context.Context, items []cartResponse.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = cartResponse.Clone(items)
	return nil
}

func (m *memoryPersister) Delete(c context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}

func (m *memoryPersister) Target() string { return m.target }

func (m *memoryPersister) snapshot() []cartResponse.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cartResponse.Clone(m.items)
}

type memoryFactory struct {
	local  *memoryPersister
	remote *memoryPersister
}

func (f *memoryFactory) Local(string) store.Persister     { return f.local }
func (f *memoryFactory) Remote(uuid.UUID) store.Persister { return f.remote }

type fakeOrders struct {
	mu     sync.Mutex
	orders []orderResponse.Order
	err    error
}

// InsertOrder rejects a reused payment reference the way the order stores do.
func (f *fakeOrders) InsertOrder(c context.Context, order orderResponse.Order) (orderResponse.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return orderResponse.Order{}, f.err
	}
	for _, existing := range f.orders {
		if order.PaymentRef != "" && existing.PaymentRef == order.PaymentRef {
			return orderResponse.Order{}, errors.Join(commonErrors.ErrPaymentRefUsed, commonErrors.ErrVerificationFailed)
		}
	}
	f.orders = append(f.orders, order)
	return order, nil
}

type fakeVerifier struct {
	results []paymentResponse.Verification
	errs    []error
	calls   []string
}

func (f *fakeVerifier) Verify(c context.Context, reference string) (paymentResponse.Verification, error) {
	i := len(f.calls)
	f.calls = append(f.calls, reference)
	if i < len(f.errs) && f.errs[i] != nil {
		return paymentResponse.Verification{}, f.errs[i]
	}
	return f.results[i], nil
}

type fakePublisher struct {
	published []orderResponse.Order
}

func (f *fakePublisher) PublishOrderCreated(c context.Context, order orderResponse.Order) error {
	f.published = append(f.published, order)
	return nil
}

func honey(id string, name string, price int64, quantity int) cartResponse.CartItem {
	return cartResponse.CartItem{
		ID:       id,
		Name:     name,
		Price:    money.NewPrice(decimal.NewFromInt(price)),
		Quantity: quantity,
	}
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fixture struct {
	factory      *memoryFactory
	orders       *fakeOrders
	verifier     *fakeVerifier
	publisher    *fakePublisher
	orchestrator *Orchestrator
	user         session.Identity
	guest        session.Identity
	now          time.Time
}

func newFixture(items ...cartResponse.CartItem) *fixture {
	f := &fixture{
		factory: &memoryFactory{
			local:  &memoryPersister{target: store.TargetLocal, items: cartResponse.Clone(items)},
			remote: &memoryPersister{target: store.TargetRemote, items: cartResponse.Clone(items)},
		},
		orders:    &fakeOrders{},
		verifier:  &fakeVerifier{},
		publisher: &fakePublisher{},
		user:      session.Identity{DeviceID: deviceID, UserID: uuid.New()},
		guest:     session.Guest(deviceID),
		now:       time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC),
	}
	f.orchestrator = NewOrchestrator(
		session.NewResolver(f.factory),
		f.orders,
		f.verifier,
		f.publisher,
		config.Checkout{
			WhatsappPhone:     "+233540484052",
			PaystackPublicKey: "pk_test",
			Currency:          "GHS",
		},
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func details(mode string) request.Checkout {
	return request.Checkout{
		Name:    "Ama Mensah",
		Phone:   "0240000000",
		Address: "12 Oxford Street, Osu",
		Email:   "ama@example.com",
		Mode:    mode,
	}
}

func defaultCart() []cartResponse.CartItem {
	return []cartResponse.CartItem{
		honey("1", "Raw Honey 500ml", 50, 2),
		honey("3", "Hibiscus Honey 250ml", 45, 1),
	}
}

func TestOrderMessage(t *testing.T) {
	req := details(request.ModeWhatsapp)
	req.Note = "Call before delivery"

	message := OrderMessage(defaultCart(), decimal.NewFromInt(145), req)
	assert.Equal(
		t,
		"Hello! I want:\n\n2 x Raw Honey 500ml\n1 x Hibiscus Honey 250ml\n\nTotal: Ghc 145\n\n"+
			"Name: Ama Mensah\nDelivery Address: 12 Oxford Street, Osu\nContact Number: 0240000000\n"+
			"Note: Call before delivery",
		message,
	)

	messageURL := MessageURL("+233 540 484 052", "Hello! I want:\n\n1 x Raw Honey & co")
	assert.Equal(t, "https://wa.me/233540484052?text=Hello%21%20I%20want%3A%0A%0A1%20x%20Raw%20Honey%20%26%20co", messageURL)
}

func TestSubmitValidation(t *testing.T) {
	testCases := []struct {
		name     string
		identity func(f *fixture) session.Identity
		req      func() request.Checkout
		items    []cartResponse.CartItem
		expected error
	}{
		{
			name:     "blank address",
			identity: func(f *fixture) session.Identity { return f.user },
			req: func() request.Checkout {
				req := details(request.ModeCashOnDelivery)
				req.Address = "   "
				return req
			},
			items:    defaultCart(),
			expected: commonErrors.ErrValidation,
		},
		{
			name:     "missing name",
			identity: func(f *fixture) session.Identity { return f.user },
			req: func() request.Checkout {
				req := details(request.ModePaystack)
				req.Name = ""
				return req
			},
			items:    defaultCart(),
			expected: commonErrors.ErrValidation,
		},
		{
			name:     "unknown mode",
			identity: func(f *fixture) session.Identity { return f.user },
			req:      func() request.Checkout { return details("bank-transfer") },
			items:    defaultCart(),
			expected: commonErrors.ErrValidation,
		},
		{
			name:     "payment without email",
			identity: func(f *fixture) session.Identity { return f.user },
			req: func() request.Checkout {
				req := details(request.ModePaystack)
				req.Email = ""
				return req
			},
			items:    defaultCart(),
			expected: commonErrors.ErrValidation,
		},
		{
			name:     "guest cash on delivery",
			identity: func(f *fixture) session.Identity { return f.guest },
			req:      func() request.Checkout { return details(request.ModeCashOnDelivery) },
			items:    defaultCart(),
			expected: commonErrors.ErrAuthRequired,
		},
		{
			name:     "guest payment",
			identity: func(f *fixture) session.Identity { return f.guest },
			req:      func() request.Checkout { return details(request.ModePaystack) },
			items:    defaultCart(),
			expected: commonErrors.ErrAuthRequired,
		},
		{
			name:     "empty cart",
			identity: func(f *fixture) session.Identity { return f.user },
			req:      func() request.Checkout { return details(request.ModeCashOnDelivery) },
			expected: commonErrors.ErrEmptyCart,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.items...)
			identity := tc.identity(f)

			_, err := f.orchestrator.Submit(context.Background(), identity, tc.req())
			assert.ErrorIs(t, err, tc.expected)
			assert.Empty(t, f.orders.orders)
			assert.Equal(t, response.StateCollectingDetails, f.orchestrator.State(identity).State)
			assert.Len(t, f.factory.remote.snapshot(), len(tc.items))
		})
	}
}

func TestSubmitMessageHandOff(t *testing.T) {
	f := newFixture(defaultCart()...)

	result, err := f.orchestrator.Submit(context.Background(), f.guest, details(request.ModeWhatsapp))
	require.NoError(t, err)

	assert.Equal(t, response.StateCompleted, result.State)
	assert.True(t, strings.HasPrefix(result.MessageURL, "https://wa.me/233540484052?text=Hello%21%20I%20want%3A"))
	assert.Contains(t, result.MessageURL, "Total%3A%20Ghc%20145")
	assert.True(t, result.Total.Equal(decimal.NewFromInt(145)))
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.publisher.published)
	assert.Len(t, f.factory.local.snapshot(), 2)
}

func TestSubmitCashOnDelivery(t *testing.T) {
	f := newFixture(defaultCart()...)

	result, err := f.orchestrator.Submit(context.Background(), f.user, details(request.ModeCashOnDelivery))
	require.NoError(t, err)

	assert.Equal(t, response.StateCompleted, result.State)
	assert.Equal(t, response.RedirectOrders, result.Redirect)
	require.Len(t, f.orders.orders, 1)
	order := f.orders.orders[0]
	assert.Equal(t, orderResponse.PaymentMethodCashOnDelivery, order.PaymentMethod)
	assert.Equal(t, orderResponse.StatusPending, order.Status)
	assert.Equal(t, orderResponse.NoteNotApplicable, order.ShippingAddress.Note)
	assert.Equal(t, f.user.UserID, order.UserID)
	assert.Empty(t, order.PaymentRef)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(145)))
	require.Len(t, order.OrderItems, 2)
	assert.Equal(t, "1", order.OrderItems[0].Product)

	assert.Empty(t, f.factory.remote.snapshot())
	assert.Empty(t, f.factory.local.snapshot())
	assert.Len(t, f.publisher.published, 1)
}

func TestSubmitCashOnDeliveryWriteFailure(t *testing.T) {
	f := newFixture(defaultCart()...)
	f.orders.err = errors.New("connection refused")

	_, err := f.orchestrator.Submit(context.Background(), f.user, details(request.ModeCashOnDelivery))
	assert.ErrorIs(t, err, commonErrors.ErrPersistence)
	assert.Equal(t, response.StateFailed, f.orchestrator.State(f.user).State)
	assert.Len(t, f.factory.remote.snapshot(), 2)
	assert.Empty(t, f.publisher.published)

	f.orders.err = nil
	result, err := f.orchestrator.Submit(context.Background(), f.user, details(request.ModeCashOnDelivery))
	require.NoError(t, err)
	assert.Equal(t, response.StateCompleted, result.State)
	assert.Len(t, f.orders.orders, 1)
}

func TestPaymentVerification(t *testing.T) {
	f := newFixture(defaultCart()...)
	f.verifier.results = []paymentResponse.Verification{
		{Reference: "ref-1", Status: paymentResponse.StatusFailed},
		{},
		{Reference: "ref-2", Status: paymentResponse.StatusSuccess, Amount: 14500, Currency: "GHS"},
	}
	f.verifier.errs = []error{nil, errors.New("verifier unreachable"), nil}
	c := context.Background()

	result, err := f.orchestrator.Submit(c, f.user, details(request.ModePaystack))
	require.NoError(t, err)
	assert.Equal(t, response.StateAwaitingPaymentVerification, result.State)
	require.NotNil(t, result.Payment)
	assert.Equal(t, int64(14500), result.Payment.Amount)
	assert.Equal(t, "GHS", result.Payment.Currency)
	assert.Equal(t, "pk_test", result.Payment.PublicKey)
	assert.Equal(t, "ama@example.com", result.Payment.Email)
	assert.Empty(t, f.orders.orders)

	_, err = f.orchestrator.ConfirmPayment(c, f.user, "ref-1")
	assert.ErrorIs(t, err, commonErrors.ErrVerificationFailed)
	assert.Equal(t, response.StateFailed, f.orchestrator.State(f.user).State)
	assert.Empty(t, f.orders.orders)
	assert.Len(t, f.factory.remote.snapshot(), 2)

	_, err = f.orchestrator.ConfirmPayment(c, f.user, "ref-1")
	assert.ErrorIs(t, err, commonErrors.ErrVerificationFailed)
	assert.Empty(t, f.orders.orders)
	assert.Len(t, f.factory.remote.snapshot(), 2)

	result, err = f.orchestrator.ConfirmPayment(c, f.user, "ref-2")
	require.NoError(t, err)
	assert.Equal(t, response.StateCompleted, result.State)
	assert.Equal(t, response.RedirectOrders, result.Redirect)
	require.Len(t, f.orders.orders, 1)
	order := f.orders.orders[0]
	assert.Equal(t, "ref-2", order.PaymentRef)
	assert.Equal(t, orderResponse.PaymentMethodPaystack, order.PaymentMethod)
	assert.Equal(t, orderResponse.StatusProcessing, order.Status)
	assert.Empty(t, f.factory.remote.snapshot())
	assert.Empty(t, f.factory.local.snapshot())
	assert.Equal(t, []string{"ref-1", "ref-1", "ref-2"}, f.verifier.calls)

	_, err = f.orchestrator.ConfirmPayment(c, f.user, "ref-2")
	assert.ErrorIs(t, err, commonErrors.ErrInvalidTransition)
	assert.Len(t, f.orders.orders, 1)
}

func TestConfirmPaymentTransitions(t *testing.T) {
	testCases := []struct {
		name      string
		reference string
		identity  func(f *fixture) session.Identity
		submit    bool
		expected  error
	}{
		{
			name:      "without pending payment",
			reference: "ref-1",
			identity:  func(f *fixture) session.Identity { return f.user },
			expected:  commonErrors.ErrInvalidTransition,
		},
		{
			name:      "blank reference",
			reference: " ",
			identity:  func(f *fixture) session.Identity { return f.user },
			submit:    true,
			expected:  commonErrors.ErrValidation,
		},
		{
			name:      "guest",
			reference: "ref-1",
			identity:  func(f *fixture) session.Identity { return f.guest },
			submit:    true,
			expected:  commonErrors.ErrAuthRequired,
		},
		{
			name:      "different user on the same device",
			reference: "ref-1",
			identity: func(f *fixture) session.Identity {
				return session.Identity{DeviceID: deviceID, UserID: uuid.New()}
			},
			submit:   true,
			expected: commonErrors.ErrInvalidTransition,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(defaultCart()...)
			c := context.Background()
			if tc.submit {
				_, err := f.orchestrator.Submit(c, f.user, details(request.ModePaystack))
				require.NoError(t, err)
			}

			_, err := f.orchestrator.ConfirmPayment(c, tc.identity(f), tc.reference)
			assert.ErrorIs(t, err, tc.expected)
			assert.Empty(t, f.verifier.calls)
			assert.Empty(t, f.orders.orders)
		})
	}
}

func TestReset(t *testing.T) {
	f := newFixture(defaultCart()...)
	c := context.Background()

	_, err := f.orchestrator.Submit(c, f.user, details(request.ModePaystack))
	require.NoError(t, err)

	result, err := f.orchestrator.Reset(f.user)
	require.NoError(t, err)
	assert.Equal(t, response.StateCollectingDetails, result.State)
	assert.Equal(t, response.StateCollectingDetails, f.orchestrator.State(f.user).State)

	_, err = f.orchestrator.ConfirmPayment(c, f.user, "ref-1")
	assert.ErrorIs(t, err, commonErrors.ErrInvalidTransition)
}

func TestConfirmPaymentAmountMismatch(t *testing.T) {
	testCases := []struct {
		name         string
		verification paymentResponse.Verification
	}{
		{
			name:         "underpaid",
			verification: paymentResponse.Verification{Reference: "ref-1", Status: paymentResponse.StatusSuccess, Amount: 100, Currency: "GHS"},
		},
		{
			name:         "other currency",
			verification: paymentResponse.Verification{Reference: "ref-1", Status: paymentResponse.StatusSuccess, Amount: 14500, Currency: "NGN"},
		},
		{
			name:         "missing amount",
			verification: paymentResponse.Verification{Reference: "ref-1", Status: paymentResponse.StatusSuccess},
		},
		{
			name:         "other reference",
			verification: paymentResponse.Verification{Reference: "ref-9", Status: paymentResponse.StatusSuccess, Amount: 14500, Currency: "GHS"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(defaultCart()...)
			f.verifier.results = []paymentResponse.Verification{
				tc.verification,
				{Reference: "ref-1", Status: paymentResponse.StatusSuccess, Amount: 14500, Currency: "GHS"},
			}
			c := context.Background()

			_, err := f.orchestrator.Submit(c, f.user, details(request.ModePaystack))
			require.NoError(t, err)

			_, err = f.orchestrator.ConfirmPayment(c, f.user, "ref-1")
			assert.ErrorIs(t, err, commonErrors.ErrVerificationFailed)
			assert.Equal(t, response.StateFailed, f.orchestrator.State(f.user).State)
			assert.Empty(t, f.orders.orders)
			assert.Len(t, f.factory.remote.snapshot(), 2)

			result, err := f.orchestrator.ConfirmPayment(c, f.user, "ref-1")
			require.NoError(t, err)
			assert.Equal(t, response.StateCompleted, result.State)
			assert.Equal(t, 1, f.orders.count())
		})
	}
}

func TestConfirmPaymentReusedReference(t *testing.T) {
	f := newFixture(defaultCart()...)
	f.verifier.results = []paymentResponse.Verification{
		{Reference: "ref-A", Status: paymentResponse.StatusSuccess, Amount: 14500, Currency: "GHS"},
		{Reference: "ref-A", Status: paymentResponse.StatusSuccess, Amount: 4500, Currency: "GHS"},
	}
	c := context.Background()

	_, err := f.orchestrator.Submit(c, f.user, details(request.ModePaystack))
	require.NoError(t, err)
	_, err = f.orchestrator.ConfirmPayment(c, f.user, "ref-A")
	require.NoError(t, err)
	require.Equal(t, 1, f.orders.count())

	sess, err := f.orchestrator.resolver.Resolve(c, f.user)
	require.NoError(t, err)
	_, err = sess.Cart().Add(c, honey("3", "Hibiscus Honey 250ml", 45, 1))
	require.NoError(t, err)
	result, err := f.orchestrator.Submit(c, f.user, details(request.ModePaystack))
	require.NoError(t, err)
	require.NotNil(t, result.Payment)
	assert.Equal(t, int64(4500), result.Payment.Amount)

	_, err = f.orchestrator.ConfirmPayment(c, f.user, "ref-A")
	assert.ErrorIs(t, err, commonErrors.ErrVerificationFailed)
	assert.ErrorIs(t, err, commonErrors.ErrPaymentRefUsed)
	assert.NotErrorIs(t, err, commonErrors.ErrPersistence)
	assert.Equal(t, response.StateFailed, f.orchestrator.State(f.user).State)
	assert.Equal(t, 1, f.orders.count())
	assert.Len(t, f.factory.remote.snapshot(), 1)
}

func TestSubmitRejectedKeepsPendingPayment(t *testing.T) {
	f := newFixture(defaultCart()...)
	f.verifier.results = []paymentResponse.Verification{
		{Reference: "ref-1", Status: paymentResponse.StatusSuccess, Amount: 14500, Currency: "GHS"},
	}
	c := context.Background()

	_, err := f.orchestrator.Submit(c, f.user, details(request.ModePaystack))
	require.NoError(t, err)

	req := details(request.ModePaystack)
	req.Phone = " "
	_, err = f.orchestrator.Submit(c, f.user, req)
	assert.ErrorIs(t, err, commonErrors.ErrValidation)

	state := f.orchestrator.State(f.user)
	assert.Equal(t, response.StateAwaitingPaymentVerification, state.State)
	require.NotNil(t, state.Payment)
	assert.Equal(t, int64(14500), state.Payment.Amount)

	result, err := f.orchestrator.ConfirmPayment(c, f.user, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, response.StateCompleted, result.State)
	require.Len(t, f.orders.orders, 1)
	assert.Equal(t, "0240000000", f.orders.orders[0].ShippingAddress.Phone)
}

func TestSweep(t *testing.T) {
	f := newFixture(defaultCart()...)
	c := context.Background()
	other := session.Identity{DeviceID: "device-2", UserID: uuid.New()}

	_, err := f.orchestrator.Submit(c, f.user, details(request.ModePaystack))
	require.NoError(t, err)

	f.now = f.now.Add(3 * time.Hour)
	_, err = f.orchestrator.Submit(c, other, details(request.ModeWhatsapp))
	require.NoError(t, err)

	assert.Equal(t, 1, f.orchestrator.Sweep(2*time.Hour))
	assert.Equal(t, response.StateCollectingDetails, f.orchestrator.State(f.user).State)
	assert.Equal(t, response.StateCompleted, f.orchestrator.State(other).State)

	_, err = f.orchestrator.ConfirmPayment(c, f.user, "ref-1")
	assert.ErrorIs(t, err, commonErrors.ErrInvalidTransition)
	assert.Equal(t, 0, f.orchestrator.Sweep(2*time.Hour))
}
